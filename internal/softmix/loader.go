package softmix

import (
	"sync"

	"github.com/remeh/sizedwaitgroup"

	"github.com/dgnsrekt/tickmix/internal/backend"
	"github.com/dgnsrekt/tickmix/internal/decode"
)

type loadFunc func(path string) (*decode.Clip, error)

type loadJob struct {
	id   backend.SoundID
	path string
}

type loadResult struct {
	id   backend.SoundID
	clip *decode.Clip
	err  error
}

// loader decodes sounds on a bounded set of workers. Workers never touch
// engine state; finished results wait in a list until the engine collects
// them. Submitting never blocks: jobs queue in an unbounded pending list.
type loader struct {
	load loadFunc
	swg  sizedwaitgroup.SizedWaitGroup
	done chan struct{}

	mu       sync.Mutex
	wake     *sync.Cond
	pending  []loadJob
	closing  bool
	finished []loadResult
}

func newLoader(workers int, load loadFunc) *loader {
	l := &loader{
		load: load,
		swg:  sizedwaitgroup.New(workers),
		done: make(chan struct{}),
	}
	l.wake = sync.NewCond(&l.mu)
	go l.dispatch()
	return l
}

func (l *loader) dispatch() {
	defer close(l.done)

	for {
		job, ok := l.next()
		if !ok {
			break
		}
		l.swg.Add()
		go func(job loadJob) {
			defer l.swg.Done()
			clip, err := l.load(job.path)

			l.mu.Lock()
			l.finished = append(l.finished, loadResult{id: job.id, clip: clip, err: err})
			l.mu.Unlock()
		}(job)
	}
	l.swg.Wait()
}

// next waits for a pending job. It reports false once the loader is closing.
func (l *loader) next() (loadJob, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for len(l.pending) == 0 && !l.closing {
		l.wake.Wait()
	}
	if l.closing {
		return loadJob{}, false
	}
	job := l.pending[0]
	l.pending[0] = loadJob{}
	l.pending = l.pending[1:]
	return job, true
}

// submit queues a job and returns at once.
func (l *loader) submit(job loadJob) {
	l.mu.Lock()
	if !l.closing {
		l.pending = append(l.pending, job)
	}
	l.mu.Unlock()
	l.wake.Signal()
}

// queued returns the number of jobs not yet handed to a worker.
func (l *loader) queued() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// collect returns and forgets every finished result.
func (l *loader) collect() []loadResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.finished
	l.finished = nil
	return out
}

// close drops queued jobs and waits for running ones.
func (l *loader) close() {
	l.mu.Lock()
	l.closing = true
	l.pending = nil
	l.mu.Unlock()
	l.wake.Broadcast()
	<-l.done
}
