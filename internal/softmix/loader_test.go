package softmix

import (
	"testing"
	"time"

	"github.com/dgnsrekt/tickmix/internal/backend"
	"github.com/dgnsrekt/tickmix/internal/decode"
)

// stalledLoad returns a load function that blocks until release is closed.
func stalledLoad(release <-chan struct{}) loadFunc {
	return func(path string) (*decode.Clip, error) {
		<-release
		return &decode.Clip{SampleRate: testRate, Channels: Channels, Samples: make([]float32, 2*Channels)}, nil
	}
}

func TestLoaderSubmitDoesNotBlock(t *testing.T) {
	release := make(chan struct{})
	l := newLoader(1, stalledLoad(release))

	submitted := make(chan struct{})
	go func() {
		for i := 1; i <= 500; i++ {
			l.submit(loadJob{id: backend.SoundID(i), path: "stalled"})
		}
		close(submitted)
	}()

	select {
	case <-submitted:
	case <-time.After(2 * time.Second):
		t.Fatal("submit blocked while the worker was stalled")
	}

	close(release)
	deadline := time.Now().Add(5 * time.Second)
	var got int
	for got < 500 && time.Now().Before(deadline) {
		got += len(l.collect())
		time.Sleep(time.Millisecond)
	}
	if got != 500 {
		t.Errorf("finished loads: got %d, want 500", got)
	}
	l.close()
}

func TestLoaderCloseDropsQueuedJobs(t *testing.T) {
	release := make(chan struct{})
	l := newLoader(1, stalledLoad(release))

	for i := 1; i <= 10; i++ {
		l.submit(loadJob{id: backend.SoundID(i), path: "stalled"})
	}

	closed := make(chan struct{})
	go func() {
		l.close()
		close(closed)
	}()

	// The running load must finish before close returns.
	select {
	case <-closed:
		t.Fatal("close returned while a load was running")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("close did not return")
	}

	if n := l.queued(); n != 0 {
		t.Errorf("queued after close: got %d, want 0", n)
	}
	// At most the running job and the one already handed to dispatch finish.
	if n := len(l.collect()); n > 2 {
		t.Errorf("finished after close: got %d, want at most 2", n)
	}

	// Submitting after close is ignored.
	l.submit(loadJob{id: 99, path: "late"})
	if n := l.queued(); n != 0 {
		t.Errorf("queued after late submit: got %d, want 0", n)
	}
}

func TestNonBlockingOpenWithStalledDecoder(t *testing.T) {
	e := newTestEngine(t, Options{Workers: 1})
	release := make(chan struct{})
	e.loader.close()
	e.loader = newLoader(1, stalledLoad(release))
	defer close(release)

	const opens = 300
	opened := make(chan int)
	go func() {
		n := 0
		for i := 0; i < opens; i++ {
			if _, err := e.CreateSound("stalled.wav", onceMode); err == nil {
				n++
			}
		}
		opened <- n
	}()

	select {
	case n := <-opened:
		if n != opens {
			t.Fatalf("opened: got %d, want %d", n, opens)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("non-blocking CreateSound blocked behind a stalled decoder")
	}

	mixed := make(chan struct{})
	go func() {
		mix(e, 10)
		if err := e.Update(); err != nil {
			t.Errorf("Update failed: %v", err)
		}
		close(mixed)
	}()
	select {
	case <-mixed:
	case <-time.After(2 * time.Second):
		t.Fatal("Mix blocked while opens were queued")
	}

	if got := e.Clock(); got != 10 {
		t.Errorf("clock: got %d, want 10", got)
	}
	if n := e.loader.queued(); n < opens-1 {
		t.Errorf("queued: got %d, want at least %d", n, opens-1)
	}
}
