package softmix

import (
	"errors"
	"sync"
	"time"
)

// ErrNoAudioDevice is returned when no audio device can be opened.
var ErrNoAudioDevice = errors.New("audio device not available")

// Output consumes mixed audio from an Engine until closed.
type Output interface {
	Close() error
}

// NullOutput pulls frames from an engine in real time and discards them,
// so the DSP clock advances without an audio device.
type NullOutput struct {
	engine *Engine
	period time.Duration

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewNullOutput starts pulling from e every period (10ms when zero).
func NewNullOutput(e *Engine, period time.Duration) *NullOutput {
	if period <= 0 {
		period = 10 * time.Millisecond
	}
	o := &NullOutput{
		engine: e,
		period: period,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go o.run()
	return o
}

func (o *NullOutput) run() {
	defer close(o.done)

	ticker := time.NewTicker(o.period)
	defer ticker.Stop()

	rate, err := o.engine.SampleRate()
	if err != nil {
		return
	}
	start := time.Now()
	var pulled uint64
	var buf []float32

	for {
		select {
		case <-o.stop:
			return
		case now := <-ticker.C:
			due := uint64(now.Sub(start).Seconds() * float64(rate))
			if due <= pulled {
				continue
			}
			frames := int(due - pulled)
			if cap(buf) < frames*Channels {
				buf = make([]float32, frames*Channels)
			}
			o.engine.Mix(buf[:frames*Channels])
			pulled = due
		}
	}
}

// Close stops pulling. It is safe to call more than once.
func (o *NullOutput) Close() error {
	o.once.Do(func() { close(o.stop) })
	<-o.done
	return nil
}
