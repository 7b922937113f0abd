package mixer

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Runner drives a Mixer's Update at a fixed interval. It is the periodic
// task that stands in for backend notifications: stream readiness and music
// endings are only observed when a tick runs.
type Runner struct {
	mixer    *Mixer
	interval time.Duration

	ticks    atomic.Uint64
	failures atomic.Uint64

	// Limits failure logging to one line per second.
	logLimiter *rate.Limiter
}

// NewRunner creates a runner that ticks m every interval. A non-positive
// interval uses the mixer's configured tick interval.
func NewRunner(m *Mixer, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = m.cfg.TickInterval
	}
	return &Runner{
		mixer:      m,
		interval:   interval,
		logLimiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Interval returns the tick interval.
func (r *Runner) Interval() time.Duration {
	return r.interval
}

// Run ticks until ctx is cancelled or the mixer is closed. Failed ticks are
// logged and counted; they do not stop the loop.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	logger.Debug("Runner started", "interval", r.interval)
	for {
		select {
		case <-ctx.Done():
			logger.Debug("Runner stopped", "ticks", r.Ticks(), "failures", r.Failures())
			return ctx.Err()
		case <-ticker.C:
			if err := r.Tick(); errors.Is(err, ErrClosed) {
				return err
			}
		}
	}
}

// Tick runs one update and returns its error.
func (r *Runner) Tick() error {
	err := r.mixer.Update()
	r.ticks.Add(1)
	if err != nil {
		n := r.failures.Add(1)
		if r.logLimiter.Allow() {
			logger.Warn("Mixer tick failed", "error", err, "failures", n)
		}
	}
	return err
}

// Ticks returns how many ticks have run.
func (r *Runner) Ticks() uint64 {
	return r.ticks.Load()
}

// Failures returns how many ticks returned an error.
func (r *Runner) Failures() uint64 {
	return r.failures.Load()
}
