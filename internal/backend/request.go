package backend

import (
	"fmt"
	"math"

	"github.com/dgnsrekt/tickmix/internal/fade"
)

// Request is a batch of channel settings built up front and handed to
// Backend.Submit in one call. Unset fields leave the channel untouched.
type Request struct {
	loopCount *int
	pan       *float32
	volume    *float32
	mute      *bool
	paused    *bool
	points    []fade.Point
	stopAt    *uint64
}

// NewRequest returns an empty request.
func NewRequest() Request {
	return Request{}
}

// WithLoopCount sets the loop count; LoopForever repeats until stopped.
func (r Request) WithLoopCount(n int) Request {
	r.loopCount = &n
	return r
}

// WithPan sets the stereo balance in [-1, 1].
func (r Request) WithPan(pan float32) Request {
	r.pan = &pan
	return r
}

// WithVolume sets the channel volume immediately.
func (r Request) WithVolume(v float32) Request {
	r.volume = &v
	return r
}

// WithMute sets the channel mute flag.
func (r Request) WithMute(mute bool) Request {
	r.mute = &mute
	return r
}

// WithPaused sets the channel paused flag. It is applied after every other
// field so an unpause never exposes a partially configured channel.
func (r Request) WithPaused(paused bool) Request {
	r.paused = &paused
	return r
}

// WithFade appends the plan's points and, if the plan carries one, its stop.
func (r Request) WithFade(p fade.Plan) Request {
	pts := make([]fade.Point, 0, len(r.points)+2)
	pts = append(pts, r.points...)
	pts = append(pts, p.Points[0], p.Points[1])
	r.points = pts
	if at, ok := p.StopAt(); ok {
		r.stopAt = &at
	}
	return r
}

// LoopCount returns the requested loop count, if set.
func (r Request) LoopCount() (int, bool) { return deref(r.loopCount) }

// Pan returns the requested pan, if set.
func (r Request) Pan() (float32, bool) { return deref(r.pan) }

// Volume returns the requested volume, if set.
func (r Request) Volume() (float32, bool) { return deref(r.volume) }

// Mute returns the requested mute flag, if set.
func (r Request) Mute() (bool, bool) { return deref(r.mute) }

// Paused returns the requested paused flag, if set.
func (r Request) Paused() (bool, bool) { return deref(r.paused) }

// FadePoints returns the fade points to add, in submission order.
func (r Request) FadePoints() []fade.Point { return r.points }

// StopAt returns the requested stop clock, if set.
func (r Request) StopAt() (uint64, bool) { return deref(r.stopAt) }

// Empty reports whether the request changes nothing.
func (r Request) Empty() bool {
	return r.loopCount == nil && r.pan == nil && r.volume == nil &&
		r.mute == nil && r.paused == nil && len(r.points) == 0 && r.stopAt == nil
}

// Validate checks every field without touching any channel.
func (r Request) Validate() error {
	if n, ok := r.LoopCount(); ok && n < LoopForever {
		return fmt.Errorf("%w: loop count %d", ErrInvalidRequest, n)
	}
	if p, ok := r.Pan(); ok && (p < -1 || p > 1 || isNaN(p)) {
		return fmt.Errorf("%w: pan %v outside [-1, 1]", ErrInvalidRequest, p)
	}
	if v, ok := r.Volume(); ok && (v < 0 || isNaN(v)) {
		return fmt.Errorf("%w: volume %v", ErrInvalidRequest, v)
	}
	for i, pt := range r.points {
		if pt.Volume < 0 || isNaN(pt.Volume) {
			return fmt.Errorf("%w: fade point %d volume %v", ErrInvalidRequest, i, pt.Volume)
		}
		if i > 0 && pt.Clock < r.points[i-1].Clock {
			return fmt.Errorf("%w: fade point %d goes back in time", ErrInvalidRequest, i)
		}
	}
	return nil
}

func deref[T any](p *T) (T, bool) {
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}

func isNaN(f float32) bool {
	return math.IsNaN(float64(f))
}
