package softmix

import (
	"fmt"

	"github.com/dgnsrekt/tickmix/internal/backend"
	"github.com/dgnsrekt/tickmix/internal/decode"
	"github.com/dgnsrekt/tickmix/internal/fade"
)

type voice struct {
	clip    *decode.Clip
	group   backend.GroupID
	looping bool

	pos       int // next frame to render
	loopsLeft int

	volume      float32
	mute        bool
	paused      bool
	pan         float32
	left, right float32

	points  []fade.Point
	stopAt  uint64
	hasStop bool
}

func (v *voice) setPan(pan float32) {
	v.pan = pan
	// balance law: centre leaves both sides at full level
	v.left = min(1, 1-pan)
	v.right = min(1, 1+pan)
}

// addPoints replaces every scheduled point at or after the first new one.
func (v *voice) addPoints(pts []fade.Point) {
	if len(pts) == 0 {
		return
	}
	keep := 0
	for keep < len(v.points) && v.points[keep].Clock < pts[0].Clock {
		keep++
	}
	v.points = append(v.points[:keep:keep], pts...)
}

// prune drops points that can no longer affect the curve at or after clock.
func (v *voice) prune(clock uint64) {
	for len(v.points) >= 2 && v.points[1].Clock <= clock {
		v.points = v.points[1:]
	}
}

// Play starts a voice for a ready sound. Voices on a looping sound repeat
// forever until their loop count says otherwise.
func (e *Engine) Play(id backend.SoundID, g backend.GroupID, paused bool) (backend.ChannelID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.sound(id)
	if err != nil {
		return 0, err
	}
	if s.state != backend.OpenReady {
		return 0, fmt.Errorf("%w: %s is %s", backend.ErrNotReady, s.path, s.state)
	}
	if _, err := e.group(g); err != nil {
		return 0, err
	}
	if len(e.voices) >= e.maxChannels {
		return 0, fmt.Errorf("%w: %d in use", backend.ErrNoFreeChannel, len(e.voices))
	}

	v := &voice{
		clip:    s.clip,
		group:   g,
		looping: s.mode.Has(backend.ModeLoopNormal),
		volume:  1,
		paused:  paused,
	}
	if v.looping {
		v.loopsLeft = backend.LoopForever
	}
	v.setPan(0)

	ch := e.nextChannel
	e.nextChannel++
	e.voices[ch] = v
	return ch, nil
}

// DSPClock returns the engine clock as seen by a live channel.
func (e *Engine) DSPClock(ch backend.ChannelID) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.voice(ch); err != nil {
		return 0, err
	}
	return e.clock, nil
}

// Submit validates req and applies it to the channel as one change. The
// paused flag is applied last.
func (e *Engine) Submit(ch backend.ChannelID, req backend.Request) error {
	if err := req.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	v, err := e.voice(ch)
	if err != nil {
		return err
	}

	if n, ok := req.LoopCount(); ok && v.looping {
		v.loopsLeft = n
	}
	if pan, ok := req.Pan(); ok {
		v.setPan(pan)
	}
	if vol, ok := req.Volume(); ok {
		v.volume = vol
	}
	if mute, ok := req.Mute(); ok {
		v.mute = mute
	}
	v.addPoints(req.FadePoints())
	if at, ok := req.StopAt(); ok {
		v.stopAt = at
		v.hasStop = true
	}
	if paused, ok := req.Paused(); ok {
		v.paused = paused
	}
	return nil
}

// IsPlaying reports true for any live channel, paused or not. Ended
// channels return ErrChannelNotFound.
func (e *Engine) IsPlaying(ch backend.ChannelID) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.voice(ch); err != nil {
		return false, err
	}
	return true, nil
}

// Stop ends the channel immediately.
func (e *Engine) Stop(ch backend.ChannelID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.voice(ch); err != nil {
		return err
	}
	delete(e.voices, ch)
	return nil
}

// Position returns the playback offset within the current loop, in ms.
func (e *Engine) Position(ch backend.ChannelID) (uint32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	v, err := e.voice(ch)
	if err != nil {
		return 0, err
	}
	return uint32(uint64(v.pos) * 1000 / uint64(e.rate)), nil
}

// SetPosition seeks the channel to ms.
func (e *Engine) SetPosition(ch backend.ChannelID, ms uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	v, err := e.voice(ch)
	if err != nil {
		return err
	}
	frame := int(uint64(ms) * uint64(e.rate) / 1000)
	if frame >= v.clip.Frames() {
		return fmt.Errorf("%w: position %d ms beyond %s", backend.ErrInvalidRequest, ms, v.clip.Duration())
	}
	v.pos = frame
	return nil
}

// voice must be called with the lock held.
func (e *Engine) voice(ch backend.ChannelID) (*voice, error) {
	if e.closed {
		return nil, backend.ErrClosed
	}
	v, ok := e.voices[ch]
	if !ok {
		return nil, fmt.Errorf("%w: %d", backend.ErrChannelNotFound, ch)
	}
	return v, nil
}
