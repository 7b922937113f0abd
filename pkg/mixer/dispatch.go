package mixer

import (
	"time"

	"github.com/dgnsrekt/tickmix/internal/backend"
	"github.com/dgnsrekt/tickmix/internal/fade"
)

// Play starts a new channel for the sound h in the effects group. loopCount
// is the number of extra repetitions (-1 loops until stopped) and pan ranges
// from -1 (left) to 1 (right).
//
// The channel is created paused and configured with a single request, so a
// failure never leaves a half-configured channel audible.
func (m *Mixer) Play(h Handle, loopCount int, pan float32) (ChannelID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.usable("play"); err != nil {
		return 0, err
	}
	asset, err := m.sounds.Get(h)
	if err != nil {
		return 0, &OpError{Op: "play", Kind: ErrInvalidHandle, Err: err}
	}

	req := backend.NewRequest().
		WithLoopCount(loopCount).
		WithPan(pan).
		WithPaused(false)
	if err := req.Validate(); err != nil {
		return 0, backendFailure("play", err)
	}

	ch, err := m.b.Play(asset.id, m.effects, true)
	if err != nil {
		return 0, backendFailure("play", err)
	}
	if err := m.b.Submit(ch, req); err != nil {
		m.discardChannel(ch)
		return 0, backendFailure("play", err)
	}
	return ch, nil
}

// FadeOutChannel fades ch to silence over the configured sound fade-out time
// and stops it when the fade completes. A channel that has already ended is
// not an error.
func (m *Mixer) FadeOutChannel(ch ChannelID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.usable("fade out channel"); err != nil {
		return err
	}
	return m.fadeChannel("fade out channel", ch, m.cfg.SoundFadeOut, 1, 0, true)
}

// StopChannel stops ch immediately, overriding any scheduled fade.
func (m *Mixer) StopChannel(ch ChannelID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.usable("stop channel"); err != nil {
		return err
	}
	if err := m.b.Stop(ch); err != nil && !channelGone(err) {
		return backendFailure("stop channel", err)
	}
	return nil
}

// SetLoopCount changes how many more times ch repeats.
func (m *Mixer) SetLoopCount(ch ChannelID, loopCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.usable("set loop count"); err != nil {
		return err
	}
	return m.submit("set loop count", ch, backend.NewRequest().WithLoopCount(loopCount))
}

// fadeChannel schedules a linear fade on ch starting at its current DSP
// clock, optionally stopping the channel at the fade's end. Must be called
// with m.mu held.
func (m *Mixer) fadeChannel(op string, ch ChannelID, d time.Duration, from, to float32, stop bool) error {
	clock, err := m.b.DSPClock(ch)
	if err != nil {
		if channelGone(err) {
			return nil
		}
		return backendFailure(op, err)
	}
	rate, err := m.b.SampleRate()
	if err != nil {
		return backendFailure(op, err)
	}

	plan := fade.Schedule(clock, rate, d.Seconds(), from, to)
	if stop {
		plan = plan.WithStop()
	}

	logger.Debug("Fade scheduled",
		"op", op,
		"channel", ch,
		"from", from,
		"to", to,
		"start", clock,
		"end", plan.End)

	return m.submit(op, ch, backend.NewRequest().WithFade(plan))
}

// submit sends req to ch, treating an ended channel as success. Must be
// called with m.mu held.
func (m *Mixer) submit(op string, ch ChannelID, req backend.Request) error {
	if err := m.b.Submit(ch, req); err != nil && !channelGone(err) {
		return backendFailure(op, err)
	}
	return nil
}

// discardChannel stops a channel whose setup failed. Must be called with
// m.mu held.
func (m *Mixer) discardChannel(ch ChannelID) {
	if err := m.b.Stop(ch); err != nil && !channelGone(err) {
		logger.Warn("Failed to stop half-configured channel", "channel", ch, "error", err)
	}
}
