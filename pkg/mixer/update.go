package mixer

import (
	"fmt"

	"github.com/dgnsrekt/tickmix/internal/backend"
	"github.com/dgnsrekt/tickmix/internal/fade"
)

// Update pumps the backend and advances the music slot. It must be called
// at a steady cadence; a late tick only delays music transitions because
// every fade is stamped with the backend's DSP clock.
func (m *Mixer) Update() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.usable("update"); err != nil {
		return err
	}
	if err := m.b.Update(); err != nil {
		return backendFailure("update", err)
	}
	return m.advanceMusic()
}

// advanceMusic performs at most one music transition. Must be called with
// m.mu held.
func (m *Mixer) advanceMusic() error {
	switch m.music.mode {
	case MusicLoadingNormal, MusicLoadingFadeIn:
		state, err := m.b.OpenState(m.music.stream)
		if err != nil {
			return backendFailure("update", err)
		}
		switch state {
		case backend.OpenLoading:
			return nil
		case backend.OpenError:
			return m.abandonStream()
		}
		if m.music.mode == MusicLoadingNormal {
			return m.startMusic()
		}
		return m.startMusicFadeIn()

	case MusicPlaying:
		playing, err := m.b.IsPlaying(m.music.channel)
		if err != nil && !channelGone(err) {
			return backendFailure("update", err)
		}
		if !playing {
			logger.Debug("Music ended", "path", m.music.channelPath)
			m.clearMusic()
		}
	}
	return nil
}

// startMusic starts the ready stream at full volume.
func (m *Mixer) startMusic() error {
	ch, err := m.b.Play(m.music.stream, m.master, true)
	if err != nil {
		m.clearMusic()
		return backendFailure("update", err)
	}

	req := backend.NewRequest().
		WithMute(m.music.muted).
		WithPaused(false)
	if err := m.b.Submit(ch, req); err != nil {
		m.discardChannel(ch)
		m.clearMusic()
		return backendFailure("update", err)
	}

	m.music.channel = ch
	m.music.hasChannel = true
	m.music.channelPath = m.music.streamPath
	m.music.mode = MusicPlaying

	logger.Debug("Music playing", "path", m.music.channelPath, "channel", ch, "muted", m.music.muted)
	return nil
}

// startMusicFadeIn fades out whatever is still in the slot and fades the
// ready stream in from silence to the stored target volume.
func (m *Mixer) startMusicFadeIn() error {
	if m.music.hasChannel {
		old := m.music.channel
		if err := m.fadeChannel("update", old, m.cfg.MusicFadeOut, 1, 0, true); err != nil {
			m.clearMusic()
			return err
		}
		m.music.channel = 0
		m.music.hasChannel = false
	}

	ch, err := m.b.Play(m.music.stream, m.master, true)
	if err != nil {
		m.clearMusic()
		return backendFailure("update", err)
	}

	fail := func(err error) error {
		m.discardChannel(ch)
		m.clearMusic()
		return backendFailure("update", err)
	}

	rate, err := m.b.SampleRate()
	if err != nil {
		return fail(err)
	}
	clock, err := m.b.DSPClock(ch)
	if err != nil {
		return fail(err)
	}

	plan := fade.Schedule(clock, rate, m.cfg.MusicFadeIn.Seconds(), 0, m.music.pendingTarget)
	req := backend.NewRequest().
		WithFade(plan).
		WithMute(m.music.muted).
		WithPaused(false)
	if err := m.b.Submit(ch, req); err != nil {
		return fail(err)
	}

	m.music.channel = ch
	m.music.hasChannel = true
	m.music.channelPath = m.music.streamPath
	m.music.target = m.music.pendingTarget
	m.music.mode = MusicPlaying

	logger.Debug("Music fading in",
		"path", m.music.channelPath,
		"channel", ch,
		"target", m.music.target,
		"start", clock,
		"end", plan.End)
	return nil
}

// abandonStream handles a stream whose open failed. A channel still left
// over from the previous music keeps being tracked with its own path and
// volume.
func (m *Mixer) abandonStream() error {
	path := m.music.streamPath
	err := fmt.Errorf("%w: %s", ErrStreamOpenFailed, path)
	if cause := m.b.OpenError(m.music.stream); cause != nil {
		err = fmt.Errorf("%w: %s: %w", ErrStreamOpenFailed, path, cause)
	}

	m.releaseStream()
	if m.music.hasChannel {
		m.music.mode = MusicPlaying
	} else {
		m.clearMusic()
	}

	logger.Warn("Music stream failed to open", "path", path, "error", err)
	return &OpError{
		Op:   "update",
		Kind: ErrBackendCallFailed,
		Err:  err,
	}
}
