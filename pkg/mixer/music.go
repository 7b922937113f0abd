package mixer

import (
	"github.com/dgnsrekt/tickmix/internal/backend"
)

// MusicMode is the state of the music slot.
type MusicMode int

const (
	// MusicIdle means no music is playing or pending.
	MusicIdle MusicMode = iota
	// MusicLoadingNormal means a stream is opening and will start at full
	// volume.
	MusicLoadingNormal
	// MusicLoadingFadeIn means a stream is opening and will fade in over
	// whatever is still playing.
	MusicLoadingFadeIn
	// MusicPlaying means the slot's channel is playing.
	MusicPlaying
)

// String returns the string representation of the music mode.
func (m MusicMode) String() string {
	switch m {
	case MusicIdle:
		return "idle"
	case MusicLoadingNormal:
		return "loading"
	case MusicLoadingFadeIn:
		return "loading-fade-in"
	case MusicPlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// musicSlot is the single music slot. The stream is the most recently
// requested one; the channel may still belong to the previous stream while a
// fade-in is pending.
type musicSlot struct {
	stream      backend.SoundID
	hasStream   bool
	streamPath  string
	channel     backend.ChannelID
	hasChannel  bool
	channelPath string
	mode        MusicMode

	// Volume the pending fade-in will reach.
	pendingTarget float32

	// Survive clearMusic.
	target float32
	muted  bool
}

// streamMode is used for every music stream.
const streamMode = backend.ModeLoopNormal | backend.ModeNonBlocking

// PlayMusic stops the current music immediately and starts opening path.
// The new stream starts playing at full volume on the first tick after it
// is ready.
func (m *Mixer) PlayMusic(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.usable("play music"); err != nil {
		return err
	}

	if m.music.hasChannel {
		if err := m.b.Stop(m.music.channel); err != nil && !channelGone(err) {
			return backendFailure("play music", err)
		}
	}
	m.clearMusic()

	stream, err := m.b.CreateStream(path, streamMode)
	if err != nil {
		return backendFailure("play music", err)
	}

	m.music.stream = stream
	m.music.hasStream = true
	m.music.streamPath = path
	m.music.mode = MusicLoadingNormal

	logger.Debug("Music stream opening", "path", path, "mode", m.music.mode)
	return nil
}

// FadeInMusic starts opening path. Once it is ready, the music currently
// playing fades out and the new stream fades in from silence to volume.
func (m *Mixer) FadeInMusic(path string, volume float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.usable("fade in music"); err != nil {
		return err
	}
	if volume < 0 || volume != volume {
		return backendFailure("fade in music", backend.ErrInvalidRequest)
	}

	stream, err := m.b.CreateStream(path, streamMode)
	if err != nil {
		return backendFailure("fade in music", err)
	}

	// The previous channel keeps playing until the new stream is ready; only
	// the superseded stream reference is dropped.
	m.releaseStream()

	m.music.stream = stream
	m.music.hasStream = true
	m.music.streamPath = path
	m.music.mode = MusicLoadingFadeIn
	m.music.pendingTarget = volume

	logger.Debug("Music stream opening", "path", path, "mode", m.music.mode, "target", volume)
	return nil
}

// StopMusic stops the music channel immediately and clears the slot.
func (m *Mixer) StopMusic() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.usable("stop music"); err != nil {
		return err
	}
	if m.music.hasChannel {
		if err := m.b.Stop(m.music.channel); err != nil && !channelGone(err) {
			return backendFailure("stop music", err)
		}
	}
	m.clearMusic()
	return nil
}

// FadeOutMusic fades the music channel to silence and stops it at the end
// of the fade. The slot stays in its current mode until a later tick sees
// the channel end.
func (m *Mixer) FadeOutMusic() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.usable("fade out music"); err != nil {
		return err
	}
	if !m.music.hasChannel {
		return nil
	}
	return m.fadeChannel("fade out music", m.music.channel, m.cfg.MusicFadeOut, 1, 0, true)
}

// RampMusicToNormalVolume fades the music channel from the last fade-in
// volume back up to full volume, undoing a duck without restarting.
func (m *Mixer) RampMusicToNormalVolume() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.usable("ramp music"); err != nil {
		return err
	}
	if !m.music.hasChannel {
		return nil
	}
	return m.fadeChannel("ramp music", m.music.channel, m.cfg.MusicRampToNormal, m.music.target, 1, false)
}

// MusicMode returns the state of the music slot.
func (m *Mixer) MusicMode() MusicMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.music.mode
}

// IsMusicPlaying reports whether the music slot is in MusicPlaying.
func (m *Mixer) IsMusicPlaying() bool {
	return m.MusicMode() == MusicPlaying
}

// MusicPosition returns the playback position of the music channel in
// milliseconds, or 0 when there is none.
func (m *Mixer) MusicPosition() (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.usable("music position"); err != nil {
		return 0, err
	}
	if !m.music.hasChannel {
		return 0, nil
	}
	ms, err := m.b.Position(m.music.channel)
	if err != nil {
		if channelGone(err) {
			return 0, nil
		}
		return 0, backendFailure("music position", err)
	}
	return ms, nil
}

// SetMusicPosition seeks the music channel to ms milliseconds.
func (m *Mixer) SetMusicPosition(ms uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.usable("set music position"); err != nil {
		return err
	}
	if !m.music.hasChannel {
		return nil
	}
	if err := m.b.SetPosition(m.music.channel, ms); err != nil && !channelGone(err) {
		return backendFailure("set music position", err)
	}
	return nil
}

// clearMusic forgets the channel, releases the stream and returns the slot
// to idle. The fade-in target and mute flag are kept. It does not stop the
// channel. Must be called with m.mu held.
func (m *Mixer) clearMusic() {
	m.releaseStream()
	m.music.channel = 0
	m.music.hasChannel = false
	m.music.channelPath = ""
	m.music.mode = MusicIdle
}

// releaseStream drops the slot's stream reference. Channels already playing
// from it are unaffected. Must be called with m.mu held.
func (m *Mixer) releaseStream() {
	if !m.music.hasStream {
		return
	}
	if err := m.b.ReleaseSound(m.music.stream); err != nil {
		logger.Warn("Failed to release music stream", "path", m.music.streamPath, "error", err)
	}
	m.music.stream = 0
	m.music.hasStream = false
	m.music.streamPath = ""
}
