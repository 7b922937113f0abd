package mixer

import (
	"github.com/dgnsrekt/tickmix/internal/backend"
)

// SetSoundVolume sets the volume of the effects group. Music is not
// affected.
func (m *Mixer) SetSoundVolume(volume float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.usable("set sound volume"); err != nil {
		return err
	}
	if volume < 0 || volume != volume {
		return backendFailure("set sound volume", backend.ErrInvalidRequest)
	}
	if err := m.b.SetGroupVolume(m.effects, volume); err != nil {
		return backendFailure("set sound volume", err)
	}
	return nil
}

// SetMusicVolume changes the volume of the music channel at once. It does
// not schedule a fade.
func (m *Mixer) SetMusicVolume(volume float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.usable("set music volume"); err != nil {
		return err
	}
	if !m.music.hasChannel {
		return nil
	}
	return m.submit("set music volume", m.music.channel, backend.NewRequest().WithVolume(volume))
}

// MuteMusic sets the persistent music mute flag. It applies to the current
// music channel, if any, and to every music channel started later.
func (m *Mixer) MuteMusic(mute bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.usable("mute music"); err != nil {
		return err
	}
	m.music.muted = mute
	if !m.music.hasChannel {
		return nil
	}
	return m.submit("mute music", m.music.channel, backend.NewRequest().WithMute(mute))
}

// MusicMuted reports the persistent music mute flag.
func (m *Mixer) MusicMuted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.music.muted
}

// PauseAudio pauses or resumes every channel through the master group and
// clears the music slot. Scheduled fades are left to the backend.
func (m *Mixer) PauseAudio(paused bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.usable("pause audio"); err != nil {
		return err
	}
	if err := m.b.SetGroupPaused(m.master, paused); err != nil {
		return backendFailure("pause audio", err)
	}
	m.clearMusic()
	return nil
}

// StopAudio stops every channel through the master group and clears the
// music slot.
func (m *Mixer) StopAudio() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.usable("stop audio"); err != nil {
		return err
	}
	if err := m.b.StopGroup(m.master); err != nil {
		return backendFailure("stop audio", err)
	}
	m.clearMusic()
	return nil
}
