package mixer

import (
	"errors"
	"testing"

	"github.com/dgnsrekt/tickmix/internal/backend"
	"github.com/dgnsrekt/tickmix/internal/backend/backendtest"
)

func TestSetSoundVolumeOnlyTouchesEffects(t *testing.T) {
	m, fake := newTestMixer(t)
	c := playingMusic(t, m, fake, "theme.ogg")

	if err := m.SetSoundVolume(0.25); err != nil {
		t.Fatalf("SetSoundVolume failed: %v", err)
	}

	effects, _ := fake.Group(m.effects)
	if effects.Volume != 0.25 {
		t.Errorf("effects volume: got %v, want 0.25", effects.Volume)
	}
	master, _ := fake.Group(backendtest.Master)
	if master.Volume != 1 {
		t.Errorf("master volume changed: %v", master.Volume)
	}
	if got, _ := fake.Channel(c.ID); got.Volume != 1 {
		t.Errorf("music volume changed: %v", got.Volume)
	}

	if err := m.SetSoundVolume(-1); !errors.Is(err, backend.ErrInvalidRequest) {
		t.Errorf("negative volume: got %v", err)
	}
}

func TestSetMusicVolumeIsInstant(t *testing.T) {
	m, fake := newTestMixer(t)
	c := playingMusic(t, m, fake, "theme.ogg")

	if err := m.SetMusicVolume(0.3); err != nil {
		t.Fatalf("SetMusicVolume failed: %v", err)
	}
	got, _ := fake.Channel(c.ID)
	if got.Volume != 0.3 {
		t.Errorf("volume: got %v, want 0.3", got.Volume)
	}
	if len(got.FadePoints) != 0 {
		t.Error("SetMusicVolume must not schedule a fade")
	}
}

func TestMuteMusicWhileIdleAppliesToNextMusic(t *testing.T) {
	m, fake := newTestMixer(t)

	if err := m.MuteMusic(true); err != nil {
		t.Fatalf("MuteMusic failed: %v", err)
	}
	if len(fake.Calls()) != 0 {
		t.Errorf("muting with no music reached the backend: %v", fake.CallNames())
	}

	c := playingMusic(t, m, fake, "theme.ogg")
	if !c.Mute {
		t.Error("new music channel is not muted")
	}
	if c.Submits != 1 {
		t.Errorf("mute must be part of the start request, got %d submits", c.Submits)
	}

	// Survives a restart with a fade-in too.
	if err := m.FadeInMusic("next.ogg", 1); err != nil {
		t.Fatalf("FadeInMusic failed: %v", err)
	}
	fake.MarkReady("next.ogg")
	if err := m.Update(); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if next := fake.ChannelsFor("next.ogg")[0]; !next.Mute {
		t.Error("fade-in music channel is not muted")
	}
}

func TestMuteMusicWhilePlaying(t *testing.T) {
	m, fake := newTestMixer(t)
	c := playingMusic(t, m, fake, "theme.ogg")

	if err := m.MuteMusic(true); err != nil {
		t.Fatalf("MuteMusic failed: %v", err)
	}
	if got, _ := fake.Channel(c.ID); !got.Mute {
		t.Error("playing music was not muted")
	}
	if !m.MusicMuted() {
		t.Error("mute flag not stored")
	}

	if err := m.MuteMusic(false); err != nil {
		t.Fatalf("MuteMusic failed: %v", err)
	}
	if got, _ := fake.Channel(c.ID); got.Mute {
		t.Error("music still muted")
	}
}

func TestMusicMutedFromConfig(t *testing.T) {
	m, fake := newTestMixer(t, func(c *Config) { c.MusicMuted = true })

	c := playingMusic(t, m, fake, "theme.ogg")
	if !c.Mute {
		t.Error("MusicMuted config not applied")
	}
}

func TestPauseAudioClearsMusic(t *testing.T) {
	m, fake := newTestMixer(t)
	c := playingMusic(t, m, fake, "theme.ogg")

	if err := m.PauseAudio(true); err != nil {
		t.Fatalf("PauseAudio failed: %v", err)
	}

	master, _ := fake.Group(backendtest.Master)
	if !master.Paused {
		t.Error("master group not paused")
	}
	if m.IsMusicPlaying() {
		t.Error("music should read as idle after PauseAudio")
	}
	if got, _ := fake.Channel(c.ID); !got.Playing {
		t.Error("PauseAudio should not stop the channel at the backend")
	}

	if err := m.PauseAudio(false); err != nil {
		t.Fatalf("PauseAudio(false) failed: %v", err)
	}
	if master, _ := fake.Group(backendtest.Master); master.Paused {
		t.Error("master group still paused")
	}
	if m.MusicMode() != MusicIdle {
		t.Errorf("mode after resume: got %v, want idle", m.MusicMode())
	}
}

func TestStopAudio(t *testing.T) {
	m, fake := newTestMixer(t)
	music := playingMusic(t, m, fake, "theme.ogg")
	h := loadReady(t, m, fake, "laser.wav")
	sfx, err := m.Play(h, backend.LoopForever, 0)
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	if err := m.StopAudio(); err != nil {
		t.Fatalf("StopAudio failed: %v", err)
	}
	for _, ch := range []ChannelID{music.ID, sfx} {
		if got, _ := fake.Channel(ch); got.Playing {
			t.Errorf("channel %d still playing", ch)
		}
	}
	if m.MusicMode() != MusicIdle {
		t.Errorf("mode: got %v, want idle", m.MusicMode())
	}

	fake.FailOn("StopGroup", errBoom)
	if err := m.StopAudio(); Status(err) != StatusBackendCallFailed {
		t.Errorf("StopAudio failure: got %v", err)
	}
}
