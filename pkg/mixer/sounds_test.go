package mixer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dgnsrekt/tickmix/internal/backend"
)

func TestLoadIssuesIncreasingHandles(t *testing.T) {
	m, fake := newTestMixer(t)

	var last Handle
	for i := 0; i < 10; i++ {
		h, err := m.Load(fmt.Sprintf("sfx-%d.wav", i))
		if err != nil {
			t.Fatalf("Load %d failed: %v", i, err)
		}
		if h <= 0 || int(h) >= m.cfg.MaxSounds {
			t.Errorf("handle %d out of range 1..%d", h, m.cfg.MaxSounds-1)
		}
		if h <= last {
			t.Errorf("handle %d not greater than previous %d", h, last)
		}
		last = h
	}

	sounds := fake.SoundsFor("sfx-0.wav")
	if len(sounds) != 1 {
		t.Fatalf("sounds opened: got %d, want 1", len(sounds))
	}
	if !sounds[0].Mode.Has(backend.ModeNonBlocking | backend.ModeLoopNormal) {
		t.Errorf("sound mode: got %b, want non-blocking looping open", sounds[0].Mode)
	}
	if sounds[0].Stream {
		t.Error("sound effects must not be opened as streams")
	}
}

func TestLoadCapacityExhausted(t *testing.T) {
	m, fake := newTestMixer(t, func(c *Config) { c.MaxSounds = 4 })

	var handles []Handle
	for i := 0; i < 3; i++ {
		h, err := m.Load(fmt.Sprintf("sfx-%d.wav", i))
		if err != nil {
			t.Fatalf("Load %d failed: %v", i, err)
		}
		handles = append(handles, h)
	}

	_, err := m.Load("one-too-many.wav")
	if !errors.Is(err, ErrCapacityExhausted) {
		t.Fatalf("expected ErrCapacityExhausted, got %v", err)
	}
	if Status(err) != StatusCapacityExhausted {
		t.Errorf("status: got %d, want %d", Status(err), StatusCapacityExhausted)
	}
	if got := fake.SoundsFor("one-too-many.wav"); len(got) != 0 {
		t.Error("a full pool must not open the sound at the backend")
	}

	// Earlier handles stay valid.
	for i, h := range handles {
		fake.MarkReady(fmt.Sprintf("sfx-%d.wav", i))
		if _, err := m.Play(h, 0, 0); err != nil {
			t.Errorf("Play(%d) after exhaustion failed: %v", h, err)
		}
	}
	if m.Sounds() != 3 {
		t.Errorf("Sounds: got %d, want 3", m.Sounds())
	}
}

func TestLoadFailedOpenKeepsHandle(t *testing.T) {
	m, fake := newTestMixer(t)

	fake.FailOn("CreateSound", errBoom)
	if _, err := m.Load("broken.wav"); Status(err) != StatusBackendCallFailed {
		t.Fatalf("expected backend failure, got %v", err)
	}

	fake.FailOn("CreateSound", nil)
	h, err := m.Load("fine.wav")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if h != 1 {
		t.Errorf("handle after failed open: got %d, want 1", h)
	}
}

func TestSoundState(t *testing.T) {
	m, fake := newTestMixer(t)

	h, err := m.Load("click.wav")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	state, err := m.SoundState(h)
	if err != nil || state != backend.OpenLoading {
		t.Errorf("state before ready: got %v, %v", state, err)
	}
	fake.MarkReady("click.wav")
	state, err = m.SoundState(h)
	if err != nil || state != backend.OpenReady {
		t.Errorf("state after ready: got %v, %v", state, err)
	}

	if _, err := m.SoundState(h + 1); Status(err) != StatusInvalidHandle {
		t.Errorf("unknown handle: got %v", err)
	}
}
