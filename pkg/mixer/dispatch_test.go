package mixer

import (
	"errors"
	"testing"

	"github.com/dgnsrekt/tickmix/internal/backend"
	"github.com/dgnsrekt/tickmix/internal/fade"
)

func loadReady(t *testing.T, m *Mixer, fake interface{ MarkReady(string) }, path string) Handle {
	t.Helper()
	h, err := m.Load(path)
	if err != nil {
		t.Fatalf("Load(%s) failed: %v", path, err)
	}
	fake.MarkReady(path)
	return h
}

func TestPlayConfiguresChannelAtomically(t *testing.T) {
	m, fake := newTestMixer(t)
	h := loadReady(t, m, fake, "laser.wav")
	fake.ResetCalls()

	ch, err := m.Play(h, 2, -0.5)
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	calls := fake.Calls()
	if len(calls) != 2 || calls[0].Name != "Play" || calls[1].Name != "Submit" {
		t.Fatalf("calls: got %v, want [Play Submit]", fake.CallNames())
	}
	if !calls[0].Paused {
		t.Error("channel must be started paused")
	}
	if calls[0].Group != m.effects {
		t.Errorf("group: got %d, want effects %d", calls[0].Group, m.effects)
	}

	c, ok := fake.Channel(ch)
	if !ok {
		t.Fatal("channel not found")
	}
	if c.Paused {
		t.Error("channel still paused after Play")
	}
	if c.LoopCount != 2 {
		t.Errorf("loop count: got %d, want 2", c.LoopCount)
	}
	if c.Pan != -0.5 {
		t.Errorf("pan: got %v, want -0.5", c.Pan)
	}
	if c.Submits != 1 {
		t.Errorf("submits: got %d, want 1", c.Submits)
	}
}

func TestPlayInvalidHandle(t *testing.T) {
	m, fake := newTestMixer(t)
	loadReady(t, m, fake, "laser.wav")
	fake.ResetCalls()

	for _, h := range []Handle{0, -1, 2, 300} {
		_, err := m.Play(h, 0, 0)
		if !errors.Is(err, ErrInvalidHandle) {
			t.Errorf("Play(%d): got %v, want ErrInvalidHandle", h, err)
		}
		if Status(err) != StatusInvalidHandle {
			t.Errorf("Play(%d) status: got %d, want %d", h, Status(err), StatusInvalidHandle)
		}
	}
	if len(fake.Calls()) != 0 {
		t.Errorf("invalid handles reached the backend: %v", fake.CallNames())
	}
}

func TestPlayRejectsBadPanBeforeStarting(t *testing.T) {
	m, fake := newTestMixer(t)
	h := loadReady(t, m, fake, "laser.wav")
	fake.ResetCalls()

	_, err := m.Play(h, 0, 1.5)
	if !errors.Is(err, backend.ErrInvalidRequest) {
		t.Errorf("got %v, want ErrInvalidRequest", err)
	}
	if countCalls(fake, "Play") != 0 {
		t.Error("no channel should be started for an invalid request")
	}
}

func TestPlaySubmitFailureStopsChannel(t *testing.T) {
	m, fake := newTestMixer(t)
	h := loadReady(t, m, fake, "laser.wav")

	fake.FailOn("Submit", errBoom)
	_, err := m.Play(h, 0, 0)
	if Status(err) != StatusBackendCallFailed || !errors.Is(err, errBoom) {
		t.Fatalf("expected backend failure, got %v", err)
	}

	channels := fake.ChannelsFor("laser.wav")
	if len(channels) != 1 {
		t.Fatalf("channels: got %d, want 1", len(channels))
	}
	if channels[0].Playing {
		t.Error("half-configured channel was left playing")
	}
}

func TestPlayBeforeReadyFails(t *testing.T) {
	m, _ := newTestMixer(t)
	h, err := m.Load("slow.wav")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	_, err = m.Play(h, 0, 0)
	if !errors.Is(err, backend.ErrNotReady) {
		t.Errorf("got %v, want ErrNotReady", err)
	}
}

func TestFadeOutChannel(t *testing.T) {
	m, fake := newTestMixer(t)
	h := loadReady(t, m, fake, "engine.wav")

	ch, err := m.Play(h, backend.LoopForever, 0)
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	fake.Advance(1000)
	if err := m.FadeOutChannel(ch); err != nil {
		t.Fatalf("FadeOutChannel failed: %v", err)
	}

	c, _ := fake.Channel(ch)
	end := uint64(1000 + testRate/10)
	want := []fade.Point{{Clock: 1000, Volume: 1}, {Clock: end, Volume: 0}}
	if len(c.FadePoints) != 2 || c.FadePoints[0] != want[0] || c.FadePoints[1] != want[1] {
		t.Errorf("fade points: got %+v, want %+v", c.FadePoints, want)
	}
	if !c.HasStop || c.StopAt != end {
		t.Errorf("stop: got %v at %d, want stop at %d", c.HasStop, c.StopAt, end)
	}

	// The backend stops the channel on its own once the clock passes the end.
	fake.Advance(testRate / 10)
	if err := m.Update(); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if c, _ := fake.Channel(ch); c.Playing {
		t.Error("channel still playing after its scheduled stop")
	}
}

func TestChannelOperationsOnEndedChannels(t *testing.T) {
	m, fake := newTestMixer(t)
	h := loadReady(t, m, fake, "blip.wav")

	ch, err := m.Play(h, 0, 0)
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	fake.Finish(ch)
	fake.ResetCalls()

	if err := m.FadeOutChannel(ch); err != nil {
		t.Errorf("FadeOutChannel on ended channel: %v", err)
	}
	if err := m.StopChannel(ch); err != nil {
		t.Errorf("StopChannel on ended channel: %v", err)
	}
	if err := m.SetLoopCount(ch, 3); err != nil {
		t.Errorf("SetLoopCount on ended channel: %v", err)
	}
	if err := m.FadeOutChannel(ChannelID(999)); err != nil {
		t.Errorf("FadeOutChannel on unknown channel: %v", err)
	}
	if countCalls(fake, "Submit") != 1 {
		// Only SetLoopCount gets as far as Submit; the fade stops at DSPClock.
		t.Errorf("submits: got %d, want 1", countCalls(fake, "Submit"))
	}
	if c, _ := fake.Channel(ch); c.Submits != 1 {
		t.Errorf("ended channel accepted a request: %d submits", c.Submits)
	}
}

func TestStopChannelOverridesFade(t *testing.T) {
	m, fake := newTestMixer(t)
	h := loadReady(t, m, fake, "engine.wav")

	ch, _ := m.Play(h, backend.LoopForever, 0)
	if err := m.FadeOutChannel(ch); err != nil {
		t.Fatalf("FadeOutChannel failed: %v", err)
	}
	if err := m.StopChannel(ch); err != nil {
		t.Fatalf("StopChannel failed: %v", err)
	}
	if c, _ := fake.Channel(ch); c.Playing {
		t.Error("channel still playing after StopChannel")
	}

	fake.FailOn("Stop", errBoom)
	ch2, _ := m.Play(h, 0, 0)
	if err := m.StopChannel(ch2); !errors.Is(err, errBoom) {
		t.Errorf("stop failure: got %v", err)
	}
}

func TestSetLoopCount(t *testing.T) {
	m, fake := newTestMixer(t)
	h := loadReady(t, m, fake, "engine.wav")

	ch, _ := m.Play(h, backend.LoopForever, 0)
	if err := m.SetLoopCount(ch, 0); err != nil {
		t.Fatalf("SetLoopCount failed: %v", err)
	}
	if c, _ := fake.Channel(ch); c.LoopCount != 0 {
		t.Errorf("loop count: got %d, want 0", c.LoopCount)
	}
	if err := m.SetLoopCount(ch, -2); !errors.Is(err, backend.ErrInvalidRequest) {
		t.Errorf("invalid loop count: got %v", err)
	}
}
