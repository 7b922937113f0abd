package decode

import (
	"math"
	"testing"
	"time"
)

func TestToStereo(t *testing.T) {
	mono := &Clip{SampleRate: 8000, Channels: 1, Samples: []float32{0.1, 0.2, 0.3}}
	stereo := ToStereo(mono)

	want := []float32{0.1, 0.1, 0.2, 0.2, 0.3, 0.3}
	if stereo.Channels != 2 || len(stereo.Samples) != len(want) {
		t.Fatalf("layout: got %d channels, %d samples", stereo.Channels, len(stereo.Samples))
	}
	for i := range want {
		if stereo.Samples[i] != want[i] {
			t.Errorf("sample %d: got %v, want %v", i, stereo.Samples[i], want[i])
		}
	}

	quad := &Clip{SampleRate: 8000, Channels: 4, Samples: []float32{1, 2, 3, 4, 5, 6, 7, 8}}
	got := ToStereo(quad)
	if got.Samples[0] != 1 || got.Samples[1] != 2 || got.Samples[2] != 5 || got.Samples[3] != 6 {
		t.Errorf("quad downmix: got %v", got.Samples)
	}

	if ToStereo(stereo) != stereo {
		t.Error("stereo input should be returned unchanged")
	}
}

func TestResampleLength(t *testing.T) {
	tone := Tone(220, time.Second, 22050, 0.8)
	out := Resample(tone, 48000)

	if out.SampleRate != 48000 {
		t.Errorf("rate: got %d, want 48000", out.SampleRate)
	}
	if out.Frames() != 48000 {
		t.Errorf("frames: got %d, want 48000", out.Frames())
	}
	if d := out.Duration() - tone.Duration(); d < -time.Millisecond || d > time.Millisecond {
		t.Errorf("duration drift: %v", d)
	}
}

func TestResampleKeepsConstantSignal(t *testing.T) {
	samples := make([]float32, 200)
	for i := range samples {
		samples[i] = 0.4
	}
	dc := &Clip{SampleRate: 44100, Channels: 2, Samples: samples}

	out := Resample(dc, 48000)
	for i, s := range out.Samples {
		if math.Abs(float64(s-0.4)) > 1e-6 {
			t.Fatalf("sample %d: got %v, want 0.4", i, s)
		}
	}
}

func TestResampleSameRate(t *testing.T) {
	c := Tone(440, 10*time.Millisecond, 48000, 1)
	if Resample(c, 48000) != c {
		t.Error("same-rate resample should return the input")
	}
}

func TestPrepare(t *testing.T) {
	c := Prepare(Tone(440, 50*time.Millisecond, 16000, 1), 48000)
	if c.Channels != 2 || c.SampleRate != 48000 {
		t.Errorf("got %d Hz x %d, want 48000 Hz x 2", c.SampleRate, c.Channels)
	}
}

func TestCubicEndpoints(t *testing.T) {
	if v := cubic(0, 1, 2, 3, 0); v != 1 {
		t.Errorf("x=0: got %v, want 1", v)
	}
	if v := cubic(0, 1, 2, 3, 0.5); math.Abs(float64(v-1.5)) > 1e-6 {
		t.Errorf("linear data at x=0.5: got %v, want 1.5", v)
	}
	if v := cubic(0, 1, 4, 9, 1); math.Abs(float64(v-4)) > 1e-6 {
		t.Errorf("x=1: got %v, want 4", v)
	}
	// Catmull-Rom reproduces quadratics: samples of x^2 at 0..3.
	if v := cubic(0, 1, 4, 9, 0.5); math.Abs(float64(v-2.25)) > 1e-6 {
		t.Errorf("quadratic data at x=0.5: got %v, want 2.25", v)
	}
}
