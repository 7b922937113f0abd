package decode

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/audio"
)

func writeTestWAV(t *testing.T, name string, c *Clip) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	if err := EncodeWAV(f, c); err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}
	return path
}

func TestOpenWAVMono(t *testing.T) {
	tone := Tone(440, 100*time.Millisecond, 8000, 0.5)
	path := writeTestWAV(t, "tone.wav", tone)

	clip, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if clip.SampleRate != 8000 || clip.Channels != 1 {
		t.Errorf("format: got %d Hz x %d, want 8000 Hz x 1", clip.SampleRate, clip.Channels)
	}
	if clip.Frames() != tone.Frames() {
		t.Fatalf("frames: got %d, want %d", clip.Frames(), tone.Frames())
	}

	const tolerance = 2.0 / 32768
	for i := range tone.Samples {
		if d := math.Abs(float64(clip.Samples[i] - tone.Samples[i])); d > tolerance {
			t.Fatalf("sample %d: got %v, want %v", i, clip.Samples[i], tone.Samples[i])
		}
	}
	if clip.Duration() != 100*time.Millisecond {
		t.Errorf("duration: got %v, want 100ms", clip.Duration())
	}
}

func TestOpenWAVStereo(t *testing.T) {
	src := &Clip{SampleRate: 22050, Channels: 2, Samples: []float32{0.25, -0.25, 0.5, -0.5, 0, 0}}
	path := writeTestWAV(t, "stereo.wav", src)

	clip, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if clip.Channels != 2 || clip.Frames() != 3 {
		t.Fatalf("layout: got %d channels, %d frames", clip.Channels, clip.Frames())
	}
	if clip.Samples[0] <= 0 || clip.Samples[1] >= 0 {
		t.Errorf("channel order lost: %v", clip.Samples[:2])
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"sfx/laser.wav", FormatWAV},
		{"LOUD.WAV", FormatWAV},
		{"drum.aif", FormatAIFF},
		{"drum.aiff", FormatAIFF},
		{"theme.mp3", FormatMP3},
		{"theme.ogg", FormatVorbis},
	}
	for _, tt := range tests {
		got, err := FormatOf(tt.path)
		if err != nil || got != tt.want {
			t.Errorf("FormatOf(%q): got %q, %v; want %q", tt.path, got, err, tt.want)
		}
	}

	if _, err := FormatOf("notes.txt"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("FormatOf(notes.txt): got %v, want ErrUnsupportedFormat", err)
	}
}

func TestOpenErrors(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.wav")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: got %v", err)
	}

	bogus := filepath.Join(t.TempDir(), "bogus.wav")
	if err := os.WriteFile(bogus, []byte("definitely not RIFF data"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(bogus); !errors.Is(err, ErrInvalidFile) {
		t.Errorf("bogus WAV: got %v, want ErrInvalidFile", err)
	}
}

func TestDecodeGarbage(t *testing.T) {
	for _, format := range []Format{FormatMP3, FormatVorbis} {
		_, err := Decode(bytes.NewReader([]byte("garbage garbage garbage")), format)
		if err == nil {
			t.Errorf("%s: expected an error for garbage input", format)
		}
	}
	if _, err := Decode(bytes.NewReader(nil), Format("flac")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("unknown format: got %v", err)
	}
}

type fakePCM struct{}

func (fakePCM) Format() *audio.Format { return &audio.Format{NumChannels: 1, SampleRate: 8000} }

func (fakePCM) PCMBuffer(buf *audio.IntBuffer) (int, error) { return 0, nil }

func TestReadPCMBitDepth(t *testing.T) {
	if _, err := readPCM(fakePCM{}, 8); !errors.Is(err, ErrUnsupportedBitDepth) {
		t.Errorf("8-bit: got %v, want ErrUnsupportedBitDepth", err)
	}
	clip, err := readPCM(fakePCM{}, 24)
	if err != nil {
		t.Fatalf("24-bit: %v", err)
	}
	if clip.Frames() != 0 {
		t.Errorf("frames: got %d, want 0", clip.Frames())
	}
}
