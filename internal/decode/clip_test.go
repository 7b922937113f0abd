package decode

import (
	"errors"
	"testing"
	"time"
)

func TestClipBinaryRoundTrip(t *testing.T) {
	src := Prepare(Tone(330, 20*time.Millisecond, 48000, 0.7), 48000)

	data, err := src.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}
	if int64(len(data)) != src.Size()+16 {
		t.Errorf("encoded size: got %d, want %d", len(data), src.Size()+16)
	}

	var got Clip
	if err := got.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary failed: %v", err)
	}
	if got.SampleRate != src.SampleRate || got.Channels != src.Channels || len(got.Samples) != len(src.Samples) {
		t.Fatalf("header mismatch: got %d/%d/%d", got.SampleRate, got.Channels, len(got.Samples))
	}
	for i := range src.Samples {
		if got.Samples[i] != src.Samples[i] {
			t.Fatalf("sample %d: got %v, want %v", i, got.Samples[i], src.Samples[i])
		}
	}
}

func TestClipUnmarshalCorrupt(t *testing.T) {
	src := &Clip{SampleRate: 8000, Channels: 1, Samples: []float32{0.1, 0.2}}
	data, _ := src.MarshalBinary()

	cases := map[string][]byte{
		"short":     data[:8],
		"magic":     append([]byte("XXXX"), data[4:]...),
		"truncated": data[:len(data)-1],
	}
	for name, b := range cases {
		var c Clip
		if err := c.UnmarshalBinary(b); !errors.Is(err, ErrCorruptClip) {
			t.Errorf("%s: got %v, want ErrCorruptClip", name, err)
		}
	}
}
