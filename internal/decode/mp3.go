package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

func decodeMP3(r io.Reader) (*Clip, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	// go-mp3 always produces 16-bit little-endian stereo.
	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to decode MP3 frames: %w", err)
	}

	samples := make([]float32, len(data)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = float32(v) / 32768
	}
	return &Clip{SampleRate: dec.SampleRate(), Channels: 2, Samples: samples}, nil
}
