package decode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// Clip is a fully decoded sound.
type Clip struct {
	SampleRate int
	Channels   int
	Samples    []float32 // interleaved, nominally in [-1, 1]
}

// Frames returns the number of sample frames in the clip.
func (c *Clip) Frames() int {
	if c.Channels <= 0 {
		return 0
	}
	return len(c.Samples) / c.Channels
}

// Duration returns the playing time of the clip.
func (c *Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(c.Frames()) * time.Second / time.Duration(c.SampleRate)
}

// Size returns the in-memory size of the samples in bytes.
func (c *Clip) Size() int64 {
	return int64(len(c.Samples)) * 4
}

// clipMagic prefixes every marshalled clip.
var clipMagic = [4]byte{'T', 'M', 'C', '1'}

// MarshalBinary encodes the clip as a small header followed by
// little-endian float32 samples.
func (c *Clip) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 16+len(c.Samples)*4)
	copy(buf[0:4], clipMagic[:])
	binary.LittleEndian.PutUint32(buf[4:8], uint32(c.SampleRate))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(c.Channels))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(len(c.Samples)))
	for i, s := range c.Samples {
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(s))
	}
	return buf, nil
}

// UnmarshalBinary decodes data produced by MarshalBinary.
func (c *Clip) UnmarshalBinary(data []byte) error {
	if len(data) < 16 || !bytes.Equal(data[0:4], clipMagic[:]) {
		return ErrCorruptClip
	}
	rate := int(binary.LittleEndian.Uint32(data[4:8]))
	channels := int(binary.LittleEndian.Uint32(data[8:12]))
	n := int(binary.LittleEndian.Uint32(data[12:16]))
	if len(data)-16 != n*4 {
		return fmt.Errorf("%w: want %d samples, have %d bytes", ErrCorruptClip, n, len(data)-16)
	}
	if rate <= 0 || channels <= 0 {
		return fmt.Errorf("%w: rate %d, channels %d", ErrCorruptClip, rate, channels)
	}

	samples := make([]float32, n)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[16+i*4:]))
	}
	c.SampleRate = rate
	c.Channels = channels
	c.Samples = samples
	return nil
}
