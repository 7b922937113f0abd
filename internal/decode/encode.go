package decode

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// EncodeWAV writes c as 16-bit PCM WAV.
func EncodeWAV(w io.WriteSeeker, c *Clip) error {
	if c.SampleRate <= 0 || c.Channels <= 0 {
		return fmt.Errorf("%w: %d Hz, %d channels", ErrInvalidFile, c.SampleRate, c.Channels)
	}

	enc := wav.NewEncoder(w, c.SampleRate, 16, c.Channels, wavFormatPCM)

	data := make([]int, len(c.Samples))
	for i, s := range c.Samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		data[i] = int(s * 32767)
	}

	buf := &audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{NumChannels: c.Channels, SampleRate: c.SampleRate},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write WAV samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finish WAV file: %w", err)
	}
	return nil
}

// WriteWAVFile creates path and writes c to it as 16-bit PCM WAV.
func WriteWAVFile(path string, c *Clip) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeWAV(f, c); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// Tone returns a mono sine wave.
func Tone(freq float64, d time.Duration, rate int, amplitude float32) *Clip {
	frames := int(d.Seconds() * float64(rate))
	samples := make([]float32, frames)
	for i := range samples {
		samples[i] = amplitude * float32(math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return &Clip{SampleRate: rate, Channels: 1, Samples: samples}
}
