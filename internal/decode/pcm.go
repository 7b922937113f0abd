package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const pcmChunk = 4096

// WAV format tags accepted by decodeWAV.
const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// pcmReader is the part of the go-audio decoders used here.
type pcmReader interface {
	Format() *audio.Format
	PCMBuffer(buf *audio.IntBuffer) (int, error)
}

func decodeWAV(r io.ReadSeeker) (*Clip, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not a WAV file", ErrInvalidFile)
	}
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return nil, fmt.Errorf("%w: WAV format tag %d", ErrUnsupportedEncoding, dec.WavAudioFormat)
	}
	return readPCM(dec, int(dec.BitDepth))
}

func decodeAIFF(r io.ReadSeeker) (*Clip, error) {
	dec := aiff.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not an AIFF file", ErrInvalidFile)
	}
	dec.ReadInfo()
	return readPCM(dec, int(dec.BitDepth))
}

// readPCM drains an integer PCM decoder and normalizes by bit depth.
func readPCM(dec pcmReader, bitDepth int) (*Clip, error) {
	var scale float32
	switch bitDepth {
	case 16:
		scale = 1 << 15
	case 24:
		scale = 1 << 23
	case 32:
		scale = 1 << 31
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	format := dec.Format()
	if format == nil {
		return nil, fmt.Errorf("%w: missing format", ErrInvalidFile)
	}

	buf := &audio.IntBuffer{
		Data:   make([]int, pcmChunk*format.NumChannels),
		Format: format,
	}
	clip := &Clip{SampleRate: format.SampleRate, Channels: format.NumChannels}

	for {
		n, err := dec.PCMBuffer(buf)
		for _, v := range buf.Data[:n] {
			clip.Samples = append(clip.Samples, float32(v)/scale)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read PCM data: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return clip, nil
}
