package decode

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format identifies a container/codec.
type Format string

const (
	FormatWAV    Format = "wav"
	FormatAIFF   Format = "aiff"
	FormatMP3    Format = "mp3"
	FormatVorbis Format = "ogg"
)

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return FormatWAV, nil
	case ".aif", ".aiff":
		return FormatAIFF, nil
	case ".mp3":
		return FormatMP3, nil
	case ".ogg", ".oga":
		return FormatVorbis, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Open decodes the file at path.
func Open(path string) (*Clip, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	clip, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return clip, nil
}

// Decode reads a whole stream in the given format.
func Decode(r io.ReadSeeker, format Format) (*Clip, error) {
	var (
		clip *Clip
		err  error
	)
	switch format {
	case FormatWAV:
		clip, err = decodeWAV(r)
	case FormatAIFF:
		clip, err = decodeAIFF(r)
	case FormatMP3:
		clip, err = decodeMP3(r)
	case FormatVorbis:
		clip, err = decodeVorbis(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	if clip.SampleRate <= 0 || clip.Channels <= 0 {
		return nil, fmt.Errorf("%w: %d Hz, %d channels", ErrInvalidFile, clip.SampleRate, clip.Channels)
	}
	if clip.Frames() == 0 {
		return nil, ErrEmpty
	}
	// Drop a trailing partial frame.
	clip.Samples = clip.Samples[:clip.Frames()*clip.Channels]
	return clip, nil
}
