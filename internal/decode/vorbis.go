package decode

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"
)

func decodeVorbis(r io.Reader) (*Clip, error) {
	samples, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	return &Clip{SampleRate: format.SampleRate, Channels: format.Channels, Samples: samples}, nil
}
