package decode

import "errors"

var (
	ErrUnsupportedFormat   = errors.New("unsupported audio format")
	ErrInvalidFile         = errors.New("invalid audio file")
	ErrUnsupportedBitDepth = errors.New("unsupported bit depth")
	ErrUnsupportedEncoding = errors.New("unsupported sample encoding")
	ErrEmpty               = errors.New("audio file contains no samples")
	ErrCorruptClip         = errors.New("corrupt clip data")
)
