package mixer

import (
	"errors"
	"fmt"
)

// Error kinds returned by the mixer. Every failure is an *OpError whose
// Kind is one of these, so errors.Is works on the kind as well as on the
// underlying backend error.
var (
	// ErrBackendCallFailed means a backend call returned non-success.
	ErrBackendCallFailed = errors.New("backend call failed")

	// ErrCapacityExhausted means the sound pool is full.
	ErrCapacityExhausted = errors.New("sound pool capacity exhausted")

	// ErrInvalidHandle means a sound handle outside the allocated range.
	ErrInvalidHandle = errors.New("invalid sound handle")

	// ErrClosed is wrapped into every failure after Close.
	ErrClosed = errors.New("mixer is closed")

	// ErrStreamOpenFailed means a music stream never became ready.
	ErrStreamOpenFailed = errors.New("music stream failed to open")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid mixer configuration")
)

// Integer status codes for callers that only want a number.
const (
	StatusOK                = 0
	StatusBackendCallFailed = -1
	StatusCapacityExhausted = -2
	StatusInvalidHandle     = -3
)

// OpError describes a failed mixer operation.
type OpError struct {
	Op   string // public operation, e.g. "play" or "update"
	Kind error  // one of the Err* kinds above
	Err  error  // underlying cause, may be nil
}

// Error implements the error interface.
func (e *OpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Kind)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Status maps an error returned by the mixer to its integer status code.
func Status(err error) int {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrCapacityExhausted):
		return StatusCapacityExhausted
	case errors.Is(err, ErrInvalidHandle):
		return StatusInvalidHandle
	default:
		return StatusBackendCallFailed
	}
}

func backendFailure(op string, err error) error {
	return &OpError{Op: op, Kind: ErrBackendCallFailed, Err: err}
}
