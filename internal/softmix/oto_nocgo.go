//go:build nocgo
// +build nocgo

package softmix

import "time"

// OtoOutput is unavailable in nocgo builds.
type OtoOutput struct{}

// OpenOto always fails in nocgo builds; use NewNullOutput instead.
func OpenOto(e *Engine, bufferSize time.Duration) (*OtoOutput, error) {
	return nil, ErrNoAudioDevice
}

// Close does nothing.
func (o *OtoOutput) Close() error {
	return nil
}
