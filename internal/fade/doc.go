// Package fade computes clock-stamped volume curves for the mixer.
// It is pure arithmetic over DSP clock values; nothing here talks to a backend.
package fade
