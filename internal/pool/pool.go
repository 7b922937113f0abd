// Package pool provides a fixed-capacity arena addressed by stable integer
// handles. Handles are issued in increasing order starting at 1 and are never
// reused; once the arena is full every further Add fails.
package pool

import (
	"errors"
	"fmt"
)

var (
	// ErrFull is returned when every handle has been issued.
	ErrFull = errors.New("pool capacity exhausted")

	// ErrInvalidHandle is returned for handles outside the issued range.
	ErrInvalidHandle = errors.New("invalid pool handle")
)

// Handle addresses an entry in a Pool. The zero handle is never issued.
type Handle int

// Pool is a fixed-capacity, append-only arena.
type Pool[T any] struct {
	entries []T // entries[0] is the unused zero slot
	size    int // total slots including the zero slot
}

// New creates a pool with size slots. Slot 0 is reserved, so at most size-1
// handles (1..size-1) can be issued.
func New[T any](size int) *Pool[T] {
	if size < 1 {
		size = 1
	}
	entries := make([]T, 1, size)
	return &Pool[T]{entries: entries, size: size}
}

// Add stores v and returns its handle.
func (p *Pool[T]) Add(v T) (Handle, error) {
	if len(p.entries) >= p.size {
		return 0, fmt.Errorf("%w: %d handles issued", ErrFull, p.Len())
	}
	p.entries = append(p.entries, v)
	return Handle(len(p.entries) - 1), nil
}

// Reserve reports whether another Add would succeed.
func (p *Pool[T]) Reserve() error {
	if len(p.entries) >= p.size {
		return fmt.Errorf("%w: %d handles issued", ErrFull, p.Len())
	}
	return nil
}

// Get returns the entry stored under h.
func (p *Pool[T]) Get(h Handle) (T, error) {
	var zero T
	if h <= 0 || int(h) >= len(p.entries) {
		return zero, fmt.Errorf("%w: %d (issued 1..%d)", ErrInvalidHandle, h, p.Len())
	}
	return p.entries[h], nil
}

// Len returns the number of issued handles.
func (p *Pool[T]) Len() int {
	return len(p.entries) - 1
}

// Cap returns the number of handles the pool can ever issue.
func (p *Pool[T]) Cap() int {
	return p.size - 1
}
