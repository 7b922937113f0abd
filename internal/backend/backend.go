package backend

import (
	"errors"

	"github.com/dgnsrekt/tickmix/internal/fade"
)

var (
	// ErrChannelNotFound is returned for a channel that has ended, been
	// stopped, or was never issued.
	ErrChannelNotFound = errors.New("channel not found")

	// ErrSoundNotFound is returned for an unknown or released sound.
	ErrSoundNotFound = errors.New("sound not found")

	// ErrGroupNotFound is returned for an unknown channel group.
	ErrGroupNotFound = errors.New("channel group not found")

	// ErrNotReady is returned when playing a sound whose open has not completed.
	ErrNotReady = errors.New("sound is not ready")

	// ErrNoFreeChannel is returned when every voice is in use.
	ErrNoFreeChannel = errors.New("no free channel")

	// ErrInvalidRequest is returned when a Request fails validation.
	ErrInvalidRequest = errors.New("invalid channel request")

	// ErrClosed is returned by every call after Close.
	ErrClosed = errors.New("backend is closed")
)

// SoundID references a loaded sound or stream.
type SoundID int

// ChannelID is the opaque index of a playing channel.
type ChannelID int

// GroupID references a channel group. The master group is created by the
// backend itself.
type GroupID int

// Mode selects how a sound is opened.
type Mode uint8

const (
	// ModeLoopNormal makes channels loop according to their loop count.
	ModeLoopNormal Mode = 1 << iota
	// ModeNonBlocking returns from the open immediately; readiness is
	// observed through OpenState.
	ModeNonBlocking
)

// Has reports whether all flags in f are set.
func (m Mode) Has(f Mode) bool { return m&f == f }

// OpenState is the progress of a non-blocking open.
type OpenState int

const (
	// OpenLoading means decoding or stream setup is still in progress.
	OpenLoading OpenState = iota
	// OpenReady means the sound can be played.
	OpenReady
	// OpenError means the open failed; the sound will never become ready.
	OpenError
)

// String returns the string representation of the open state.
func (s OpenState) String() string {
	switch s {
	case OpenLoading:
		return "loading"
	case OpenReady:
		return "ready"
	case OpenError:
		return "error"
	default:
		return "unknown"
	}
}

// LoopForever is the loop count that repeats a channel until stopped.
const LoopForever = -1

// Backend is the collaborator surface consumed by the mixer. Every call
// reports success or failure; a failing call has no side effects.
type Backend interface {
	// Update pumps the backend once per tick.
	Update() error

	// SampleRate returns the software mixer rate in Hz.
	SampleRate() (int, error)

	MasterGroup() (GroupID, error)
	CreateGroup(name string) (GroupID, error)

	// CreateSound opens a fully decoded sound.
	CreateSound(path string, mode Mode) (SoundID, error)
	// CreateStream opens a sound intended for one long-running channel.
	CreateStream(path string, mode Mode) (SoundID, error)
	OpenState(id SoundID) (OpenState, error)
	// OpenError returns why an open ended in OpenError, or nil.
	OpenError(id SoundID) error
	// ReleaseSound drops the sound. Channels already started from it keep
	// playing until they end.
	ReleaseSound(id SoundID) error

	// Play starts a channel in group; GroupID 0 is the master group.
	Play(id SoundID, group GroupID, paused bool) (ChannelID, error)
	DSPClock(ch ChannelID) (uint64, error)
	// Submit validates the whole request and then applies all of it, or
	// none of it.
	Submit(ch ChannelID, req Request) error
	IsPlaying(ch ChannelID) (bool, error)
	Stop(ch ChannelID) error
	Position(ch ChannelID) (uint32, error)
	SetPosition(ch ChannelID, ms uint32) error

	SetGroupVolume(g GroupID, volume float32) error
	SetGroupPaused(g GroupID, paused bool) error
	StopGroup(g GroupID) error

	Close() error
}

// FadePoint re-exports the fade curve anchor for backend implementations.
type FadePoint = fade.Point
