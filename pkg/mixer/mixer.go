package mixer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dgnsrekt/tickmix/internal/backend"
	"github.com/dgnsrekt/tickmix/internal/pool"
)

// Backend is the audio backend the mixer drives.
type Backend = backend.Backend

// Handle addresses a loaded sound. Valid handles are 1..MaxSounds-1.
type Handle = pool.Handle

// ChannelID is the opaque index of a playing channel.
type ChannelID = backend.ChannelID

// EffectsGroup is the name of the channel group shared by all sound effects.
const EffectsGroup = "effects"

type soundAsset struct {
	id   backend.SoundID
	path string
	mode backend.Mode
}

// Mixer owns every piece of playback state: the sound pool, the effects
// group and the music slot. All methods are safe for concurrent use; calls
// are serialized so a tick never interleaves with another operation.
type Mixer struct {
	mu sync.Mutex

	b   backend.Backend
	cfg Config

	sounds  *pool.Pool[soundAsset]
	master  backend.GroupID
	effects backend.GroupID
	music   musicSlot

	closed bool
}

// New initializes a mixer on top of b. The backend must already be running;
// the mixer takes ownership of it and closes it on Close.
func New(b backend.Backend, cfg Config) (*Mixer, error) {
	if b == nil {
		return nil, &OpError{Op: "init", Kind: ErrInvalidConfig, Err: errors.New("nil backend")}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &OpError{Op: "init", Kind: ErrInvalidConfig, Err: err}
	}

	master, err := b.MasterGroup()
	if err != nil {
		return nil, backendFailure("init", fmt.Errorf("master group: %w", err))
	}
	effects, err := b.CreateGroup(EffectsGroup)
	if err != nil {
		return nil, backendFailure("init", fmt.Errorf("create %s group: %w", EffectsGroup, err))
	}
	if cfg.SoundVolume != 1 {
		if err := b.SetGroupVolume(effects, float32(cfg.SoundVolume)); err != nil {
			return nil, backendFailure("init", err)
		}
	}

	m := &Mixer{
		b:       b,
		cfg:     cfg,
		sounds:  pool.New[soundAsset](cfg.MaxSounds),
		master:  master,
		effects: effects,
		music: musicSlot{
			target: 1,
			muted:  cfg.MusicMuted,
		},
	}

	logger.Debug("Mixer initialized",
		"maxSounds", cfg.MaxSounds,
		"musicMuted", cfg.MusicMuted,
		"soundVolume", cfg.SoundVolume)

	return m, nil
}

// Sounds returns how many sound handles have been issued.
func (m *Mixer) Sounds() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sounds.Len()
}

// Close releases the music stream and shuts the backend down. Sound assets
// are not released individually; they go away with the backend.
func (m *Mixer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	m.clearMusic()

	if err := m.b.Close(); err != nil {
		return backendFailure("close", err)
	}
	logger.Debug("Mixer closed", "sounds", m.sounds.Len())
	return nil
}

// usable must be called with m.mu held.
func (m *Mixer) usable(op string) error {
	if m.closed {
		return &OpError{Op: op, Kind: ErrBackendCallFailed, Err: ErrClosed}
	}
	return nil
}

// channelGone reports whether err means the channel has already ended.
func channelGone(err error) bool {
	return errors.Is(err, backend.ErrChannelNotFound)
}
