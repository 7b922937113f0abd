package softmix

import (
	"fmt"
	"math"
	"sync"

	"github.com/dgnsrekt/tickmix/internal/backend"
	"github.com/dgnsrekt/tickmix/internal/decode"
)

// MasterGroup is the group every other group feeds into.
const MasterGroup backend.GroupID = 0

type sound struct {
	path   string
	mode   backend.Mode
	stream bool
	state  backend.OpenState
	clip   *decode.Clip
	err    error
}

type group struct {
	name   string
	volume float32
	paused bool
}

// Engine mixes voices in software. All methods are safe for concurrent use;
// Read is meant for a single consumer such as an audio device.
type Engine struct {
	mu sync.Mutex

	rate        int
	maxChannels int
	clock       uint64

	sounds      map[backend.SoundID]*sound
	voices      map[backend.ChannelID]*voice
	groups      map[backend.GroupID]*group
	nextSound   backend.SoundID
	nextChannel backend.ChannelID
	nextGroup   backend.GroupID

	loader *loader
	closed bool

	readBuf []float32
}

var _ backend.Backend = (*Engine)(nil)

// New creates an engine and starts its loader workers.
func New(opts Options) *Engine {
	opts = opts.withDefaults()

	e := &Engine{
		rate:        opts.SampleRate,
		maxChannels: opts.MaxChannels,
		sounds:      make(map[backend.SoundID]*sound),
		voices:      make(map[backend.ChannelID]*voice),
		groups: map[backend.GroupID]*group{
			MasterGroup: {name: "master", volume: 1},
		},
		nextSound:   1,
		nextChannel: 1,
		nextGroup:   1,
	}

	load := func(path string) (*decode.Clip, error) {
		clip, err := decode.Open(path)
		if err != nil {
			return nil, err
		}
		return decode.Prepare(clip, e.rate), nil
	}
	if opts.Cache != nil {
		load = func(path string) (*decode.Clip, error) {
			clip, _, err := opts.Cache.Load(path, e.rate)
			return clip, err
		}
	}
	e.loader = newLoader(opts.Workers, load)

	logger.Debug("Engine created",
		"sample_rate", e.rate,
		"max_channels", e.maxChannels,
		"workers", opts.Workers,
		"cache", opts.Cache != nil)
	return e
}

// Update publishes finished loads. A sound's open state only changes here.
func (e *Engine) Update() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return backend.ErrClosed
	}

	for _, r := range e.loader.collect() {
		s, ok := e.sounds[r.id]
		if !ok {
			// released while loading
			continue
		}
		if r.err != nil {
			s.state = backend.OpenError
			s.err = r.err
			logger.Warn("Failed to open sound", "path", s.path, "error", r.err)
			continue
		}
		s.clip = r.clip
		s.state = backend.OpenReady
		logger.Debug("Sound ready", "path", s.path, "stream", s.stream, "duration", r.clip.Duration())
	}
	return nil
}

// SampleRate returns the mix rate.
func (e *Engine) SampleRate() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return 0, backend.ErrClosed
	}
	return e.rate, nil
}

// Clock returns the number of frames rendered so far.
func (e *Engine) Clock() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock
}

// Voices returns the number of live channels.
func (e *Engine) Voices() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.voices)
}

// MasterGroup returns the master group.
func (e *Engine) MasterGroup() (backend.GroupID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return 0, backend.ErrClosed
	}
	return MasterGroup, nil
}

// CreateGroup adds a group under the master group.
func (e *Engine) CreateGroup(name string) (backend.GroupID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return 0, backend.ErrClosed
	}

	id := e.nextGroup
	e.nextGroup++
	e.groups[id] = &group{name: name, volume: 1}
	return id, nil
}

// SetGroupVolume sets a group's volume; it multiplies with the master's.
func (e *Engine) SetGroupVolume(g backend.GroupID, volume float32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	grp, err := e.group(g)
	if err != nil {
		return err
	}
	if volume < 0 || math.IsNaN(float64(volume)) {
		return fmt.Errorf("%w: group volume %v", backend.ErrInvalidRequest, volume)
	}
	grp.volume = volume
	return nil
}

// SetGroupPaused pauses or resumes every voice in the group. Pausing the
// master group pauses everything.
func (e *Engine) SetGroupPaused(g backend.GroupID, paused bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	grp, err := e.group(g)
	if err != nil {
		return err
	}
	grp.paused = paused
	return nil
}

// StopGroup ends every voice in the group. Stopping the master group ends
// every voice.
func (e *Engine) StopGroup(g backend.GroupID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.group(g); err != nil {
		return err
	}
	for id, v := range e.voices {
		if g == MasterGroup || v.group == g {
			delete(e.voices, id)
		}
	}
	return nil
}

// Close stops every voice, drops queued loads and waits for running ones.
// Outputs pulling from the engine receive silence afterwards.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return backend.ErrClosed
	}
	e.closed = true
	e.voices = make(map[backend.ChannelID]*voice)
	e.mu.Unlock()

	e.loader.close()
	logger.Debug("Engine closed")
	return nil
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// group must be called with the lock held.
func (e *Engine) group(g backend.GroupID) (*group, error) {
	if e.closed {
		return nil, backend.ErrClosed
	}
	grp, ok := e.groups[g]
	if !ok {
		return nil, fmt.Errorf("%w: %d", backend.ErrGroupNotFound, g)
	}
	return grp, nil
}

// groupState returns the effective volume and paused flag of g, folding in
// the master group.
func (e *Engine) groupState(g backend.GroupID) (float32, bool) {
	grp := e.groups[g]
	if grp == nil {
		return 0, true
	}
	volume, paused := grp.volume, grp.paused
	if g != MasterGroup {
		master := e.groups[MasterGroup]
		volume *= master.volume
		paused = paused || master.paused
	}
	return volume, paused
}
