// Package backendtest provides a scriptable in-memory backend for testing
// code that drives a backend.Backend.
package backendtest

import (
	"fmt"
	"sync"

	"github.com/dgnsrekt/tickmix/internal/backend"
	"github.com/dgnsrekt/tickmix/internal/fade"
)

// Master is the GroupID the fake reports for the master group.
const Master backend.GroupID = 0

// Call records one backend invocation.
type Call struct {
	Name    string
	Channel backend.ChannelID
	Sound   backend.SoundID
	Group   backend.GroupID
	Path    string
	Paused  bool
	Request backend.Request
}

// Sound is the fake's view of an opened sound.
type Sound struct {
	ID       backend.SoundID
	Path     string
	Mode     backend.Mode
	Stream   bool
	State    backend.OpenState
	Err      error
	Released bool
}

// Channel is the fake's view of a started channel.
type Channel struct {
	ID         backend.ChannelID
	Sound      backend.SoundID
	Group      backend.GroupID
	Paused     bool
	Playing    bool
	Volume     float32
	Mute       bool
	Pan        float32
	LoopCount  int
	FadePoints []fade.Point
	StopAt     uint64
	HasStop    bool
	PositionMS uint32

	// Submits counts accepted requests, so tests can assert "scheduled nothing".
	Submits int
}

// Group is the fake's view of a channel group.
type Group struct {
	Name    string
	Volume  float32
	Paused  bool
	Stopped int
}

// Fake implements backend.Backend entirely in memory. Opens stay in
// OpenLoading until the test marks them ready, and the DSP clock only moves
// when the test advances it.
type Fake struct {
	mu sync.Mutex

	Rate  int
	Clock uint64

	sounds      map[backend.SoundID]*Sound
	channels    map[backend.ChannelID]*Channel
	groups      map[backend.GroupID]*Group
	nextSound   backend.SoundID
	nextChannel backend.ChannelID
	nextGroup   backend.GroupID

	calls    []Call
	failures map[string]error
	updates  int
	closed   bool
}

// New creates a fake backend at the given sample rate.
func New(rate int) *Fake {
	return &Fake{
		Rate:     rate,
		sounds:   make(map[backend.SoundID]*Sound),
		channels: make(map[backend.ChannelID]*Channel),
		groups: map[backend.GroupID]*Group{
			Master: {Name: "master", Volume: 1},
		},
		nextSound:   1,
		nextChannel: 1,
		nextGroup:   1,
		failures:    make(map[string]error),
	}
}

// FailOn makes every subsequent call named name return err until cleared
// with FailOn(name, nil).
func (f *Fake) FailOn(name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, name)
		return
	}
	f.failures[name] = err
}

// Calls returns a copy of the call log.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallNames returns the names of logged calls, in order.
func (f *Fake) CallNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, len(f.calls))
	for i, c := range f.calls {
		names[i] = c.Name
	}
	return names
}

// ResetCalls clears the call log.
func (f *Fake) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// Updates returns how many times Update has been called.
func (f *Fake) Updates() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates
}

// Advance moves the DSP clock forward by samples.
func (f *Fake) Advance(samples uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Clock += samples
}

// SetOpenState changes the open state of every sound opened from path.
func (f *Fake) SetOpenState(path string, state backend.OpenState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sounds {
		if s.Path == path {
			s.State = state
		}
	}
}

// FailOpen ends the open of every sound opened from path with err.
func (f *Fake) FailOpen(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sounds {
		if s.Path == path {
			s.State = backend.OpenError
			s.Err = err
		}
	}
}

// MarkReady completes the open of every sound opened from path.
func (f *Fake) MarkReady(path string) {
	f.SetOpenState(path, backend.OpenReady)
}

// Finish simulates a channel reaching its natural end.
func (f *Fake) Finish(ch backend.ChannelID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.channels[ch]; ok {
		c.Playing = false
	}
}

// Sound returns a snapshot of a sound.
func (f *Fake) Sound(id backend.SoundID) (Sound, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sounds[id]
	if !ok {
		return Sound{}, false
	}
	return *s, true
}

// SoundsFor returns snapshots of every sound opened from path.
func (f *Fake) SoundsFor(path string) []Sound {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Sound
	for id := backend.SoundID(1); id < f.nextSound; id++ {
		if s, ok := f.sounds[id]; ok && s.Path == path {
			out = append(out, *s)
		}
	}
	return out
}

// Channel returns a snapshot of a channel.
func (f *Fake) Channel(ch backend.ChannelID) (Channel, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.channels[ch]
	if !ok {
		return Channel{}, false
	}
	cp := *c
	cp.FadePoints = append([]fade.Point(nil), c.FadePoints...)
	return cp, true
}

// ChannelsFor returns snapshots of every channel started from a sound opened
// from path, oldest first.
func (f *Fake) ChannelsFor(path string) []Channel {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Channel
	for id := backend.ChannelID(1); id < f.nextChannel; id++ {
		c, ok := f.channels[id]
		if !ok {
			continue
		}
		if s, ok := f.sounds[c.Sound]; ok && s.Path == path {
			cp := *c
			cp.FadePoints = append([]fade.Point(nil), c.FadePoints...)
			out = append(out, cp)
		}
	}
	return out
}

// Group returns a snapshot of a group.
func (f *Fake) Group(g backend.GroupID) (Group, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	grp, ok := f.groups[g]
	if !ok {
		return Group{}, false
	}
	return *grp, true
}

// record logs the call and returns the injected failure, if any. Callers
// must hold f.mu.
func (f *Fake) record(c Call) error {
	f.calls = append(f.calls, c)
	if f.closed && c.Name != "Close" {
		return backend.ErrClosed
	}
	return f.failures[c.Name]
}

func (f *Fake) Update() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Name: "Update"}); err != nil {
		return err
	}
	f.updates++
	for _, c := range f.channels {
		if c.HasStop && f.Clock >= c.StopAt {
			c.Playing = false
		}
	}
	return nil
}

func (f *Fake) SampleRate() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Name: "SampleRate"}); err != nil {
		return 0, err
	}
	return f.Rate, nil
}

func (f *Fake) MasterGroup() (backend.GroupID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Name: "MasterGroup"}); err != nil {
		return 0, err
	}
	return Master, nil
}

func (f *Fake) CreateGroup(name string) (backend.GroupID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Name: "CreateGroup", Path: name}); err != nil {
		return 0, err
	}
	id := f.nextGroup
	f.nextGroup++
	f.groups[id] = &Group{Name: name, Volume: 1}
	return id, nil
}

func (f *Fake) CreateSound(path string, mode backend.Mode) (backend.SoundID, error) {
	return f.open("CreateSound", path, mode, false)
}

func (f *Fake) CreateStream(path string, mode backend.Mode) (backend.SoundID, error) {
	return f.open("CreateStream", path, mode, true)
}

func (f *Fake) open(name, path string, mode backend.Mode, stream bool) (backend.SoundID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Name: name, Path: path}); err != nil {
		return 0, err
	}
	id := f.nextSound
	f.nextSound++
	state := backend.OpenLoading
	if !mode.Has(backend.ModeNonBlocking) {
		state = backend.OpenReady
	}
	f.sounds[id] = &Sound{ID: id, Path: path, Mode: mode, Stream: stream, State: state}
	return id, nil
}

func (f *Fake) OpenState(id backend.SoundID) (backend.OpenState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Name: "OpenState", Sound: id}); err != nil {
		return backend.OpenError, err
	}
	s, ok := f.sounds[id]
	if !ok || s.Released {
		return backend.OpenError, backend.ErrSoundNotFound
	}
	return s.State, nil
}

// OpenError is not recorded in the call log.
func (f *Fake) OpenError(id backend.SoundID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sounds[id]
	if !ok {
		return backend.ErrSoundNotFound
	}
	return s.Err
}

func (f *Fake) ReleaseSound(id backend.SoundID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Name: "ReleaseSound", Sound: id}); err != nil {
		return err
	}
	s, ok := f.sounds[id]
	if !ok || s.Released {
		return backend.ErrSoundNotFound
	}
	s.Released = true
	return nil
}

func (f *Fake) Play(id backend.SoundID, group backend.GroupID, paused bool) (backend.ChannelID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Name: "Play", Sound: id, Group: group, Paused: paused}); err != nil {
		return 0, err
	}
	s, ok := f.sounds[id]
	if !ok || s.Released {
		return 0, backend.ErrSoundNotFound
	}
	if s.State != backend.OpenReady {
		return 0, fmt.Errorf("%w: %s is %s", backend.ErrNotReady, s.Path, s.State)
	}
	if _, ok := f.groups[group]; !ok {
		return 0, backend.ErrGroupNotFound
	}
	ch := f.nextChannel
	f.nextChannel++
	f.channels[ch] = &Channel{
		ID:        ch,
		Sound:     id,
		Group:     group,
		Paused:    paused,
		Playing:   true,
		Volume:    1,
		LoopCount: backend.LoopForever,
	}
	return ch, nil
}

// channel returns a live channel. Callers must hold f.mu.
func (f *Fake) channel(ch backend.ChannelID) (*Channel, error) {
	c, ok := f.channels[ch]
	if !ok || !c.Playing {
		return nil, fmt.Errorf("%w: %d", backend.ErrChannelNotFound, ch)
	}
	return c, nil
}

func (f *Fake) DSPClock(ch backend.ChannelID) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Name: "DSPClock", Channel: ch}); err != nil {
		return 0, err
	}
	if _, err := f.channel(ch); err != nil {
		return 0, err
	}
	return f.Clock, nil
}

func (f *Fake) Submit(ch backend.ChannelID, req backend.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Name: "Submit", Channel: ch, Request: req}); err != nil {
		return err
	}
	c, err := f.channel(ch)
	if err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	if n, ok := req.LoopCount(); ok {
		c.LoopCount = n
	}
	if p, ok := req.Pan(); ok {
		c.Pan = p
	}
	if v, ok := req.Volume(); ok {
		c.Volume = v
	}
	if m, ok := req.Mute(); ok {
		c.Mute = m
	}
	c.FadePoints = append(c.FadePoints, req.FadePoints()...)
	if at, ok := req.StopAt(); ok {
		c.StopAt = at
		c.HasStop = true
	}
	if p, ok := req.Paused(); ok {
		c.Paused = p
	}
	c.Submits++
	return nil
}

func (f *Fake) IsPlaying(ch backend.ChannelID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Name: "IsPlaying", Channel: ch}); err != nil {
		return false, err
	}
	c, ok := f.channels[ch]
	if !ok {
		return false, fmt.Errorf("%w: %d", backend.ErrChannelNotFound, ch)
	}
	return c.Playing, nil
}

func (f *Fake) Stop(ch backend.ChannelID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Name: "Stop", Channel: ch}); err != nil {
		return err
	}
	c, err := f.channel(ch)
	if err != nil {
		return err
	}
	c.Playing = false
	return nil
}

func (f *Fake) Position(ch backend.ChannelID) (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Name: "Position", Channel: ch}); err != nil {
		return 0, err
	}
	c, err := f.channel(ch)
	if err != nil {
		return 0, err
	}
	return c.PositionMS, nil
}

func (f *Fake) SetPosition(ch backend.ChannelID, ms uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Name: "SetPosition", Channel: ch}); err != nil {
		return err
	}
	c, err := f.channel(ch)
	if err != nil {
		return err
	}
	c.PositionMS = ms
	return nil
}

func (f *Fake) SetGroupVolume(g backend.GroupID, volume float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Name: "SetGroupVolume", Group: g}); err != nil {
		return err
	}
	grp, ok := f.groups[g]
	if !ok {
		return backend.ErrGroupNotFound
	}
	grp.Volume = volume
	return nil
}

func (f *Fake) SetGroupPaused(g backend.GroupID, paused bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Name: "SetGroupPaused", Group: g}); err != nil {
		return err
	}
	grp, ok := f.groups[g]
	if !ok {
		return backend.ErrGroupNotFound
	}
	grp.Paused = paused
	return nil
}

func (f *Fake) StopGroup(g backend.GroupID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Name: "StopGroup", Group: g}); err != nil {
		return err
	}
	grp, ok := f.groups[g]
	if !ok {
		return backend.ErrGroupNotFound
	}
	grp.Stopped++
	for _, c := range f.channels {
		if g == Master || c.Group == g {
			c.Playing = false
		}
	}
	return nil
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Name: "Close"}); err != nil {
		return err
	}
	f.closed = true
	return nil
}

var _ backend.Backend = (*Fake)(nil)
