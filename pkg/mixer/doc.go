// Package mixer is the playback layer on top of a backend.Backend: a
// fixed-capacity pool of one-shot sound effects, a dispatcher for their
// channels, and a single streaming music slot whose fade-in, fade-out and
// ramp transitions are scheduled against the backend's DSP clock.
//
// A Mixer must be ticked at a steady cadence, nominally once per frame,
// either by calling Update directly or by running a Runner. Music requests
// only take effect on a later tick, once the backend reports the stream open.
package mixer
