// Package backend defines the contract between the mixer core and the
// low-level audio engine that decodes, mixes and applies clock-stamped
// volume curves. The core never blocks on the backend: opens are
// non-blocking and completion is discovered by polling OpenState.
package backend
