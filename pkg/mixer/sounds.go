package mixer

import (
	"github.com/dgnsrekt/tickmix/internal/backend"
)

// soundMode is used for every pooled sound effect.
const soundMode = backend.ModeLoopNormal | backend.ModeNonBlocking

// Load opens path as a sound effect and returns its handle immediately; the
// backend finishes decoding in the background. Once every handle has been
// issued Load fails with ErrCapacityExhausted. A failed open does not use up
// a handle.
func (m *Mixer) Load(path string) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.usable("load"); err != nil {
		return 0, err
	}
	if err := m.sounds.Reserve(); err != nil {
		return 0, &OpError{Op: "load", Kind: ErrCapacityExhausted, Err: err}
	}

	id, err := m.b.CreateSound(path, soundMode)
	if err != nil {
		return 0, backendFailure("load", err)
	}

	h, err := m.sounds.Add(soundAsset{id: id, path: path, mode: soundMode})
	if err != nil {
		// Reserve succeeded under the same lock, so this is unreachable.
		_ = m.b.ReleaseSound(id)
		return 0, &OpError{Op: "load", Kind: ErrCapacityExhausted, Err: err}
	}

	logger.Debug("Sound loading", "handle", h, "path", path)
	return h, nil
}

// SoundState reports how far the open of a loaded sound has progressed.
func (m *Mixer) SoundState(h Handle) (backend.OpenState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.usable("sound state"); err != nil {
		return backend.OpenError, err
	}
	asset, err := m.sounds.Get(h)
	if err != nil {
		return backend.OpenError, &OpError{Op: "sound state", Kind: ErrInvalidHandle, Err: err}
	}
	state, err := m.b.OpenState(asset.id)
	if err != nil {
		return backend.OpenError, backendFailure("sound state", err)
	}
	return state, nil
}
