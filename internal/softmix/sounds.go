package softmix

import (
	"fmt"

	"github.com/dgnsrekt/tickmix/internal/backend"
)

// CreateSound opens path. With ModeNonBlocking the decode runs on a loader
// worker and the sound stays OpenLoading until an Update after it finishes;
// otherwise the call decodes before returning.
func (e *Engine) CreateSound(path string, mode backend.Mode) (backend.SoundID, error) {
	return e.open(path, mode, false)
}

// CreateStream opens path for a single long-running channel.
func (e *Engine) CreateStream(path string, mode backend.Mode) (backend.SoundID, error) {
	return e.open(path, mode, true)
}

func (e *Engine) open(path string, mode backend.Mode, stream bool) (backend.SoundID, error) {
	s := &sound{path: path, mode: mode, stream: stream, state: backend.OpenLoading}

	// Blocking opens decode before taking the lock so mixing keeps running.
	if !mode.Has(backend.ModeNonBlocking) {
		if e.isClosed() {
			return 0, backend.ErrClosed
		}
		clip, err := e.loader.load(path)
		if err != nil {
			return 0, err
		}
		s.clip = clip
		s.state = backend.OpenReady
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return 0, backend.ErrClosed
	}

	id := e.nextSound
	e.nextSound++
	e.sounds[id] = s

	if s.state == backend.OpenLoading {
		e.loader.submit(loadJob{id: id, path: path})
	}
	logger.Debug("Opening sound", "id", id, "path", path, "stream", stream, "state", s.state)
	return id, nil
}

// OpenState reports the progress of an open.
func (e *Engine) OpenState(id backend.SoundID) (backend.OpenState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.sound(id)
	if err != nil {
		return backend.OpenError, err
	}
	return s.state, nil
}

// OpenError returns why an open failed, or nil.
func (e *Engine) OpenError(id backend.SoundID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.sound(id)
	if err != nil {
		return err
	}
	return s.err
}

// ReleaseSound forgets the sound. Voices already playing it keep their
// samples and run to their end; a pending load is discarded.
func (e *Engine) ReleaseSound(id backend.SoundID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.sound(id); err != nil {
		return err
	}
	delete(e.sounds, id)
	return nil
}

// sound must be called with the lock held.
func (e *Engine) sound(id backend.SoundID) (*sound, error) {
	if e.closed {
		return nil, backend.ErrClosed
	}
	s, ok := e.sounds[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", backend.ErrSoundNotFound, id)
	}
	return s, nil
}
