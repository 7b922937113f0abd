package softmix

import (
	"encoding/binary"
	"math"

	"github.com/dgnsrekt/tickmix/internal/fade"
)

// Mix renders len(dst)/2 stereo frames into dst, advances the clock by that
// many frames and returns the frame count. A closed engine renders silence.
func (e *Engine) Mix(dst []float32) int {
	frames := len(dst) / Channels
	dst = dst[:frames*Channels]
	clear(dst)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || frames == 0 {
		return frames
	}

	for ch, v := range e.voices {
		if e.render(v, dst) {
			delete(e.voices, ch)
		}
	}
	e.clock += uint64(frames)
	return frames
}

// render adds v into dst starting at the current clock and reports whether
// the voice ended. Paused voices hold their position but still honour their
// stop deadline.
func (e *Engine) render(v *voice, dst []float32) bool {
	total := v.clip.Frames()
	if total == 0 {
		return true
	}
	gain, groupPaused := e.groupState(v.group)
	samples := v.clip.Samples

	frames := len(dst) / Channels
	for i := 0; i < frames; i++ {
		clock := e.clock + uint64(i)
		if v.hasStop && clock >= v.stopAt {
			return true
		}
		if groupPaused || v.paused {
			continue
		}
		if v.pos >= total {
			if v.loopsLeft == 0 {
				return true
			}
			if v.loopsLeft > 0 {
				v.loopsLeft--
			}
			v.pos = 0
		}

		if !v.mute {
			amp := gain * v.volume * fade.VolumeAt(v.points, clock)
			dst[i*2] += samples[v.pos*2] * amp * v.left
			dst[i*2+1] += samples[v.pos*2+1] * amp * v.right
		}
		v.pos++
	}

	v.prune(e.clock + uint64(frames))
	return v.pos >= total && v.loopsLeft == 0
}

// Read implements io.Reader with interleaved stereo float32 little-endian
// frames, clipped to [-1, 1]. Partial frames at the end of p are left
// unwritten.
func (e *Engine) Read(p []byte) (int, error) {
	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}

	if cap(e.readBuf) < frames*Channels {
		e.readBuf = make([]float32, frames*Channels)
	}
	buf := e.readBuf[:frames*Channels]
	e.Mix(buf)

	for i, s := range buf {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		binary.LittleEndian.PutUint32(p[i*bytesPerSample:], math.Float32bits(s))
	}
	return frames * bytesPerFrame, nil
}
