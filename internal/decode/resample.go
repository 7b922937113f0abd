package decode

import "math"

// ToStereo returns c with exactly two channels. Mono is duplicated; extra
// channels beyond the first two are dropped. A stereo clip is returned as is.
func ToStereo(c *Clip) *Clip {
	if c.Channels == 2 {
		return c
	}

	frames := c.Frames()
	out := &Clip{SampleRate: c.SampleRate, Channels: 2, Samples: make([]float32, frames*2)}
	for i := 0; i < frames; i++ {
		l := c.Samples[i*c.Channels]
		r := l
		if c.Channels > 1 {
			r = c.Samples[i*c.Channels+1]
		}
		out.Samples[i*2] = l
		out.Samples[i*2+1] = r
	}
	return out
}

// Resample converts c to rate using Catmull-Rom interpolation on each
// channel. A clip already at rate is returned as is.
func Resample(c *Clip, rate int) *Clip {
	if rate <= 0 || c.SampleRate == rate || c.Frames() == 0 {
		return c
	}

	ch := c.Channels
	inFrames := c.Frames()
	ratio := float64(c.SampleRate) / float64(rate)
	outFrames := int(math.Round(float64(inFrames) / ratio))
	if outFrames < 1 {
		outFrames = 1
	}

	frame := func(i, channel int) float32 {
		if i < 0 {
			i = 0
		} else if i >= inFrames {
			i = inFrames - 1
		}
		return c.Samples[i*ch+channel]
	}

	out := &Clip{SampleRate: rate, Channels: ch, Samples: make([]float32, outFrames*ch)}
	for i := 0; i < outFrames; i++ {
		pos := float64(i) * ratio
		idx := int(pos)
		x := float32(pos - float64(idx))
		for k := 0; k < ch; k++ {
			out.Samples[i*ch+k] = cubic(
				frame(idx-1, k), frame(idx, k), frame(idx+1, k), frame(idx+2, k), x)
		}
	}
	return out
}

// Prepare converts c into the stereo layout and rate the mixer plays.
func Prepare(c *Clip, rate int) *Clip {
	return Resample(ToStereo(c), rate)
}

// cubic is Catmull-Rom interpolation between y1 and y2 at x in [0, 1),
// evaluated in Horner form. The resampling approach follows
// github.com/ik5/audpbx (EPL-2.0), see NOTICE.
func cubic(y0, y1, y2, y3, x float32) float32 {
	return y1 + 0.5*x*(y2-y0+x*(2*y0-5*y1+4*y2-y3+x*(3*(y1-y2)+y3-y0)))
}
