package fade

import "math"

// Point is a single anchor on a channel's linear volume curve.
type Point struct {
	Clock  uint64
	Volume float32
}

// Plan is a two-point linear fade, optionally paired with a stop deadline.
type Plan struct {
	Points [2]Point
	End    uint64 // clock of the last fade point

	stop bool
}

// Offset returns the number of samples covering seconds at the given rate,
// rounded to the nearest sample.
func Offset(sampleRate int, seconds float64) uint64 {
	if sampleRate <= 0 || seconds <= 0 {
		return 0
	}
	return uint64(math.Round(float64(sampleRate) * seconds))
}

// Schedule builds the fade from volume from at clock to volume to at
// clock + round(sampleRate*seconds). Clock arithmetic assumes no wraparound.
func Schedule(clock uint64, sampleRate int, seconds float64, from, to float32) Plan {
	end := clock + Offset(sampleRate, seconds)
	return Plan{
		Points: [2]Point{
			{Clock: clock, Volume: from},
			{Clock: end, Volume: to},
		},
		End: end,
	}
}

// WithStop returns a copy of the plan that also stops the channel when the
// fade completes.
func (p Plan) WithStop() Plan {
	p.stop = true
	return p
}

// StopAt reports the scheduled stop clock, if any.
func (p Plan) StopAt() (uint64, bool) {
	return p.End, p.stop
}

// Duration returns the fade length in samples.
func (p Plan) Duration() uint64 {
	return p.Points[1].Clock - p.Points[0].Clock
}

// VolumeAt evaluates a sorted list of fade points at clock. Before the first
// point the first volume holds, after the last point the last volume holds,
// in between the volume is interpolated linearly. An empty curve is unity.
func VolumeAt(points []Point, clock uint64) float32 {
	if len(points) == 0 {
		return 1
	}
	if clock <= points[0].Clock {
		return points[0].Volume
	}
	last := points[len(points)-1]
	if clock >= last.Clock {
		return last.Volume
	}
	for i := 1; i < len(points); i++ {
		b := points[i]
		if clock > b.Clock {
			continue
		}
		a := points[i-1]
		span := b.Clock - a.Clock
		if span == 0 {
			return b.Volume
		}
		t := float32(clock-a.Clock) / float32(span)
		return a.Volume + (b.Volume-a.Volume)*t
	}
	return last.Volume
}
