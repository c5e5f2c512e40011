// Package animation executes pan/zoom timelines against a render
// target: numeric keyframes in, eased per-tick transform updates out.
package animation

import (
	"math"

	"github.com/ivlev/herocycle/internal/media"
)

// Keyframe is one point on a timeline: the transform to reach and the
// normalized time offset [0,1] at which to reach it.
type Keyframe struct {
	Position media.Point
	Scale    float64
	Offset   float64
}

// Frame is the interpolated transform at a moment in time.
type Frame struct {
	Position media.Point
	Scale    float64
}

// Interpolate computes the frame at normalized time t by easing
// between the surrounding keyframes. Before the first keyframe it
// holds the first, past the last it holds the last.
func Interpolate(keyframes []Keyframe, t float64) Frame {
	if len(keyframes) == 0 {
		return Frame{Scale: 1}
	}

	first := keyframes[0]
	if t <= first.Offset {
		return Frame{Position: first.Position, Scale: first.Scale}
	}
	last := keyframes[len(keyframes)-1]
	if t >= last.Offset {
		return Frame{Position: last.Position, Scale: last.Scale}
	}

	var prev, next Keyframe
	for i := 0; i < len(keyframes)-1; i++ {
		if t >= keyframes[i].Offset && t < keyframes[i+1].Offset {
			prev, next = keyframes[i], keyframes[i+1]
			break
		}
	}

	span := next.Offset - prev.Offset
	if span <= 0 {
		return Frame{Position: next.Position, Scale: next.Scale}
	}

	k := easeInOutCubic((t - prev.Offset) / span)
	return Frame{
		Position: media.Point{
			X: lerp(prev.Position.X, next.Position.X, k),
			Y: lerp(prev.Position.Y, next.Position.Y, k),
		},
		Scale: lerp(prev.Scale, next.Scale, k),
	}
}

// Valid reports whether every component of the keyframe is finite.
func (k Keyframe) Valid() bool {
	for _, v := range []float64{k.Position.X, k.Position.Y, k.Scale, k.Offset} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// easeInOutCubic accelerates into and out of each segment.
func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}
