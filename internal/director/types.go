package director

import (
	"github.com/ivlev/herocycle/internal/media"
	"github.com/ivlev/herocycle/internal/transform"
)

// Axis identifies which viewport dimension forced the minimum scale.
type Axis string

const (
	AxisWidth  Axis = "width"
	AxisHeight Axis = "height"
)

// ScaleResult describes the minimum scale at which a media item always
// overflows the viewport by the configured margin.
type ScaleResult struct {
	Scale            float64
	ScaledDimensions media.Size
	ActualOverflow   media.Point // extra pixels per side, per axis
	ConstrainedBy    Axis
}

// Bounds is the translation range within which the scaled image never
// exposes empty space around the viewport. MinX <= MaxX, MinY <= MaxY.
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// Width returns the horizontal extent of the bounds box.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent of the bounds box.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Clamp constrains a point into the bounds box.
func (b Bounds) Clamp(p media.Point) media.Point {
	return media.Point{
		X: clamp(p.X, b.MinX, b.MaxX),
		Y: clamp(p.Y, b.MinY, b.MaxY),
	}
}

// Contains reports whether p lies inside the bounds box.
func (b Bounds) Contains(p media.Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// expanded grows the box symmetrically by amount on each side.
func (b Bounds) expanded(amount float64) Bounds {
	return Bounds{
		MinX: b.MinX - amount, MaxX: b.MaxX + amount,
		MinY: b.MinY - amount, MaxY: b.MaxY + amount,
	}
}

// Transformation is the full geometry for one media item at one
// viewport: scale, translation limits, and the start/end transforms
// anchored on the secondary and main focal points.
type Transformation struct {
	ScaleResult
	Bounds Bounds
	Start  transform.Mat3
	End    transform.Mat3
}

// SpaceTransforms holds the matrices mapping between viewport space,
// normalized [0,1] space, and image space, with their inverses.
type SpaceTransforms struct {
	ViewportToNorm transform.Mat3
	NormToViewport transform.Mat3
	ImageToNorm    transform.Mat3
	NormToImage    transform.Mat3
}

// Waypoint is one keyframe of a pan/zoom pass: a target position inside
// the safe bounds, the scale to hold there, and the share of the total
// pass duration spent travelling to it. The first waypoint of a pass has
// Duration 0; the remaining durations sum to 1.
type Waypoint struct {
	Position media.Point
	Scale    float64
	Duration float64
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
