// Package director turns media geometry and focal points into the
// scale, translation bounds, and animation waypoints that keep a hero
// image overflowing the viewport while its focal regions stay visible.
package director

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/ivlev/herocycle/internal/media"
	"github.com/ivlev/herocycle/internal/transform"
)

// ErrDegenerate reports geometry that cannot produce a usable transform:
// a near-singular matrix or safe bounds that fail to converge.
var ErrDegenerate = errors.New("degenerate geometry")

// Extended bounds for entry points grow by this share of the smaller
// box dimension.
const entryExpansion = 0.1

// Safe-bounds self-correction is attempted at most this many times
// before the geometry is reported as degenerate.
const maxBoundsAttempts = 2

// Calculator generates camera waypoints for hero media. The zero value
// is not usable; construct with NewCalculator.
type Calculator struct {
	MinOverflow float64 // minimum overflow pixels per side
	BaseScale   float64 // scale held at intermediate waypoints
	MaxScale    float64 // cap for the intermediate scale
	Margin      float64 // minimum translation half-extent per axis
	Variance    float64 // jitter share of the bounds range

	// Rand drives target-position jitter. Replaceable for
	// deterministic tests.
	Rand *rand.Rand
}

// NewCalculator returns a Calculator with the production defaults.
func NewCalculator() *Calculator {
	return &Calculator{
		MinOverflow: 100,
		BaseScale:   1.1,
		MaxScale:    1.3,
		Margin:      50,
		Variance:    0.2,
		Rand:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewSpaceTransforms builds the matrices mapping viewport space and
// image space into normalized [0,1] space, along with their inverses.
// The viewport mapping excludes the header band.
func NewSpaceTransforms(image media.Size, vp media.Viewport) (*SpaceTransforms, error) {
	if err := media.ValidateSize("image", image); err != nil {
		return nil, err
	}
	if err := media.ValidateViewport(vp); err != nil {
		return nil, err
	}

	viewportToNorm := transform.Scaling(1/vp.Width, 1/vp.VisibleHeight()).
		Mul(transform.Translation(0, -vp.HeaderHeight))
	imageToNorm := transform.Scaling(1/image.Width, 1/image.Height)

	normToViewport, ok := viewportToNorm.Inverse()
	if !ok {
		return nil, ErrDegenerate
	}
	normToImage, ok := imageToNorm.Inverse()
	if !ok {
		return nil, ErrDegenerate
	}

	return &SpaceTransforms{
		ViewportToNorm: viewportToNorm,
		NormToViewport: normToViewport,
		ImageToNorm:    imageToNorm,
		NormToImage:    normToImage,
	}, nil
}

// SafeBounds computes the translation limits at the given candidate
// scale. When the scaled image overflows by less than the configured
// margin, the scale is corrected through MinimumScale and the
// computation retried; non-convergence is reported as ErrDegenerate
// rather than recursing without bound. Returns the bounds and the scale
// actually used.
func (c *Calculator) SafeBounds(image media.Size, vp media.Viewport, scale float64) (Bounds, float64, error) {
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale <= 0 {
		return Bounds{}, 0, &media.ValidationError{Field: "scale", Reason: "must be finite and > 0"}
	}

	st, err := NewSpaceTransforms(image, vp)
	if err != nil {
		return Bounds{}, 0, err
	}

	for attempt := 0; attempt < maxBoundsAttempts; attempt++ {
		b, ok := c.boundsAt(st, image, vp, scale)
		if ok {
			return b, scale, nil
		}

		// Degenerate box: the candidate scale leaves less panning
		// room than the margin. Correct it via the minimum overflow
		// requirement and try again.
		result, err := MinimumScale(image, vp, math.Max(c.MinOverflow, 2*c.Margin))
		if err != nil {
			return Bounds{}, 0, err
		}
		if result.Scale <= scale {
			// Correction cannot grow the box; give up early.
			break
		}
		scale = result.Scale
	}

	return Bounds{}, 0, ErrDegenerate
}

// boundsAt projects the visible viewport corners into scaled image
// space and derives the translation half-extents from the overflow
// remainder. Reports false when either half-extent falls under the
// margin.
func (c *Calculator) boundsAt(st *SpaceTransforms, image media.Size, vp media.Viewport, scale float64) (Bounds, bool) {
	scaledFromNorm := transform.Scaling(image.Width*scale, image.Height*scale)

	corners := []media.Point{
		{X: 0, Y: vp.HeaderHeight},
		{X: vp.Width, Y: vp.HeaderHeight},
		{X: 0, Y: vp.Height},
		{X: vp.Width, Y: vp.Height},
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, corner := range corners {
		norm, ok := st.ViewportToNorm.Apply(corner)
		if !ok {
			return Bounds{}, false
		}
		p, ok := scaledFromNorm.Apply(norm)
		if !ok {
			return Bounds{}, false
		}
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	halfX := ((maxX - minX) - vp.Width) / 2
	halfY := ((maxY - minY) - vp.VisibleHeight()) / 2
	if halfX < c.Margin || halfY < c.Margin {
		return Bounds{}, false
	}

	return Bounds{MinX: -halfX, MaxX: halfX, MinY: -halfY, MaxY: halfY}, true
}

// TargetPosition interpolates a focal point into the bounds box and
// adds a symmetric random offset of up to variance times the box range,
// clamped back into bounds. The jitter is decorative; callers must
// treat the output as bounded rather than exact.
func (c *Calculator) TargetPosition(b Bounds, focal media.FocalPoint, variance float64) media.Point {
	p := media.Point{
		X: b.MinX + focal.X*b.Width(),
		Y: b.MinY + focal.Y*b.Height(),
	}
	if variance > 0 {
		p.X += (c.Rand.Float64()*2 - 1) * variance * b.Width()
		p.Y += (c.Rand.Float64()*2 - 1) * variance * b.Height()
	}
	return b.Clamp(p)
}

// Waypoints generates one full pan/zoom pass over the item: an
// edge-biased entry point followed by one target per focal point, with
// durations proportional to the Euclidean distance travelled. The final
// waypoint carries the minimum-overflow scale; earlier ones hold the
// base scale.
func (c *Calculator) Waypoints(image media.Size, vp media.Viewport, focal []media.FocalPoint, variance float64) ([]Waypoint, error) {
	if err := media.ValidateSize("image", image); err != nil {
		return nil, err
	}
	if err := media.ValidateViewport(vp); err != nil {
		return nil, err
	}
	if len(focal) == 0 {
		return nil, &media.ValidationError{Field: "focal", Reason: "at least one focal point required"}
	}
	for _, f := range focal {
		if err := f.Validate("focal"); err != nil {
			return nil, err
		}
	}
	if math.IsNaN(variance) || math.IsInf(variance, 0) || variance < 0 {
		return nil, &media.ValidationError{Field: "variance", Reason: "must be finite and >= 0"}
	}

	minimum, err := MinimumScale(image, vp, c.MinOverflow)
	if err != nil {
		return nil, err
	}

	baseScale := math.Min(c.BaseScale, c.MaxScale)
	bounds, _, err := c.SafeBounds(image, vp, math.Max(baseScale, minimum.Scale))
	if err != nil {
		return nil, err
	}

	// The extended box exists only to bias the entry point past the
	// normal focal range.
	extended := bounds.expanded(entryExpansion * math.Min(bounds.Width(), bounds.Height()))

	positions := make([]media.Point, 0, len(focal)+1)
	positions = append(positions, c.entryPoint(extended))
	for _, f := range focal {
		positions = append(positions, c.TargetPosition(bounds, f, variance))
	}

	total := 0.0
	distances := make([]float64, len(positions)-1)
	for i := 1; i < len(positions); i++ {
		distances[i-1] = positions[i-1].Distance(positions[i])
		total += distances[i-1]
	}

	waypoints := make([]Waypoint, len(positions))
	for i, pos := range positions {
		wp := Waypoint{Position: pos, Scale: baseScale}
		if i > 0 {
			if total > 0 {
				wp.Duration = distances[i-1] / total
			} else {
				// All positions coincide; split the pass evenly.
				wp.Duration = 1 / float64(len(distances))
			}
		}
		if i == len(positions)-1 {
			wp.Scale = minimum.Scale
		}
		waypoints[i] = wp
	}

	return waypoints, nil
}

// entryPoint picks a point on a random edge of the extended box, so
// each pass starts just outside the territory the focal points cover.
func (c *Calculator) entryPoint(b Bounds) media.Point {
	along := c.Rand.Float64()
	switch c.Rand.Intn(4) {
	case 0: // top
		return media.Point{X: b.MinX + along*b.Width(), Y: b.MinY}
	case 1: // bottom
		return media.Point{X: b.MinX + along*b.Width(), Y: b.MaxY}
	case 2: // left
		return media.Point{X: b.MinX, Y: b.MinY + along*b.Height()}
	default: // right
		return media.Point{X: b.MaxX, Y: b.MinY + along*b.Height()}
	}
}
