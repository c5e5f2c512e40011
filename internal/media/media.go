// Package media holds the playlist data model: media items, encoded
// variants, focal points, and the dimension types shared by the geometry
// and cycling packages.
package media

import (
	"fmt"
	"math"
)

// Kind distinguishes still images from video clips.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Size is a width/height pair in pixels.
type Size struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Scaled returns the size multiplied by factor on both axes.
func (s Size) Scaled(factor float64) Size {
	return Size{Width: s.Width * factor, Height: s.Height * factor}
}

// Point is a 2D coordinate.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Distance returns the Euclidean distance to other.
func (p Point) Distance(other Point) float64 {
	return math.Hypot(other.X-p.X, other.Y-p.Y)
}

// Viewport describes the visible area and the space reserved by a fixed
// header overlay at its top.
type Viewport struct {
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	HeaderHeight float64 `yaml:"header_height"`
}

// VisibleHeight returns the height not covered by the header.
func (v Viewport) VisibleHeight() float64 {
	return v.Height - v.HeaderHeight
}

// Focal point coordinates are normalized to the media's own box. The
// nominal range is [0,1]; values up to half a box outside are tolerated
// so entry points can be biased past an edge.
const (
	FocalMin = -0.5
	FocalMax = 1.5
)

// FocalPoint marks a region of a media item that animation must keep
// inside the viewport.
type FocalPoint struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Validate rejects non-finite or out-of-tolerance coordinates.
func (f FocalPoint) Validate(name string) error {
	for axis, v := range map[string]float64{"x": f.X, "y": f.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ValidationError{Field: name + "." + axis, Reason: "must be finite"}
		}
		if v < FocalMin || v > FocalMax {
			return &ValidationError{
				Field:  name + "." + axis,
				Reason: fmt.Sprintf("%.3f outside tolerance [%.1f, %.1f]", v, FocalMin, FocalMax),
			}
		}
	}
	return nil
}

// FocalPoints pairs the two per-item anchors: the animation pans from the
// secondary point toward the main one.
type FocalPoints struct {
	Main      FocalPoint `yaml:"main"`
	Secondary FocalPoint `yaml:"secondary"`
}

// IsZero reports whether no anchors were authored. A zero pair means
// "derive anchors from the image" rather than "pan to the corner".
func (f FocalPoints) IsZero() bool {
	return f == FocalPoints{}
}

// Validate checks both points.
func (f FocalPoints) Validate() error {
	if err := f.Main.Validate("main"); err != nil {
		return err
	}
	return f.Secondary.Validate("secondary")
}

// Variant is one encoded rendition of a media item, keyed by container
// format and pixel width.
type Variant struct {
	Format string `yaml:"format"` // e.g. "avif", "webp", "av1", "h264"
	Width  int    `yaml:"width"`
	URL    string `yaml:"url"`
}

// MediaItem is one playlist entry. Immutable once constructed at
// playlist-build time.
type MediaItem struct {
	ID      string      `yaml:"id"`
	Name    string      `yaml:"name"`
	Kind    Kind        `yaml:"kind"`
	Size    Size        `yaml:"size"`
	Variant []Variant   `yaml:"variants"`
	Poster  []Variant   `yaml:"poster,omitempty"` // derived still set for videos
	Focal   FocalPoints `yaml:"focal"`
}

// Validate checks the invariants a well-formed playlist entry must hold.
func (m *MediaItem) Validate() error {
	if m.ID == "" {
		return &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if m.Kind != KindImage && m.Kind != KindVideo {
		return &ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown kind %q", m.Kind)}
	}
	if err := ValidateSize("size", m.Size); err != nil {
		return err
	}
	if len(m.Variant) == 0 {
		return &ValidationError{Field: "variants", Reason: "at least one variant required"}
	}
	return m.Focal.Validate()
}

// VariantFor picks the narrowest variant at least as wide as want,
// falling back to the widest available. Preference among equal widths
// follows manifest order.
func (m *MediaItem) VariantFor(want int) Variant {
	return pickVariant(m.Variant, want)
}

// PosterFor picks a poster rendition the same way VariantFor picks a
// source. Items without a derived poster set fall back to the source
// variants.
func (m *MediaItem) PosterFor(want int) Variant {
	if len(m.Poster) == 0 {
		return m.VariantFor(want)
	}
	return pickVariant(m.Poster, want)
}

func pickVariant(variants []Variant, want int) Variant {
	best := variants[0]
	for _, v := range variants[1:] {
		if best.Width >= want {
			if v.Width >= want && v.Width < best.Width {
				best = v
			}
		} else if v.Width > best.Width {
			best = v
		}
	}
	return best
}

// ValidateSize rejects sizes with non-finite or non-positive dimensions.
func ValidateSize(field string, s Size) error {
	if !isFinitePositive(s.Width) {
		return &ValidationError{Field: field + ".width", Reason: "must be finite and > 0"}
	}
	if !isFinitePositive(s.Height) {
		return &ValidationError{Field: field + ".height", Reason: "must be finite and > 0"}
	}
	return nil
}

// ValidateViewport rejects malformed viewports, including ones whose
// header leaves no visible height.
func ValidateViewport(v Viewport) error {
	if err := ValidateSize("viewport", Size{Width: v.Width, Height: v.Height}); err != nil {
		return err
	}
	if math.IsNaN(v.HeaderHeight) || math.IsInf(v.HeaderHeight, 0) || v.HeaderHeight < 0 {
		return &ValidationError{Field: "viewport.header_height", Reason: "must be finite and >= 0"}
	}
	if v.VisibleHeight() <= 0 {
		return &ValidationError{Field: "viewport.height", Reason: "header leaves no visible height"}
	}
	return nil
}

func isFinitePositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
