package director

import (
	"math"
	"strconv"
	"strings"

	"github.com/ivlev/herocycle/internal/media"
	"github.com/ivlev/herocycle/internal/transform"
)

// MinimumScale computes the smallest scale at which image overflows the
// visible viewport by at least minOverflow pixels on every side.
func MinimumScale(image media.Size, vp media.Viewport, minOverflow float64) (*ScaleResult, error) {
	if err := media.ValidateSize("image", image); err != nil {
		return nil, err
	}
	if err := media.ValidateViewport(vp); err != nil {
		return nil, err
	}
	if math.IsNaN(minOverflow) || math.IsInf(minOverflow, 0) || minOverflow < 0 {
		return nil, &media.ValidationError{Field: "min_overflow", Reason: "must be finite and >= 0"}
	}

	visible := vp.VisibleHeight()
	requiredWidth := vp.Width + minOverflow
	requiredHeight := visible + minOverflow

	ratioX := requiredWidth / image.Width
	ratioY := requiredHeight / image.Height

	scale := math.Max(ratioX, ratioY)
	scaled := image.Scaled(scale)

	constrainedBy := AxisHeight
	if ratioX > ratioY {
		constrainedBy = AxisWidth
	}

	return &ScaleResult{
		Scale:            scale,
		ScaledDimensions: scaled,
		ActualOverflow: media.Point{
			X: (scaled.Width - vp.Width) / 2,
			Y: (scaled.Height - visible) / 2,
		},
		ConstrainedBy: constrainedBy,
	}, nil
}

// OptimalTransformation composes the minimum scale with the item's focal
// points: each point maps to the translation that centers it in the
// visible viewport, clamped into the safe translation bounds. Start
// anchors the secondary point, End the main one.
func OptimalTransformation(image media.Size, vp media.Viewport, focal media.FocalPoints, minOverflow float64) (*Transformation, error) {
	if err := focal.Validate(); err != nil {
		return nil, err
	}

	result, err := MinimumScale(image, vp, minOverflow)
	if err != nil {
		return nil, err
	}

	bounds := Bounds{
		MinX: -result.ActualOverflow.X, MaxX: result.ActualOverflow.X,
		MinY: -result.ActualOverflow.Y, MaxY: result.ActualOverflow.Y,
	}

	start := bounds.Clamp(centeringTranslation(focal.Secondary, result.ScaledDimensions))
	end := bounds.Clamp(centeringTranslation(focal.Main, result.ScaledDimensions))

	scale := transform.UniformScaling(result.Scale)
	return &Transformation{
		ScaleResult: *result,
		Bounds:      bounds,
		Start:       transform.Translation(start.X, start.Y).Mul(scale),
		End:         transform.Translation(end.X, end.Y).Mul(scale),
	}, nil
}

// centeringTranslation returns the offset, relative to the centered
// position, that brings a normalized focal point to the viewport center.
func centeringTranslation(f media.FocalPoint, scaled media.Size) media.Point {
	return media.Point{
		X: (0.5 - f.X) * scaled.Width,
		Y: (0.5 - f.Y) * scaled.Height,
	}
}

// CSSProperties maps a scale result to the custom properties the
// rendering surface consumes. Zero overflow still emits "0px"; the
// surface relies on every property being present.
func CSSProperties(result *ScaleResult) map[string]string {
	return map[string]string{
		"--scale":      cssNumber(result.Scale),
		"--min-width":  cssPixels(result.ScaledDimensions.Width),
		"--min-height": cssPixels(result.ScaledDimensions.Height),
		"--x-overflow": cssPixels(result.ActualOverflow.X),
		"--y-overflow": cssPixels(result.ActualOverflow.Y),
	}
}

func cssNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	s := strconv.FormatFloat(v, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

func cssPixels(v float64) string {
	return cssNumber(v) + "px"
}
