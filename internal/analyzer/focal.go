package analyzer

import (
	"image"

	"github.com/ivlev/herocycle/internal/media"
)

// SuggestFocalPoints derives pan anchors from the strongest salient
// regions of img. The main anchor is the heaviest region's center; the
// secondary comes from the second region, or mirrors the main one so
// the pan still travels. Returns false when nothing stands out.
func SuggestFocalPoints(img image.Image) (media.FocalPoints, bool) {
	regions := NewSaliencyDetector().Detect(img)
	if len(regions) == 0 {
		return media.FocalPoints{}, false
	}

	bounds := img.Bounds()
	main := normalizedCenter(regions[0].Rect, bounds)

	var secondary media.FocalPoint
	if len(regions) > 1 {
		secondary = normalizedCenter(regions[1].Rect, bounds)
	} else {
		secondary = media.FocalPoint{X: 1 - main.X, Y: 1 - main.Y}
	}

	return media.FocalPoints{Main: main, Secondary: secondary}, true
}

// normalizedCenter maps the center of r into [0,1] image coordinates.
func normalizedCenter(r image.Rectangle, bounds image.Rectangle) media.FocalPoint {
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return media.FocalPoint{X: 0.5, Y: 0.5}
	}
	cx := float64(r.Min.X+r.Max.X)/2 - float64(bounds.Min.X)
	cy := float64(r.Min.Y+r.Max.Y)/2 - float64(bounds.Min.Y)
	return media.FocalPoint{
		X: cx / float64(bounds.Dx()),
		Y: cy / float64(bounds.Dy()),
	}
}
