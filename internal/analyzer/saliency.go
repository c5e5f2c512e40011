// Package analyzer derives points of interest from decoded media. The
// cycler uses it to pick pan anchors for playlist entries that do not
// declare their own focal points.
package analyzer

import (
	"image"
	"image/color"
	"math"
	"sort"
)

// Region is a detected area of visual interest. Weight orders regions
// by how much edge structure they contain.
type Region struct {
	Rect   image.Rectangle
	Weight float64
}

// SaliencyDetector finds regions of interest through Sobel edge
// detection and morphological grouping.
type SaliencyDetector struct {
	MinRegionArea int     // regions smaller than this are noise
	EdgeThreshold float64 // gradient magnitude cutoff
}

// NewSaliencyDetector returns a detector with default sensitivity.
func NewSaliencyDetector() *SaliencyDetector {
	return &SaliencyDetector{
		MinRegionArea: 500,
		EdgeThreshold: 30.0,
	}
}

// Detect returns salient regions of img ordered by descending weight.
func (d *SaliencyDetector) Detect(img image.Image) []Region {
	gray := toGrayscale(img)
	edges := sobelEdges(gray, d.EdgeThreshold)

	// Dilation joins nearby edges so one subject yields one region
	// instead of a cloud of fragments.
	joined := dilate(edges, 5, 2)

	var regions []Region
	for _, rect := range connectedComponents(joined) {
		area := rect.Dx() * rect.Dy()
		if area < d.MinRegionArea {
			continue
		}
		regions = append(regions, Region{
			Rect:   rect,
			Weight: float64(area) * edgeDensity(edges, rect),
		})
	}

	sort.Slice(regions, func(i, j int) bool {
		return regions[i].Weight > regions[j].Weight
	})
	return regions
}

// edgeDensity is the fraction of edge pixels inside rect.
func edgeDensity(edges *image.Gray, rect image.Rectangle) float64 {
	area := rect.Dx() * rect.Dy()
	if area == 0 {
		return 0
	}
	count := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if edges.GrayAt(x, y).Y > 128 {
				count++
			}
		}
	}
	return float64(count) / float64(area)
}

func toGrayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return gray
}

// sobelEdges thresholds the Sobel gradient magnitude into a binary
// edge map.
func sobelEdges(gray *image.Gray, threshold float64) *image.Gray {
	bounds := gray.Bounds()
	edges := image.NewGray(bounds)

	gx := [3][3]float64{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}
	gy := [3][3]float64{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}}

	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			var sumX, sumY float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					pixel := float64(gray.GrayAt(x+kx, y+ky).Y)
					sumX += pixel * gx[ky+1][kx+1]
					sumY += pixel * gy[ky+1][kx+1]
				}
			}
			if math.Hypot(sumX, sumY) > threshold {
				edges.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return edges
}

func dilate(img *image.Gray, kernelSize, iterations int) *image.Gray {
	bounds := img.Bounds()
	result := image.NewGray(bounds)
	copy(result.Pix, img.Pix)

	half := kernelSize / 2
	for iter := 0; iter < iterations; iter++ {
		next := image.NewGray(bounds)
		for y := bounds.Min.Y + half; y < bounds.Max.Y-half; y++ {
			for x := bounds.Min.X + half; x < bounds.Max.X-half; x++ {
				var maxVal uint8
				for ky := -half; ky <= half; ky++ {
					for kx := -half; kx <= half; kx++ {
						if v := result.GrayAt(x+kx, y+ky).Y; v > maxVal {
							maxVal = v
						}
					}
				}
				next.SetGray(x, y, color.Gray{Y: maxVal})
			}
		}
		result = next
	}
	return result
}

// connectedComponents returns the bounding box of every connected
// white region.
func connectedComponents(img *image.Gray) []image.Rectangle {
	bounds := img.Bounds()
	visited := make([][]bool, bounds.Dy())
	for i := range visited {
		visited[i] = make([]bool, bounds.Dx())
	}

	var rects []image.Rectangle
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if img.GrayAt(x, y).Y > 128 && !visited[y-bounds.Min.Y][x-bounds.Min.X] {
				rects = append(rects, fillComponent(img, visited, x, y))
			}
		}
	}
	return rects
}

// fillComponent flood-fills from a start pixel and returns the
// component's bounding rectangle.
func fillComponent(img *image.Gray, visited [][]bool, startX, startY int) image.Rectangle {
	bounds := img.Bounds()
	minX, minY := startX, startY
	maxX, maxY := startX, startY

	stack := []image.Point{{X: startX, Y: startY}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < bounds.Min.X || p.X >= bounds.Max.X || p.Y < bounds.Min.Y || p.Y >= bounds.Max.Y {
			continue
		}
		if visited[p.Y-bounds.Min.Y][p.X-bounds.Min.X] || img.GrayAt(p.X, p.Y).Y <= 128 {
			continue
		}
		visited[p.Y-bounds.Min.Y][p.X-bounds.Min.X] = true

		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}

		stack = append(stack,
			image.Point{X: p.X + 1, Y: p.Y},
			image.Point{X: p.X - 1, Y: p.Y},
			image.Point{X: p.X, Y: p.Y + 1},
			image.Point{X: p.X, Y: p.Y - 1},
		)
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}
