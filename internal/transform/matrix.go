// Package transform provides 3x3 homogeneous-coordinate matrix algebra
// for composing the pan/zoom transforms applied to hero media.
package transform

import (
	"math"
	"strconv"
	"strings"

	"github.com/ivlev/herocycle/internal/media"
)

// Inverses with a determinant below this magnitude are reported as
// degenerate instead of dividing by a near-zero value.
const epsilon = 1e-6

// Mat3 is a row-major 3x3 matrix.
// Layout:
//
//	| m[0] m[1] m[2] |
//	| m[3] m[4] m[5] |
//	| m[6] m[7] m[8] |
type Mat3 [9]float64

// Identity returns the identity matrix.
func Identity() Mat3 {
	return Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// Translation returns a matrix translating by (tx, ty).
func Translation(tx, ty float64) Mat3 {
	return Mat3{1, 0, tx, 0, 1, ty, 0, 0, 1}
}

// Scaling returns a matrix scaling by (sx, sy).
func Scaling(sx, sy float64) Mat3 {
	return Mat3{sx, 0, 0, 0, sy, 0, 0, 0, 1}
}

// UniformScaling returns a matrix scaling both axes by s.
func UniformScaling(s float64) Mat3 {
	return Scaling(s, s)
}

// Mul returns the product m * other. The transform represented by other
// is applied first.
func (m Mat3) Mul(other Mat3) Mat3 {
	var out Mat3
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += m[row*3+k] * other[k*3+col]
			}
			out[row*3+col] = sum
		}
	}
	return out
}

// Det returns the determinant.
func (m Mat3) Det() float64 {
	return m[0]*(m[4]*m[8]-m[5]*m[7]) -
		m[1]*(m[3]*m[8]-m[5]*m[6]) +
		m[2]*(m[3]*m[7]-m[4]*m[6])
}

// Inverse returns the closed-form inverse via the adjugate. The second
// result is false when the matrix is singular or near-singular; callers
// must branch on it rather than propagate invalid geometry.
func (m Mat3) Inverse() (Mat3, bool) {
	det := m.Det()
	if math.Abs(det) < epsilon {
		return Mat3{}, false
	}

	inv := 1.0 / det
	return Mat3{
		(m[4]*m[8] - m[5]*m[7]) * inv,
		(m[2]*m[7] - m[1]*m[8]) * inv,
		(m[1]*m[5] - m[2]*m[4]) * inv,
		(m[5]*m[6] - m[3]*m[8]) * inv,
		(m[0]*m[8] - m[2]*m[6]) * inv,
		(m[2]*m[3] - m[0]*m[5]) * inv,
		(m[3]*m[7] - m[4]*m[6]) * inv,
		(m[1]*m[6] - m[0]*m[7]) * inv,
		(m[0]*m[4] - m[1]*m[3]) * inv,
	}, true
}

// Apply transforms a point through the matrix, performing the
// perspective divide by w. Points at w ~ 0 are reported as degenerate.
func (m Mat3) Apply(p media.Point) (media.Point, bool) {
	x := m[0]*p.X + m[1]*p.Y + m[2]
	y := m[3]*p.X + m[4]*p.Y + m[5]
	w := m[6]*p.X + m[7]*p.Y + m[8]

	if math.Abs(w) < epsilon {
		return media.Point{}, false
	}
	return media.Point{X: x / w, Y: y / w}, true
}

// AffineString projects the matrix onto its 2D affine part and renders
// it as a CSS matrix() function for the rendering surface. The
// projective row is discarded.
func (m Mat3) AffineString() string {
	// CSS order: matrix(a, b, c, d, e, f) for
	//   | a c e |
	//   | b d f |
	vals := []float64{m[0], m[3], m[1], m[4], m[2], m[5]}

	var b strings.Builder
	b.WriteString("matrix(")
	for i, v := range vals {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(formatNumber(v))
	}
	b.WriteString(")")
	return b.String()
}

// formatNumber renders a float the way CSS expects: no exponent, no
// trailing zeros, "0" for negative zero.
func formatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	s := strconv.FormatFloat(v, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}
