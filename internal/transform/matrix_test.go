package transform

import (
	"math"
	"testing"

	"github.com/ivlev/herocycle/internal/media"
)

const tolerance = 1e-9

func matNear(a, b Mat3) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > tolerance {
			return false
		}
	}
	return true
}

func TestMulIdentity(t *testing.T) {
	m := Translation(10, -4).Mul(Scaling(2, 3))
	if got := m.Mul(Identity()); !matNear(got, m) {
		t.Errorf("m * I != m: %v", got)
	}
	if got := Identity().Mul(m); !matNear(got, m) {
		t.Errorf("I * m != m: %v", got)
	}
}

func TestTranslationThenScale(t *testing.T) {
	// Composition applies the right operand first: scale, then translate.
	m := Translation(100, 50).Mul(UniformScaling(2))

	p, ok := m.Apply(media.Point{X: 3, Y: 4})
	if !ok {
		t.Fatal("Apply reported degenerate for an affine matrix")
	}
	if math.Abs(p.X-106) > tolerance || math.Abs(p.Y-58) > tolerance {
		t.Errorf("expected (106, 58), got (%v, %v)", p.X, p.Y)
	}
}

func TestInverseRoundTrip(t *testing.T) {
	m := Translation(33, -7).Mul(Scaling(1.25, 0.8))

	inv, ok := m.Inverse()
	if !ok {
		t.Fatal("Inverse reported degenerate for an invertible matrix")
	}

	if got := m.Mul(inv); !matNear(got, Identity()) {
		t.Errorf("m * m^-1 != I: %v", got)
	}

	orig := media.Point{X: 12.5, Y: -3.25}
	fwd, _ := m.Apply(orig)
	back, _ := inv.Apply(fwd)
	if math.Abs(back.X-orig.X) > tolerance || math.Abs(back.Y-orig.Y) > tolerance {
		t.Errorf("round trip drifted: %v -> %v", orig, back)
	}
}

func TestInverseDegenerate(t *testing.T) {
	cases := []Mat3{
		Scaling(0, 1),     // collapsed x axis
		Scaling(1e-9, 1),  // below the epsilon threshold
		{},                // zero matrix
	}
	for i, m := range cases {
		if _, ok := m.Inverse(); ok {
			t.Errorf("case %d: expected degenerate inverse", i)
		}
	}
}

func TestApplyPerspectiveDivide(t *testing.T) {
	// A projective matrix with w = 2 for every point halves coordinates.
	m := Identity()
	m[8] = 2

	p, ok := m.Apply(media.Point{X: 10, Y: 6})
	if !ok {
		t.Fatal("unexpected degenerate result")
	}
	if math.Abs(p.X-5) > tolerance || math.Abs(p.Y-3) > tolerance {
		t.Errorf("expected (5, 3), got (%v, %v)", p.X, p.Y)
	}

	// w ~ 0 must be surfaced, never divided through.
	m[8] = 0
	m[6], m[7] = 0, 0
	if _, ok := m.Apply(media.Point{X: 1, Y: 1}); ok {
		t.Error("expected degenerate result for w = 0")
	}
}

func TestAffineString(t *testing.T) {
	tests := []struct {
		m    Mat3
		want string
	}{
		{Identity(), "matrix(1, 0, 0, 1, 0, 0)"},
		{Translation(100, 50), "matrix(1, 0, 0, 1, 100, 50)"},
		{UniformScaling(1.3), "matrix(1.3, 0, 0, 1.3, 0, 0)"},
		{Translation(-62.5, 50).Mul(UniformScaling(0.9375)), "matrix(0.9375, 0, 0, 0.9375, -62.5, 50)"},
	}
	for _, tt := range tests {
		if got := tt.m.AffineString(); got != tt.want {
			t.Errorf("AffineString() = %q, expected %q", got, tt.want)
		}
	}
}
