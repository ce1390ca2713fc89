package dynamo

import (
	"math"
	"testing"
)

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi, math.Pi},
		{-3 * math.Pi, math.Pi},
		{math.Pi / 2, math.Pi / 2},
		{-math.Pi / 2, -math.Pi / 2},
		{2*math.Pi + 0.25, 0.25},
		{-2*math.Pi - 0.25, -0.25},
		{7.5, 7.5 - 2*math.Pi},
	}

	for _, tt := range tests {
		got := WrapAngle(tt.in)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("WrapAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWrapAngle_Range(t *testing.T) {
	for a := -50.0; a <= 50.0; a += 0.0137 {
		w := WrapAngle(a)
		if w <= -math.Pi || w > math.Pi {
			t.Fatalf("WrapAngle(%v) = %v outside (-pi, pi]", a, w)
		}
		if d := math.Remainder(w-a, 2*math.Pi); math.Abs(d) > 1e-9 {
			t.Fatalf("WrapAngle(%v) = %v is not congruent mod 2pi", a, w)
		}
	}
}

func TestSign(t *testing.T) {
	if Sign(3) != 1 || Sign(-0.1) != -1 || Sign(0) != 0 || Sign(math.NaN()) != 0 {
		t.Error("Sign returned unexpected values")
	}
}
