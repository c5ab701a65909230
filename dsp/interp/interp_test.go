package interp

import (
	"math"
	"testing"
)

func TestHermite4IdentityOnLinearRamp(t *testing.T) {
	t.Parallel()

	for _, frac := range []float64{0, 0.1, 0.25, 0.5, 0.9} {
		got := Hermite4(frac, -1, 0, 1, 2)
		if math.Abs(got-frac) > 1e-12 {
			t.Fatalf("Hermite4(%v) = %v, want %v", frac, got, frac)
		}
	}
}

func TestHermite4Endpoints(t *testing.T) {
	t.Parallel()

	if got := Hermite4(0, 3, 0.7, -2, 9); got != 0.7 {
		t.Fatalf("t=0 should return x0 exactly, got %v", got)
	}
	if got := Hermite4(1, 3, 0.7, -2, 9); math.Abs(got+2) > 1e-12 {
		t.Fatalf("t=1 should return x1, got %v", got)
	}
}

func TestLinear2(t *testing.T) {
	t.Parallel()

	if got := Linear2(0.25, 2, 4); got != 2.5 {
		t.Fatalf("Linear2 = %v, want 2.5", got)
	}
}

func TestHermiteAt(t *testing.T) {
	t.Parallel()

	src := []float64{0, 1, 2, 3, 4, 5}
	if got := HermiteAt(src, 3); got != 3 {
		t.Fatalf("integer index = %v, want 3", got)
	}
	if got := HermiteAt(src, 2.5); math.Abs(got-2.5) > 1e-12 {
		t.Fatalf("HermiteAt(2.5) = %v, want 2.5", got)
	}
	if got := HermiteAt(src, 10); got != 0 {
		t.Fatalf("out of range = %v, want 0", got)
	}
	if got := HermiteAt(src, -2); got != 0 {
		t.Fatalf("negative index = %v, want 0", got)
	}
}
