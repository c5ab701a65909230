package delay

import (
	"math"
	"testing"
)

func TestLineIntegerDelay(t *testing.T) {
	t.Parallel()

	d, err := New(8)
	if err != nil {
		t.Fatal(err)
	}

	in := []float64{1, 2, 3, 4, 5, 6}
	out := make([]float64, len(in))
	for i, x := range in {
		out[i] = d.Tick(x, 3)
	}

	want := []float64{0, 0, 0, 1, 2, 3}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("out = %v, want %v", out, want)
		}
	}
}

func TestLineWrapsAround(t *testing.T) {
	t.Parallel()

	d, _ := New(4)
	for i := 1; i <= 10; i++ {
		d.Write(float64(i))
	}

	if got := d.Read(1); got != 10 {
		t.Fatalf("Read(1) = %v, want 10", got)
	}
	if got := d.Read(4); got != 7 {
		t.Fatalf("Read(4) = %v, want 7", got)
	}
}

func TestLineFractional(t *testing.T) {
	t.Parallel()

	d, _ := New(16)
	for i := 0; i < 16; i++ {
		d.Write(float64(i))
	}

	// History is a ramp, so interpolation is exact.
	if got := d.ReadFractional(3.5); math.Abs(got-12.5) > 1e-12 {
		t.Fatalf("ReadFractional(3.5) = %v, want 12.5", got)
	}
}

func TestLineInvalidSize(t *testing.T) {
	t.Parallel()

	if _, err := New(0); err == nil {
		t.Fatal("expected error for zero size")
	}
}

func TestLineReset(t *testing.T) {
	t.Parallel()

	d, _ := New(4)
	d.Write(1)
	d.Reset()
	if d.Read(1) != 0 {
		t.Fatal("Reset should clear history")
	}
}
