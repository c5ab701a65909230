package biquad

import (
	"math"
	"testing"
)

func TestSectionIdentityPassesThrough(t *testing.T) {
	t.Parallel()

	s := NewSection(Identity)
	in := []float64{1, -0.5, 0.25, 0, 0.75}
	buf := append([]float64(nil), in...)
	s.ProcessBlock(buf)

	for i := range in {
		if buf[i] != in[i] {
			t.Fatalf("[%d] = %v, want %v", i, buf[i], in[i])
		}
	}
}

func TestSectionBlockMatchesSample(t *testing.T) {
	t.Parallel()

	c := Coefficients{B0: 0.2, B1: 0.4, B2: 0.2, A1: -0.5, A2: 0.25}
	a := NewSection(c)
	b := NewSection(c)

	buf := make([]float64, 64)
	for i := range buf {
		buf[i] = math.Sin(float64(i) * 0.3)
	}

	want := make([]float64, len(buf))
	for i, x := range buf {
		want[i] = a.ProcessSample(x)
	}

	b.ProcessBlock(buf)
	for i := range buf {
		if math.Abs(buf[i]-want[i]) > 1e-15 {
			t.Fatalf("[%d] block %v != sample %v", i, buf[i], want[i])
		}
	}
}

func TestSectionDifferenceEquation(t *testing.T) {
	t.Parallel()

	// One-pole feedback y[n] = x[n] + 0.5*y[n-1] has impulse response 0.5^n.
	s := NewSection(Coefficients{B0: 1, A1: -0.5})
	for n := 0; n < 8; n++ {
		x := 0.0
		if n == 0 {
			x = 1
		}
		got := s.ProcessSample(x)
		if want := math.Pow(0.5, float64(n)); math.Abs(got-want) > 1e-15 {
			t.Fatalf("h[%d] = %v, want %v", n, got, want)
		}
	}
}

func TestSectionReset(t *testing.T) {
	t.Parallel()

	s := NewSection(Coefficients{B0: 1, A1: -0.9})
	s.ProcessSample(1)
	if s.State() == [2]float64{} {
		t.Fatal("state should be non-zero after processing")
	}

	s.Reset()
	if s.State() != [2]float64{} {
		t.Fatalf("State() = %v after Reset", s.State())
	}
}
