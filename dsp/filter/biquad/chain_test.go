package biquad

import (
	"math"
	"testing"
)

func TestChainDropsIdentitySections(t *testing.T) {
	t.Parallel()

	c := NewChain([]Coefficients{Identity, {B0: 0.5}, Identity}, WithChannels(2))
	if c.NumSections() != 1 {
		t.Fatalf("NumSections() = %d, want 1", c.NumSections())
	}
	if c.Channels() != 2 {
		t.Fatalf("Channels() = %d, want 2", c.Channels())
	}
}

func TestChainEmptyIsExact(t *testing.T) {
	t.Parallel()

	c := NewChain(nil)
	buf := []float64{0.1, 0.2, -0.3}
	c.ProcessBlock(0, buf)

	want := []float64{0.1, 0.2, -0.3}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("[%d] = %v, want %v", i, buf[i], want[i])
		}
	}
}

func TestChainChannelsHaveIndependentState(t *testing.T) {
	t.Parallel()

	c := NewChain([]Coefficients{{B0: 1, A1: -0.5}}, WithChannels(2))

	left := []float64{1, 0, 0}
	right := []float64{0, 0, 0}
	c.ProcessBlock(0, left)
	c.ProcessBlock(1, right)

	if left[1] != 0.5 {
		t.Fatalf("left[1] = %v, want 0.5", left[1])
	}
	for i, v := range right {
		if v != 0 {
			t.Fatalf("right[%d] = %v, want 0 (state leaked across channels)", i, v)
		}
	}
}

func TestChainGain(t *testing.T) {
	t.Parallel()

	c := NewChain(nil, WithGain(2))
	if got := c.ProcessSample(0, 0.25); got != 0.5 {
		t.Fatalf("ProcessSample = %v, want 0.5", got)
	}
	if got := c.MagnitudeDB(1000, 48000); math.Abs(got-20*math.Log10(2)) > 1e-12 {
		t.Fatalf("MagnitudeDB = %v", got)
	}
}

func TestChainUpdateKeepsState(t *testing.T) {
	t.Parallel()

	c := NewChain([]Coefficients{{B0: 1, A1: -0.5}})
	c.ProcessSample(0, 1)
	before := c.Section(0, 0).State()

	c.UpdateCoefficients([]Coefficients{{B0: 1, A1: -0.4}}, 1)
	if c.Section(0, 0).State() != before {
		t.Fatal("state should survive a same-size coefficient update")
	}

	c.UpdateCoefficients([]Coefficients{{B0: 1, A1: -0.1}, {B0: 0.5}}, 1)
	if c.Section(0, 0).State() != [2]float64{} {
		t.Fatal("state should reset when the section count changes")
	}
}
