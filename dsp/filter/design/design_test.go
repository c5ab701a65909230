package design

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-daw/dsp/filter/biquad"
)

const sr = 48000.0

func TestZeroGainIsIdentity(t *testing.T) {
	t.Parallel()

	for name, c := range map[string]biquad.Coefficients{
		"peak":      Peak(1000, 0, 1, sr),
		"lowShelf":  LowShelf(100, 0, 0.7, sr),
		"highShelf": HighShelf(8000, 0, 0.7, sr),
	} {
		if !c.IsIdentity() {
			t.Fatalf("%s with 0 dB = %+v, want identity", name, c)
		}
	}
}

func TestInvalidFrequencyIsIdentity(t *testing.T) {
	t.Parallel()

	if !Lowpass(30000, 0.7, sr).IsIdentity() {
		t.Fatal("lowpass above Nyquist should be identity")
	}
	if !Peak(-5, 6, 1, sr).IsIdentity() {
		t.Fatal("negative frequency should be identity")
	}
}

func TestPeakGainAtCentre(t *testing.T) {
	t.Parallel()

	c := Peak(1000, 6, 1, sr)
	if got := c.MagnitudeDB(1000, sr); math.Abs(got-6) > 1e-6 {
		t.Fatalf("peak gain at centre = %v dB, want 6", got)
	}
	if got := c.MagnitudeDB(20, sr); math.Abs(got) > 0.1 {
		t.Fatalf("peak gain far below centre = %v dB, want ~0", got)
	}
}

func TestShelves(t *testing.T) {
	t.Parallel()

	low := LowShelf(200, -6, defaultQ, sr)
	if got := low.MagnitudeDB(10, sr); math.Abs(got+6) > 0.05 {
		t.Fatalf("low shelf DC gain = %v dB, want -6", got)
	}
	if got := low.MagnitudeDB(15000, sr); math.Abs(got) > 0.05 {
		t.Fatalf("low shelf HF gain = %v dB, want 0", got)
	}

	high := HighShelf(4000, 3, defaultQ, sr)
	if got := high.MagnitudeDB(20000, sr); math.Abs(got-3) > 0.1 {
		t.Fatalf("high shelf HF gain = %v dB, want 3", got)
	}
}

func TestPassFilters(t *testing.T) {
	t.Parallel()

	lp := Lowpass(1000, defaultQ, sr)
	if got := lp.MagnitudeDB(1000, sr); math.Abs(got+3.0103) > 0.01 {
		t.Fatalf("lowpass at cutoff = %v dB, want -3", got)
	}

	hp := Highpass(1000, defaultQ, sr)
	if got := hp.MagnitudeDB(20, sr); got > -40 {
		t.Fatalf("highpass far below cutoff = %v dB, want < -40", got)
	}
}

func TestButterworthCascade(t *testing.T) {
	t.Parallel()

	tests := []struct {
		order    int
		sections int
	}{
		{order: 0, sections: 0},
		{order: 2, sections: 1},
		{order: 3, sections: 2},
		{order: 4, sections: 2},
	}

	for _, tt := range tests {
		if got := len(ButterworthHP(100, tt.order, sr)); got != tt.sections {
			t.Fatalf("order %d: %d sections, want %d", tt.order, got, tt.sections)
		}
	}

	c := biquad.NewChain(ButterworthLP(1000, 4, sr))
	if got := c.MagnitudeDB(1000, sr); math.Abs(got+3.0103) > 0.01 {
		t.Fatalf("4th order lowpass at cutoff = %v dB, want -3", got)
	}
}
