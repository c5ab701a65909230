package effects

import (
	"errors"
	"math"
	"testing"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/internal/testutil"
)

const testSampleRate = 48000.0

func stereo(src []float64) ([]float64, []float64) {
	return append([]float64(nil), src...), append([]float64(nil), src...)
}

func TestEQFlatIsExact(t *testing.T) {
	t.Parallel()

	eq, err := NewEQ(testSampleRate)
	if err != nil {
		t.Fatal(err)
	}
	if eq.Sections() != 0 {
		t.Fatalf("flat EQ has %d sections, want 0", eq.Sections())
	}

	src := testutil.DeterministicNoise(1, 0.5, 1024)
	l, r := stereo(src)
	eq.Process(l, r)

	testutil.RequireSliceNearlyEqual(t, l, src, 0)
	testutil.RequireSliceNearlyEqual(t, r, src, 0)
}

func TestEQBandBoost(t *testing.T) {
	t.Parallel()

	eq, _ := NewEQ(testSampleRate)
	bands := DefaultBands()
	bands[2].GainDB = 6
	if err := eq.SetBands(bands); err != nil {
		t.Fatal(err)
	}

	if eq.Sections() != 1 {
		t.Fatalf("Sections() = %d, want 1", eq.Sections())
	}
	if got := eq.MagnitudeDB(1000); math.Abs(got-6) > 1e-6 {
		t.Fatalf("gain at 1 kHz = %v dB, want 6", got)
	}
}

func TestEQRejectsOutOfRange(t *testing.T) {
	t.Parallel()

	eq, _ := NewEQ(testSampleRate)
	bands := DefaultBands()
	bands[1].GainDB = 40
	if err := eq.SetBands(bands); !errors.Is(err, daw.ErrInvalidParameter) {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}
}

func TestEQHighPassEnabled(t *testing.T) {
	t.Parallel()

	eq, _ := NewEQ(testSampleRate)
	bands := DefaultBands()
	bands[0].Enabled = true
	bands[0].Freq = 200
	bands[0].Order = 4
	_ = eq.SetBands(bands)

	if eq.Sections() != 2 {
		t.Fatalf("Sections() = %d, want 2", eq.Sections())
	}
	if got := eq.MagnitudeDB(20); got > -60 {
		t.Fatalf("4th order HP at 20 Hz = %v dB, want < -60", got)
	}
}

func TestCompressorStaticCurve(t *testing.T) {
	t.Parallel()

	c, err := NewCompressor(testSampleRate)
	if err != nil {
		t.Fatal(err)
	}
	_ = c.SetKnee(0)
	_ = c.SetRatio(4)
	_ = c.SetThreshold(-20)

	// 12 dB above threshold at 4:1 comes out 3 dB above.
	in := math.Pow(10, -8.0/20)
	out := 20 * math.Log10(c.OutputLevel(in))
	if math.Abs(out-(-17)) > 1e-9 {
		t.Fatalf("output = %v dB, want -17", out)
	}

	below := math.Pow(10, -30.0/20)
	if got := c.OutputLevel(below); math.Abs(got-below) > 1e-15 {
		t.Fatalf("below threshold should be unity, got %v want %v", got, below)
	}
}

func TestCompressorStereoLinked(t *testing.T) {
	t.Parallel()

	c, _ := NewCompressor(testSampleRate)
	n := 4800
	l := testutil.DC(0.9, n)
	r := testutil.DC(0.1, n)
	c.Process(l, r)

	// Both channels see the same gain, so the ratio is preserved.
	if ratio := l[n-1] / r[n-1]; math.Abs(ratio-9) > 1e-9 {
		t.Fatalf("channel ratio = %v, want 9", ratio)
	}
	if c.GainReduction() >= 1 {
		t.Fatal("expected gain reduction on a loud signal")
	}
}

func TestCompressorSetterValidation(t *testing.T) {
	t.Parallel()

	c, _ := NewCompressor(testSampleRate)
	for name, err := range map[string]error{
		"ratio":     c.SetRatio(0.5),
		"threshold": c.SetThreshold(6),
		"knee":      c.SetKnee(30),
		"attack":    c.SetAttack(0),
		"release":   c.SetRelease(math.NaN()),
		"makeup":    c.SetMakeupGain(-1),
	} {
		if !errors.Is(err, daw.ErrInvalidParameter) {
			t.Fatalf("%s: err = %v, want ErrInvalidParameter", name, err)
		}
	}

	if _, err := NewCompressor(0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

func TestLimiterNeverExceedsCeiling(t *testing.T) {
	t.Parallel()

	lim, _ := NewLimiter(testSampleRate)
	src := testutil.DeterministicNoise(7, 3, 8192)
	l, r := stereo(src)
	r[100] = -12
	lim.Process(l, r)

	ceil := lim.CeilingLinear()
	for i := range l {
		if math.Abs(l[i]) > ceil || math.Abs(r[i]) > ceil {
			t.Fatalf("sample %d exceeds ceiling: %v / %v > %v", i, l[i], r[i], ceil)
		}
	}
}

func TestLimiterTransparentBelowCeiling(t *testing.T) {
	t.Parallel()

	lim, _ := NewLimiter(testSampleRate)
	src := testutil.DeterministicSine(440, testSampleRate, 0.5, 2048)
	l, r := stereo(src)
	lim.Process(l, r)

	testutil.RequireSliceNearlyEqual(t, l, src, 0)
	testutil.RequireSliceNearlyEqual(t, r, src, 0)
}

func TestLimiterRecovers(t *testing.T) {
	t.Parallel()

	lim, _ := NewLimiter(testSampleRate)
	_ = lim.SetRelease(5)

	l := []float64{4}
	r := []float64{0}
	lim.Process(l, r)
	if lim.GainReduction() >= 1 {
		t.Fatal("expected gain reduction after an over")
	}

	quiet := testutil.DC(0.1, 48000)
	ql, qr := stereo(quiet)
	lim.Process(ql, qr)
	if ql[len(ql)-1] != 0.1 {
		t.Fatalf("gain did not recover to unity: %v", ql[len(ql)-1])
	}
}

func TestLimiterCeilingValidation(t *testing.T) {
	t.Parallel()

	lim, _ := NewLimiter(testSampleRate)
	if err := lim.SetCeiling(3); !errors.Is(err, daw.ErrInvalidParameter) {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}
	if err := lim.SetCeiling(-1); err != nil {
		t.Fatal(err)
	}
	if math.Abs(lim.CeilingLinear()-math.Pow(10, -1.0/20)) > 1e-15 {
		t.Fatalf("CeilingLinear() = %v", lim.CeilingLinear())
	}
}

func TestDelayImpulse(t *testing.T) {
	t.Parallel()

	d, _ := NewDelay(1000)
	_ = d.SetTime(0.01)
	_ = d.SetFeedback(0.5)

	l := testutil.Impulse(40, 0)
	r := make([]float64, 40)
	d.Process(l, r)

	if l[10] != 1 || l[20] != 0.5 || l[30] != 0.25 {
		t.Fatalf("echoes = %v, %v, %v; want 1, 0.5, 0.25", l[10], l[20], l[30])
	}
	if l[0] != 0 {
		t.Fatal("delay output should not contain the dry signal")
	}
	for i, v := range r {
		if v != 0 {
			t.Fatalf("right[%d] = %v, want silence", i, v)
		}
	}
}

func TestDelaySync(t *testing.T) {
	t.Parallel()

	tests := []struct {
		div  SyncDivision
		want float64
	}{
		{div: SyncQuarter, want: 0.5},
		{div: SyncEighth, want: 0.25},
		{div: SyncDottedEighth, want: 0.375},
		{div: SyncSixteenth, want: 0.125},
		{div: SyncHalf, want: 1},
		{div: SyncBar, want: 2},
	}

	for _, tt := range tests {
		if got := SyncedTime(tt.div, 120, 4); math.Abs(got-tt.want) > 1e-12 {
			t.Fatalf("%s at 120 BPM = %v, want %v", SyncDivisionNames[tt.div], got, tt.want)
		}
	}

	if got := SyncedTime(SyncBar, 30, 4); got != maxDelayTimeSeconds {
		t.Fatalf("long bar should clamp to %v, got %v", maxDelayTimeSeconds, got)
	}
}

func TestReverbTailAndReset(t *testing.T) {
	t.Parallel()

	rv, err := NewReverb(testSampleRate)
	if err != nil {
		t.Fatal(err)
	}
	_ = rv.SetPreDelay(0.01)

	n := 24000
	l := testutil.Impulse(n, 0)
	r := testutil.Impulse(n, 0)
	rv.Process(l, r)
	testutil.RequireFinite(t, l)
	testutil.RequireFinite(t, r)

	preDelay := int(0.01 * testSampleRate)
	for i := 0; i < preDelay; i++ {
		if l[i] != 0 {
			t.Fatalf("output before pre-delay at %d: %v", i, l[i])
		}
	}

	energy := 0.0
	for _, v := range l[preDelay:] {
		energy += v * v
	}
	if energy == 0 {
		t.Fatal("expected a reverb tail")
	}

	rv.Reset()
	silent := make([]float64, 256)
	silentR := make([]float64, 256)
	rv.Process(silent, silentR)
	for i, v := range silent {
		if v != 0 {
			t.Fatalf("output after Reset at %d: %v", i, v)
		}
	}
}

func TestReverbLongerDecayRingsLonger(t *testing.T) {
	t.Parallel()

	tail := func(decay float64) float64 {
		rv, _ := NewReverb(testSampleRate)
		_ = rv.SetDecay(decay)
		_ = rv.SetPreDelay(0)
		n := 48000
		l := testutil.Impulse(n, 0)
		r := testutil.Impulse(n, 0)
		rv.Process(l, r)

		e := 0.0
		for _, v := range l[n/2:] {
			e += v * v
		}
		return e
	}

	if short, long := tail(0.3), tail(5); long <= short {
		t.Fatalf("late energy: decay 5 s = %v, decay 0.3 s = %v", long, short)
	}
}
