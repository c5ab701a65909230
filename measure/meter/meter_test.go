package meter

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-daw/internal/testutil"
)

func TestMeterSilenceIsNegInf(t *testing.T) {
	t.Parallel()

	m := New(WithSampleRate(1000))
	r := m.Latest()

	for ch := range 2 {
		if !math.IsInf(r.RMSDB[ch], -1) || !math.IsInf(r.HeldDB[ch], -1) {
			t.Fatalf("ch %d: want -Inf, got rms=%v held=%v", ch, r.RMSDB[ch], r.HeldDB[ch])
		}
	}
}

func TestMeterRMSOfFullWindowSine(t *testing.T) {
	t.Parallel()

	const sr = 48000.0

	m := New(WithSampleRate(sr), WithRMSWindow(0.1))
	sig := testutil.DeterministicSine(1000, sr, 1, int(sr))

	for start := 0; start < len(sig); start += 512 {
		end := min(start+512, len(sig))
		m.Process(sig[start:end], sig[start:end])
	}

	want := 1 / math.Sqrt2
	for ch := range 2 {
		if got := m.RMS(ch); math.Abs(got-want) > 1e-3 {
			t.Fatalf("ch %d rms: got %v want %v", ch, got, want)
		}
	}

	r := m.Latest()
	if math.Abs(r.RMSDB[0]-(-3.0103)) > 0.05 {
		t.Fatalf("rms dB: got %v", r.RMSDB[0])
	}
}

func TestMeterPeakHoldThenFall(t *testing.T) {
	t.Parallel()

	const sr = 1000.0

	m := New(WithSampleRate(sr), WithPeakBallistics(0.1, 20))
	m.Process([]float64{0.5}, []float64{0.25})

	silence := make([]float64, 50)
	m.Process(silence, silence)
	if got := m.Held(0); got != 0.5 {
		t.Fatalf("held during hold time: got %v", got)
	}

	// 50 frames of hold left, then 1 s of falling at 20 dB/s.
	long := make([]float64, 1050)
	m.Process(long, long)

	want := 0.5 * math.Pow(10, -1.0)
	if got := m.Held(0); math.Abs(got-want) > 1e-9 {
		t.Fatalf("held after fall: got %v want %v", got, want)
	}
}

func TestMeterClipFlagAndReset(t *testing.T) {
	t.Parallel()

	m := New(WithSampleRate(1000), WithPublishInterval(0.001))
	m.Process([]float64{1.2}, []float64{0})

	r := m.Latest()
	if !r.Clipped {
		t.Fatal("expected clip flag")
	}
	if r.PeakDB[0] <= 0 {
		t.Fatalf("peak dB: got %v", r.PeakDB[0])
	}

	m.Reset()
	if m.Latest().Clipped {
		t.Fatal("clip flag survived Reset")
	}
}

func TestMeterPublishCadence(t *testing.T) {
	t.Parallel()

	m := New(WithSampleRate(1000), WithPublishInterval(0.05))
	block := testutil.DC(0.5, 10)

	for range 4 {
		m.Process(block, block)
	}
	if got := m.Latest().Frame; got != 0 {
		t.Fatalf("published early at frame %d", got)
	}

	m.Process(block, block)
	if got := m.Latest().Frame; got != 50 {
		t.Fatalf("published frame: got %d want 50", got)
	}
}
