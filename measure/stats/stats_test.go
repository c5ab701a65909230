package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/dsp/buffer"
	"github.com/cwbudde/algo-daw/dsp/filter/weighting"
	"github.com/cwbudde/algo-daw/internal/testutil"
)

func TestCalculateDC(t *testing.T) {
	t.Parallel()

	c := Calculate(testutil.DC(-0.5, 100))
	require.Equal(t, 100, c.Frames)
	require.InDelta(t, -0.5, c.DC, 1e-12)
	require.InDelta(t, 0.5, c.RMS, 1e-12)
	require.Equal(t, 0.5, c.Peak)
	require.Zero(t, c.PeakPos)
	require.InDelta(t, 0, c.CrestDB(), 1e-9)
	require.Zero(t, c.ZeroCrossings)
	require.Zero(t, c.Clipped)
}

func TestCalculateSine(t *testing.T) {
	t.Parallel()

	// 1 kHz at 48 kHz: whole cycles, so the mean vanishes.
	x := testutil.DeterministicSine(1000, 48000, 1, 4800)
	c := Calculate(x)

	require.InDelta(t, 0, c.DC, 1e-9)
	require.InDelta(t, 1/math.Sqrt2, c.RMS, 1e-6)
	require.InDelta(t, 3.0103, c.CrestDB(), 1e-3)
	require.InDelta(t, 199, c.ZeroCrossings, 5)
}

func TestCalculateSilenceAndClipping(t *testing.T) {
	t.Parallel()

	silent := Calculate(make([]float64, 16))
	require.True(t, math.IsInf(silent.PeakDB(), -1))
	require.True(t, math.IsInf(silent.RMSDB(), -1))
	require.Zero(t, silent.CrestDB())

	c := Calculate([]float64{0.2, 1, -1.5, 0.1})
	require.Equal(t, 2, c.Clipped)
	require.Equal(t, 2, c.PeakPos)
	require.InDelta(t, 20*math.Log10(1.5), c.PeakDB(), 1e-12)

	require.Equal(t, Channel{}, Calculate(nil))
}

func TestAccumulatorMatchesCalculate(t *testing.T) {
	t.Parallel()

	x := testutil.DeterministicNoise(3, 0.8, 1000)

	var a Accumulator
	for i := 0; i < len(x); i += 128 {
		a.Update(x[i:min(i+128, len(x))])
	}
	require.Equal(t, Calculate(x), a.Result())

	a.Reset()
	require.Equal(t, Channel{}, a.Result())
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	const sr = 48000
	tone := testutil.DeterministicSine(1000, sr, 0.5, sr)
	buf := buffer.FromChannels(tone, make([]float64, sr))

	r, err := Analyze(buf, sr, weighting.TypeA)
	require.NoError(t, err)
	require.Len(t, r.Channels, 2)
	require.InDelta(t, 1.0, r.Seconds(), 1e-12)
	require.InDelta(t, 20*math.Log10(0.5), r.PeakDB(), 1e-9)
	require.Zero(t, r.Clipped())

	// A-weighting is unity at 1 kHz; the silent channel halves the power.
	want := 20 * math.Log10(0.5/math.Sqrt2/math.Sqrt2)
	require.InDelta(t, want, r.WeightedRMSDB, 0.1)

	// Analyze must not touch the input.
	require.Equal(t, tone[100], buf.Channel(0)[100])
}

func TestAnalyzeWeightingShapesLowEnd(t *testing.T) {
	t.Parallel()

	const sr = 48000
	buf := buffer.FromChannels(testutil.DeterministicSine(50, sr, 0.5, sr))

	flat, err := Analyze(buf, sr, weighting.TypeZ)
	require.NoError(t, err)
	aw, err := Analyze(buf, sr, weighting.TypeA)
	require.NoError(t, err)

	// A-weighting is about -30 dB at 50 Hz.
	require.InDelta(t, -30.2, aw.WeightedRMSDB-flat.WeightedRMSDB, 1)
	require.InDelta(t, flat.Channels[0].RMSDB(), flat.WeightedRMSDB, 1e-9)
}

func TestAnalyzeRejectsEmpty(t *testing.T) {
	t.Parallel()

	_, err := Analyze(nil, 48000, weighting.TypeA)
	require.ErrorIs(t, err, daw.ErrInvalidParameter)
}
