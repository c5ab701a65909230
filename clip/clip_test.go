package clip

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/dsp/buffer"
	"github.com/cwbudde/algo-daw/internal/testutil"
)

func monoSource(t *testing.T, sampleRate float64, samples []float64) *AudioSource {
	t.Helper()

	src, err := NewAudioSource("", sampleRate, buffer.FromChannels(samples))
	require.NoError(t, err)

	return src
}

func ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}

	return out
}

func TestNewValidatesBounds(t *testing.T) {
	t.Parallel()

	src := monoSource(t, 1000, make([]float64, 1000)) // 1 s

	tests := []struct {
		name     string
		start    float64
		offset   float64
		duration float64
		wantErr  error
	}{
		{name: "whole source", duration: 1},
		{name: "tail", offset: 0.5, duration: 0.5},
		{name: "past end", offset: 0.5, duration: 0.6, wantErr: daw.ErrInvalidRange},
		{name: "zero duration", duration: 0, wantErr: daw.ErrInvalidRange},
		{name: "negative start", start: -1, duration: 0.5, wantErr: daw.ErrInvalidRange},
		{name: "negative offset", offset: -0.1, duration: 0.5, wantErr: daw.ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := New(src, tt.start, tt.offset, tt.duration)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			require.NotEmpty(t, c.ID)
			require.Equal(t, 1.0, c.Rate)
			require.Equal(t, 1.0, c.Gain)
		})
	}
}

func TestRateAwareBounds(t *testing.T) {
	t.Parallel()

	src := monoSource(t, 1000, make([]float64, 1000))
	c, err := New(src, 0, 0, 0.6)
	require.NoError(t, err)

	_, err = c.WithRate(2)
	require.ErrorIs(t, err, daw.ErrInvalidRange)

	half, err := c.WithRate(1.5)
	require.NoError(t, err)
	require.InDelta(t, 0.9, half.SourceSpan(), 1e-12)
}

func TestTrim(t *testing.T) {
	t.Parallel()

	src := monoSource(t, 1000, make([]float64, 1000))
	c, err := New(src, 2, 0, 1)
	require.NoError(t, err)

	trimmed, err := c.Trim(0.25, 0.5)
	require.NoError(t, err)
	require.Equal(t, c.ID, trimmed.ID)
	require.Equal(t, 0.25, trimmed.Offset)
	require.Equal(t, 2.5, trimmed.End())

	_, err = c.Trim(0.75, 0.5)
	require.ErrorIs(t, err, daw.ErrInvalidRange)
	require.Equal(t, 1.0, c.Duration, "failed trim must not change the original")
}

func TestSplit(t *testing.T) {
	t.Parallel()

	src := monoSource(t, 1000, make([]float64, 2000))
	c, err := New(src, 1, 0.5, 1)
	require.NoError(t, err)
	c.FadeIn = Fade{Duration: 0.1}
	c.FadeOut = Fade{Duration: 0.2, Shape: ShapeSCurve}

	left, right, err := c.Split(1.25)
	require.NoError(t, err)

	require.Equal(t, c.ID, left.ID)
	require.NotEqual(t, c.ID, right.ID)
	require.Equal(t, 0.25, left.Duration)
	require.Equal(t, 1.25, right.Start)
	require.Equal(t, 0.75, right.Offset)
	require.Equal(t, 0.75, right.Duration)
	require.Equal(t, Fade{}, left.FadeOut)
	require.Equal(t, Fade{}, right.FadeIn)
	require.Equal(t, c.FadeOut, right.FadeOut)

	for _, at := range []float64{2, 0.5, 3} {
		_, _, err := c.Split(at)
		require.ErrorIs(t, err, daw.ErrInvalidRange, "at=%v", at)
	}

	// at the start the whole clip goes right
	left, right, err = c.Split(1)
	require.NoError(t, err)
	require.Empty(t, left.ID)
	require.Zero(t, left.Duration)
	require.Equal(t, c, right)
}

func TestSplitRenderEqualsWhole(t *testing.T) {
	t.Parallel()

	const sr = 1000.0

	src := monoSource(t, sr, testutil.DeterministicNoise(3, 0.5, 2000))
	c, err := New(src, 0.1, 0.2, 1.2)
	require.NoError(t, err)

	left, right, err := c.Split(0.7)
	require.NoError(t, err)

	wholeL, wholeR := make([]float64, 1500), make([]float64, 1500)
	c.Render(wholeL, wholeR, 0, sr, Instrument{})

	partL, partR := make([]float64, 1500), make([]float64, 1500)
	left.Render(partL, partR, 0, sr, Instrument{})
	right.Render(partL, partR, 0, sr, Instrument{})

	testutil.RequireSliceNearlyEqual(t, partL, wholeL, 0)
	testutil.RequireSliceNearlyEqual(t, partR, wholeR, 0)
}

func TestMoveCloneOverlaps(t *testing.T) {
	t.Parallel()

	src := monoSource(t, 1000, make([]float64, 1000))
	a, err := New(src, 0, 0, 1)
	require.NoError(t, err)

	b, err := a.Move(0.5)
	require.NoError(t, err)
	require.True(t, a.Overlaps(b))

	b, err = a.Move(1)
	require.NoError(t, err)
	require.False(t, a.Overlaps(b), "touching clips do not overlap")

	_, err = a.Move(math.Inf(1))
	require.ErrorIs(t, err, daw.ErrInvalidRange)

	c := a.Clone()
	require.NotEqual(t, a.ID, c.ID)
	require.Same(t, a.Source, c.Source)
}

func TestFadeShapes(t *testing.T) {
	t.Parallel()

	for _, s := range []Shape{ShapeLinear, ShapeExponential, ShapeLogarithmic, ShapeSCurve} {
		require.Equal(t, 0.0, s.Gain(0), s.String())
		require.Equal(t, 1.0, s.Gain(1), s.String())
		require.Equal(t, 1.0, s.Gain(2), s.String())

		prev := 0.0
		for i := 1; i <= 10; i++ {
			g := s.Gain(float64(i) / 10)
			require.GreaterOrEqual(t, g, prev, "%s must be monotonic", s)
			prev = g
		}
	}

	require.InDelta(t, 0.25, ShapeExponential.Gain(0.5), 1e-12)
	require.InDelta(t, 0.75, ShapeLogarithmic.Gain(0.5), 1e-12)
	require.InDelta(t, 0.5, ShapeSCurve.Gain(0.5), 1e-12)

	s, err := ParseShape("s-curve")
	require.NoError(t, err)
	require.Equal(t, ShapeSCurve, s)

	_, err = ParseShape("cosine")
	require.ErrorIs(t, err, daw.ErrInvalidParameter)
}

func TestFadesClampedToDuration(t *testing.T) {
	t.Parallel()

	src := monoSource(t, 1000, make([]float64, 1000))
	c, err := New(src, 0, 0, 1)
	require.NoError(t, err)

	c, err = c.WithFades(Fade{Duration: 1.5}, Fade{Duration: 0.5})
	require.NoError(t, err)

	in, out := c.Fades()
	require.InDelta(t, 0.75, in.Duration, 1e-12)
	require.InDelta(t, 0.25, out.Duration, 1e-12)

	_, err = c.WithFades(Fade{Duration: -1}, Fade{})
	require.ErrorIs(t, err, daw.ErrInvalidParameter)
}

func TestNewNoteSequenceValidation(t *testing.T) {
	t.Parallel()

	_, err := NewNoteSequence("", []Note{{Pitch: 128, Velocity: 100, Length: 1}}, 1)
	require.ErrorIs(t, err, daw.ErrInvalidParameter)

	_, err = NewNoteSequence("", []Note{{Pitch: 60, Velocity: 0, Length: 1}}, 1)
	require.ErrorIs(t, err, daw.ErrInvalidParameter)

	_, err = NewNoteSequence("", nil, 0)
	require.ErrorIs(t, err, daw.ErrInvalidParameter)

	seq, err := NewNoteSequence("seq", []Note{{Pitch: 69, Velocity: 127, Length: 0.5}}, 1)
	require.NoError(t, err)
	require.Equal(t, "seq", seq.SourceID())
	require.InDelta(t, 440, seq.Notes()[0].Frequency(), 1e-9)
}

func TestNewAudioSourceValidation(t *testing.T) {
	t.Parallel()

	_, err := NewAudioSource("", 0, buffer.New(1, 10))
	require.ErrorIs(t, err, daw.ErrInvalidParameter)

	_, err = NewAudioSource("", 48000, buffer.New(3, 10))
	require.ErrorIs(t, err, daw.ErrInvalidParameter)

	src, err := NewAudioSource("", 100, buffer.New(2, 50))
	require.NoError(t, err)
	require.NotEmpty(t, src.SourceID())
	require.InDelta(t, 0.5, src.Length(), 1e-12)
}

func TestInstrumentValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultInstrument().Validate())
	require.ErrorIs(t, Instrument{Gain: -1}.Validate(), daw.ErrInvalidParameter)
	require.ErrorIs(t, Instrument{Waveform: 9}.Validate(), daw.ErrInvalidParameter)

	w, err := ParseWaveform("saw")
	require.NoError(t, err)
	require.Equal(t, WaveSaw, w)
}
