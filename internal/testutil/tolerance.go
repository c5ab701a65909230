package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-daw/dsp/buffer"
)

// RequireSliceNearlyEqual fails at the first sample further than eps from
// want, or on a length mismatch.
func RequireSliceNearlyEqual(t testing.TB, got, want []float64, eps float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range got {
		if math.Abs(got[i]-want[i]) > eps {
			require.Failf(t, "samples differ",
				"index %d: got %v, want %v (eps %v)", i, got[i], want[i], eps)
		}
	}
}

// RequireFinite fails on the first NaN or Inf sample.
func RequireFinite(t testing.TB, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			require.Failf(t, "non-finite sample", "index %d: %v", i, v)
		}
	}
}

// RequireBufferNearlyEqual compares two buffers channel by channel.
func RequireBufferNearlyEqual(t testing.TB, got, want *buffer.Buffer, eps float64) {
	t.Helper()
	require.Equal(t, want.Channels(), got.Channels(), "channel count")
	require.Equal(t, want.Frames(), got.Frames(), "frame count")
	for ch := 0; ch < want.Channels(); ch++ {
		RequireSliceNearlyEqual(t, got.Channel(ch), want.Channel(ch), eps)
	}
}

// RequireSilent fails if any sample of b exceeds eps in magnitude.
func RequireSilent(t testing.TB, b *buffer.Buffer, eps float64) {
	t.Helper()
	require.LessOrEqual(t, b.Peak(), eps, "expected silence")
}
