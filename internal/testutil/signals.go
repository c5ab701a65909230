// Package testutil holds signal fixtures and assertions shared by the
// engine's package tests.
package testutil

import (
	"math"
	"math/rand"

	"github.com/cwbudde/algo-daw/dsp/buffer"
)

// DeterministicSine returns length samples of a sine starting at phase 0.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	w := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(w*float64(i))
	}
	return out
}

// DeterministicNoise returns uniform noise in [-amplitude, amplitude) drawn
// from a seeded source, so a seed always yields the same take.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, length)
	for i := range out {
		out[i] = amplitude * (2*rng.Float64() - 1)
	}
	return out
}

// Impulse returns a unit click at pos. A pos outside the slice gives silence.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// DC returns a constant signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Ones is DC(1, n).
func Ones(n int) []float64 { return DC(1, n) }

// Stereo builds a two-channel buffer from copies of left and right.
func Stereo(left, right []float64) *buffer.Buffer {
	l := append([]float64(nil), left...)
	r := append([]float64(nil), right...)
	return buffer.FromChannels(l, r)
}

// DualMono builds a stereo buffer carrying the same signal on both sides.
func DualMono(x []float64) *buffer.Buffer { return Stereo(x, x) }
