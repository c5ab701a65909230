// Package weighting builds IEC 61672 frequency-weighting filters for level
// measurement. A-weighting approximates the ear at low listening levels,
// C-weighting at high levels, and Z is flat. Every curve is normalized to
// 0 dB at 1 kHz.
package weighting

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/dsp/filter/biquad"
)

// Analog prototype pole frequencies in Hz.
const (
	poleLow  = 20.598997
	poleA1   = 107.65265
	poleA2   = 737.86223
	poleHigh = 12194.217

	referenceHz = 1000.0
)

// Type is a weighting curve.
type Type int

// Weighting curves.
const (
	TypeA Type = iota
	TypeC
	TypeZ
)

var typeNames = []string{"A", "C", "Z"}

func (t Type) String() string {
	if t >= TypeA && t <= TypeZ {
		return typeNames[t]
	}

	return fmt.Sprintf("Type(%d)", int(t))
}

// Parse returns the curve named name, case-insensitively.
func Parse(name string) (Type, error) {
	for i, n := range typeNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Type(i), nil
		}
	}

	return 0, fmt.Errorf("weighting: unknown curve %q: %w", name, daw.ErrInvalidParameter)
}

// New returns a cascade implementing curve t at sampleRate with
// independent state for the given number of channels.
func New(t Type, sampleRate float64, channels int) (*biquad.Chain, error) {
	if !(sampleRate > 2*referenceHz) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("weighting: sample rate %g: %w", sampleRate, daw.ErrInvalidParameter)
	}

	var coeffs []biquad.Coefficients

	switch t {
	case TypeA:
		// s^4 over the double low pole, both A poles and the double high pole.
		coeffs = []biquad.Coefficients{
			highPass2(poleLow, sampleRate),
			highPass1(poleA1, sampleRate),
			highPass1(poleA2, sampleRate),
			lowPass1(poleHigh, sampleRate),
			lowPass1(poleHigh, sampleRate),
		}
	case TypeC:
		coeffs = []biquad.Coefficients{
			highPass2(poleLow, sampleRate),
			lowPass1(poleHigh, sampleRate),
			lowPass1(poleHigh, sampleRate),
		}
	case TypeZ:
		return biquad.NewChain(nil, biquad.WithChannels(channels)), nil
	default:
		return nil, fmt.Errorf("weighting: unknown curve %d: %w", int(t), daw.ErrInvalidParameter)
	}

	h := complex(1, 0)
	for _, c := range coeffs {
		h *= c.Response(referenceHz, sampleRate)
	}

	return biquad.NewChain(coeffs,
		biquad.WithGain(1/cmplx.Abs(h)),
		biquad.WithChannels(channels),
	), nil
}

// Bilinear-transformed sections with prewarped k = tan(pi*f/sr).

func lowPass1(f, sr float64) biquad.Coefficients {
	k := math.Tan(math.Pi * f / sr)
	d := 1 + k

	return biquad.Coefficients{B0: k / d, B1: k / d, A1: (k - 1) / d}
}

func highPass1(f, sr float64) biquad.Coefficients {
	k := math.Tan(math.Pi * f / sr)
	d := 1 + k

	return biquad.Coefficients{B0: 1 / d, B1: -1 / d, A1: (k - 1) / d}
}

// highPass2 is a double real pole at f with two zeros at DC.
func highPass2(f, sr float64) biquad.Coefficients {
	k := math.Tan(math.Pi * f / sr)
	d := (1 + k) * (1 + k)

	return biquad.Coefficients{
		B0: 1 / d,
		B1: -2 / d,
		B2: 1 / d,
		A1: 2 * (k*k - 1) / d,
		A2: (1 - k) * (1 - k) / d,
	}
}
