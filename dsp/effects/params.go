package effects

import (
	"fmt"
	"math"

	daw "github.com/cwbudde/algo-daw"
)

func checkRange(name string, v, lo, hi float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < lo || v > hi {
		return fmt.Errorf("effects: %s must be in [%g, %g]: %g: %w", name, lo, hi, v, daw.ErrInvalidParameter)
	}

	return nil
}

func checkSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("effects: sample rate must be positive and finite: %g: %w", sampleRate, daw.ErrInvalidParameter)
	}

	return nil
}

// timeCoeff returns the one-pole smoothing coefficient for a time constant in ms.
func timeCoeff(ms, sampleRate float64) float64 {
	if ms <= 0 {
		return 0
	}

	return math.Exp(-math.Ln2 / (ms * 0.001 * sampleRate))
}
