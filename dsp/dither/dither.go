// Package dither quantizes float audio to integer PCM for export, with
// optional dither noise and error-feedback noise shaping.
package dither

import (
	"fmt"

	daw "github.com/cwbudde/algo-daw"
)

// Kind selects the probability density of the dither noise.
type Kind int

// Dither kinds.
const (
	KindNone Kind = iota
	KindRectangular
	KindTriangular
)

var kindNames = []string{"none", "rectangular", "triangular"}

func (k Kind) String() string {
	if k.Valid() {
		return kindNames[k]
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool { return k >= KindNone && k <= KindTriangular }

// ParseKind returns the kind with the given name.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}

	return 0, fmt.Errorf("dither: unknown dither kind %q: %w", name, daw.ErrInvalidParameter)
}

// Shaping selects a noise-shaping filter.
type Shaping int

// Noise-shaping filters. The FC variants are F-weighted and push noise out
// of the most sensitive band of hearing.
const (
	ShapingNone Shaping = iota
	ShapingEFB          // first-order error feedback
	Shaping2SC          // second-order highpass
	Shaping3FC
	Shaping9FC
)

var shapingNames = []string{"none", "efb", "2sc", "3fc", "9fc"}

var shapingCoeffs = [][]float64{
	ShapingNone: nil,
	ShapingEFB:  {1},
	Shaping2SC:  {1, -0.5},
	Shaping3FC:  {1.623, -0.982, 0.109},
	Shaping9FC:  {2.412, -3.370, 3.937, -4.174, 3.353, -2.205, 1.281, -0.569, 0.0847},
}

func (s Shaping) String() string {
	if s.Valid() {
		return shapingNames[s]
	}

	return fmt.Sprintf("Shaping(%d)", int(s))
}

// Valid reports whether s is a known filter.
func (s Shaping) Valid() bool { return s >= ShapingNone && s <= Shaping9FC }

// Coefficients returns a copy of the error-feedback coefficients.
func (s Shaping) Coefficients() []float64 {
	if !s.Valid() {
		return nil
	}

	return append([]float64(nil), shapingCoeffs[s]...)
}

// ParseShaping returns the filter with the given name.
func ParseShaping(name string) (Shaping, error) {
	for i, n := range shapingNames {
		if n == name {
			return Shaping(i), nil
		}
	}

	return 0, fmt.Errorf("dither: unknown noise shaping %q: %w", name, daw.ErrInvalidParameter)
}
