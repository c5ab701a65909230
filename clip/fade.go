package clip

import (
	"fmt"
	"math"

	daw "github.com/cwbudde/algo-daw"
)

// Shape is the curve of a fade.
type Shape int

// Fade shapes.
const (
	ShapeLinear Shape = iota
	ShapeExponential
	ShapeLogarithmic
	ShapeSCurve
)

var shapeNames = []string{"linear", "exponential", "logarithmic", "s-curve"}

func (s Shape) String() string {
	if s < 0 || int(s) >= len(shapeNames) {
		return fmt.Sprintf("Shape(%d)", int(s))
	}

	return shapeNames[s]
}

// ParseShape returns the shape with the given name.
func ParseShape(name string) (Shape, error) {
	for i, n := range shapeNames {
		if n == name {
			return Shape(i), nil
		}
	}

	return ShapeLinear, fmt.Errorf("clip: unknown fade shape %q: %w", name, daw.ErrInvalidParameter)
}

// Gain maps fade progress x in [0, 1] to a gain in [0, 1]. Gain(0) is 0
// and Gain(1) is 1 for every shape.
func (s Shape) Gain(x float64) float64 {
	switch {
	case x <= 0:
		return 0
	case x >= 1:
		return 1
	}

	switch s {
	case ShapeExponential:
		return x * x
	case ShapeLogarithmic:
		return 1 - (1-x)*(1-x)
	case ShapeSCurve:
		return x * x * (3 - 2*x)
	default:
		return x
	}
}

// Fade is a gain ramp at one end of a clip.
type Fade struct {
	Duration float64
	Shape    Shape
}

func (f Fade) validate(which string) error {
	if !(f.Duration >= 0) || math.IsInf(f.Duration, 0) {
		return fmt.Errorf("clip: fade-%s duration %g: %w", which, f.Duration, daw.ErrInvalidParameter)
	}

	if f.Shape < ShapeLinear || f.Shape > ShapeSCurve {
		return fmt.Errorf("clip: fade-%s shape %d: %w", which, f.Shape, daw.ErrInvalidParameter)
	}

	return nil
}

// clampFades scales both fades down proportionally so they fit in dur.
func clampFades(in, out Fade, dur float64) (Fade, Fade) {
	total := in.Duration + out.Duration
	if total <= dur || total == 0 {
		return in, out
	}

	k := dur / total
	in.Duration *= k
	out.Duration *= k

	return in, out
}
