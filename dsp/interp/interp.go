package interp

// Linear2 interpolates between x0 and x1 at fraction t in [0, 1].
func Linear2(t, x0, x1 float64) float64 {
	return x0 + t*(x1-x0)
}

// Hermite4 computes cubic 4-point interpolation.
// It interpolates from x0 to x1 using neighbor points xm1 and x2.
// At t == 0 it returns x0 exactly.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	if t == 0 {
		return x0
	}

	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)

	return ((c3*t+c2)*t+c1)*t + c0
}

// HermiteAt reads src at fractional index pos using Hermite4. Samples
// outside [0, len(src)) are treated as silence.
func HermiteAt(src []float64, pos float64) float64 {
	i := int(pos)
	if pos < 0 {
		i--
	}
	t := pos - float64(i)

	at := func(k int) float64 {
		if k < 0 || k >= len(src) {
			return 0
		}
		return src[k]
	}

	if t == 0 {
		return at(i)
	}

	return Hermite4(t, at(i-1), at(i), at(i+1), at(i+2))
}
