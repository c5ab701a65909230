package core

import "math"

// PanGains returns the left and right gains of an equal-power pan law for
// pan in [-1, 1]. The law is normalized so the centre position is unity on
// both channels: PanGains(0) returns exactly (1, 1). Hard left yields
// (sqrt2, 0) and hard right (0, sqrt2); the summed power is constant.
func PanGains(pan float64) (left, right float64) {
	if pan == 0 {
		return 1, 1
	}

	pan = Clamp(pan, -1, 1)
	theta := (pan + 1) * math.Pi / 4

	return math.Sqrt2 * math.Cos(theta), math.Sqrt2 * math.Sin(theta)
}
