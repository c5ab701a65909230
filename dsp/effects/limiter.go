package effects

import "math"

const (
	// DefaultLimiterCeilingDB is the master bus ceiling.
	DefaultLimiterCeilingDB = -0.5

	defaultLimiterReleaseMs  = 50.0
	minLimiterCeilingDB      = -24.0
	maxLimiterCeilingDB      = 0.0
	minLimiterReleaseMs      = 1.0
	maxLimiterReleaseMs      = 2000.0
	limiterGainRecoveryFloor = 1e-9
)

// Limiter is a stereo-linked brick-wall limiter with instant attack and
// exponential release. The output never exceeds the ceiling: the gain
// computer reacts within the same sample and a final clamp catches any
// residue. Below the ceiling, with the gain fully recovered, the signal
// passes through bit for bit.
type Limiter struct {
	sampleRate float64
	ceilingDB  float64
	releaseMs  float64

	ceiling      float64
	releaseCoeff float64
	gain         float64

	minGain float64
}

// NewLimiter returns a limiter with a -0.5 dB ceiling and 50 ms release.
func NewLimiter(sampleRate float64) (*Limiter, error) {
	if err := checkSampleRate(sampleRate); err != nil {
		return nil, err
	}

	l := &Limiter{
		sampleRate: sampleRate,
		ceilingDB:  DefaultLimiterCeilingDB,
		releaseMs:  defaultLimiterReleaseMs,
		gain:       1,
		minGain:    1,
	}
	l.update()

	return l, nil
}

// SetCeiling sets the ceiling in dBFS, within [-24, 0].
func (l *Limiter) SetCeiling(dB float64) error {
	if err := checkRange("limiter ceiling", dB, minLimiterCeilingDB, maxLimiterCeilingDB); err != nil {
		return err
	}
	l.ceilingDB = dB
	l.update()

	return nil
}

// SetRelease sets the release time in milliseconds.
func (l *Limiter) SetRelease(ms float64) error {
	if err := checkRange("limiter release", ms, minLimiterReleaseMs, maxLimiterReleaseMs); err != nil {
		return err
	}
	l.releaseMs = ms
	l.update()

	return nil
}

// SetSampleRate updates the sample rate.
func (l *Limiter) SetSampleRate(sampleRate float64) error {
	if err := checkSampleRate(sampleRate); err != nil {
		return err
	}
	l.sampleRate = sampleRate
	l.update()

	return nil
}

// Ceiling returns the ceiling in dBFS.
func (l *Limiter) Ceiling() float64 { return l.ceilingDB }

// CeilingLinear returns the ceiling as a linear amplitude.
func (l *Limiter) CeilingLinear() float64 { return l.ceiling }

// GainReduction returns the lowest gain applied since the last Reset.
func (l *Limiter) GainReduction() float64 { return l.minGain }

// Process limits a stereo block in place.
func (l *Limiter) Process(left, right []float64) {
	ceil := l.ceiling
	g := l.gain

	for i := range left {
		x, y := left[i], right[i]
		peak := math.Max(math.Abs(x), math.Abs(y))

		target := 1.0
		if peak > ceil {
			target = ceil / peak
		}

		if target < g {
			g = target
		} else if g < 1 {
			g = target + (g-target)*l.releaseCoeff
			if 1-g < limiterGainRecoveryFloor {
				g = 1
			}
		}

		if g < l.minGain {
			l.minGain = g
		}

		if g != 1 {
			x *= g
			y *= g
		}

		left[i] = clampAbs(x, ceil)
		right[i] = clampAbs(y, ceil)
	}

	l.gain = g
}

// Reset restores unity gain.
func (l *Limiter) Reset() {
	l.gain = 1
	l.minGain = 1
}

func (l *Limiter) update() {
	l.ceiling = math.Pow(10, l.ceilingDB/20)
	l.releaseCoeff = timeCoeff(l.releaseMs, l.sampleRate)
}

func clampAbs(x, limit float64) float64 {
	switch {
	case x > limit:
		return limit
	case x < -limit:
		return -limit
	case x != x: // NaN
		return 0
	default:
		return x
	}
}
