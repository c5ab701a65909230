package effects

import (
	"math"
)

const (
	defaultCompressorThresholdDB = -20.0
	defaultCompressorRatio       = 4.0
	defaultCompressorKneeDB      = 6.0
	defaultCompressorAttackMs    = 10.0
	defaultCompressorReleaseMs   = 100.0

	minCompressorRatio     = 1.0
	maxCompressorRatio     = 100.0
	minCompressorAttackMs  = 0.1
	maxCompressorAttackMs  = 1000.0
	minCompressorReleaseMs = 1.0
	maxCompressorReleaseMs = 5000.0
	maxCompressorKneeDB    = 24.0

	// log2(10) / 20, converts dB to the log2 domain.
	log2Of10Div20 = 0.166096404744
)

// Compressor is a stereo-linked soft-knee compressor. The detector follows
// the louder of the two channels and the same gain is applied to both, so
// the stereo image does not shift under compression.
//
// Gain is computed in the log2 domain with a quadratic knee around the
// threshold.
type Compressor struct {
	thresholdDB  float64
	ratio        float64
	kneeDB       float64
	attackMs     float64
	releaseMs    float64
	makeupGainDB float64

	sampleRate float64

	envelope float64

	attackCoeff      float64
	releaseCoeff     float64
	thresholdLog2    float64
	kneeWidthLog2    float64
	invKneeWidthLog2 float64
	makeupGainLin    float64

	minGain float64
}

// NewCompressor creates a compressor with defaults: threshold -20 dB,
// ratio 4:1, knee 6 dB, attack 10 ms, release 100 ms, no makeup gain.
func NewCompressor(sampleRate float64) (*Compressor, error) {
	if err := checkSampleRate(sampleRate); err != nil {
		return nil, err
	}

	c := &Compressor{
		thresholdDB: defaultCompressorThresholdDB,
		ratio:       defaultCompressorRatio,
		kneeDB:      defaultCompressorKneeDB,
		attackMs:    defaultCompressorAttackMs,
		releaseMs:   defaultCompressorReleaseMs,
		sampleRate:  sampleRate,
		minGain:     1,
	}
	c.updateCoefficients()

	return c, nil
}

// SetThreshold sets the threshold in dB, within [-60, 0].
func (c *Compressor) SetThreshold(dB float64) error {
	if err := checkRange("compressor threshold", dB, -60, 0); err != nil {
		return err
	}
	c.thresholdDB = dB
	c.updateCoefficients()

	return nil
}

// SetRatio sets the compression ratio, within [1, 100].
func (c *Compressor) SetRatio(ratio float64) error {
	if err := checkRange("compressor ratio", ratio, minCompressorRatio, maxCompressorRatio); err != nil {
		return err
	}
	c.ratio = ratio
	c.updateCoefficients()

	return nil
}

// SetKnee sets the soft-knee width in dB, within [0, 24]. 0 is a hard knee.
func (c *Compressor) SetKnee(kneeDB float64) error {
	if err := checkRange("compressor knee", kneeDB, 0, maxCompressorKneeDB); err != nil {
		return err
	}
	c.kneeDB = kneeDB
	c.updateCoefficients()

	return nil
}

// SetAttack sets the attack time in milliseconds.
func (c *Compressor) SetAttack(ms float64) error {
	if err := checkRange("compressor attack", ms, minCompressorAttackMs, maxCompressorAttackMs); err != nil {
		return err
	}
	c.attackMs = ms
	c.updateTimeConstants()

	return nil
}

// SetRelease sets the release time in milliseconds.
func (c *Compressor) SetRelease(ms float64) error {
	if err := checkRange("compressor release", ms, minCompressorReleaseMs, maxCompressorReleaseMs); err != nil {
		return err
	}
	c.releaseMs = ms
	c.updateTimeConstants()

	return nil
}

// SetMakeupGain sets the makeup gain in dB, within [0, 24].
func (c *Compressor) SetMakeupGain(dB float64) error {
	if err := checkRange("compressor makeup gain", dB, 0, 24); err != nil {
		return err
	}
	c.makeupGainDB = dB
	c.updateCoefficients()

	return nil
}

// SetSampleRate updates the sample rate and recalculates time constants.
func (c *Compressor) SetSampleRate(sampleRate float64) error {
	if err := checkSampleRate(sampleRate); err != nil {
		return err
	}
	c.sampleRate = sampleRate
	c.updateTimeConstants()

	return nil
}

// Threshold returns the threshold in dB.
func (c *Compressor) Threshold() float64 { return c.thresholdDB }

// Ratio returns the compression ratio.
func (c *Compressor) Ratio() float64 { return c.ratio }

// Knee returns the knee width in dB.
func (c *Compressor) Knee() float64 { return c.kneeDB }

// GainReduction returns the lowest gain applied since the last Reset.
func (c *Compressor) GainReduction() float64 { return c.minGain }

// Process compresses a stereo block in place.
func (c *Compressor) Process(left, right []float64) {
	for i := range left {
		level := math.Max(math.Abs(left[i]), math.Abs(right[i]))
		if level > c.envelope {
			c.envelope += (level - c.envelope) * c.attackCoeff
		} else {
			c.envelope = level + (c.envelope-level)*c.releaseCoeff
		}

		gain := c.gainFor(c.envelope)
		if gain < c.minGain {
			c.minGain = gain
		}

		gain *= c.makeupGainLin
		left[i] *= gain
		right[i] *= gain
	}

	if c.envelope < 1e-30 {
		c.envelope = 0
	}
}

// OutputLevel returns the static output level for a steady input magnitude.
func (c *Compressor) OutputLevel(input float64) float64 {
	input = math.Abs(input)

	return input * c.gainFor(input) * c.makeupGainLin
}

// Reset clears the envelope follower and gain-reduction meter.
func (c *Compressor) Reset() {
	c.envelope = 0
	c.minGain = 1
}

func (c *Compressor) updateCoefficients() {
	c.thresholdLog2 = c.thresholdDB * log2Of10Div20
	c.kneeWidthLog2 = c.kneeDB * log2Of10Div20
	if c.kneeDB > 0 {
		c.invKneeWidthLog2 = 1 / c.kneeWidthLog2
	} else {
		c.invKneeWidthLog2 = 0
	}
	c.makeupGainLin = math.Pow(10, c.makeupGainDB/20)
	c.updateTimeConstants()
}

func (c *Compressor) updateTimeConstants() {
	// attack coefficient is the step toward the target, release the retained fraction
	c.attackCoeff = 1 - timeCoeff(c.attackMs, c.sampleRate)
	c.releaseCoeff = timeCoeff(c.releaseMs, c.sampleRate)
}

func (c *Compressor) gainFor(level float64) float64 {
	if level <= 0 {
		return 1
	}

	overshoot := math.Log2(level) - c.thresholdLog2

	if c.kneeDB <= 0 {
		if overshoot <= 0 {
			return 1
		}

		return math.Exp2(-overshoot * (1 - 1/c.ratio))
	}

	halfWidth := c.kneeWidthLog2 * 0.5

	var effective float64
	switch {
	case overshoot < -halfWidth:
		return 1
	case overshoot > halfWidth:
		effective = overshoot
	default:
		scratch := overshoot + halfWidth
		effective = scratch * scratch * 0.5 * c.invKneeWidthLog2
	}

	return math.Exp2(-effective * (1 - 1/c.ratio))
}
