package dither

import (
	"fmt"
	"math"
	"math/rand/v2"

	daw "github.com/cwbudde/algo-daw"
)

const defaultSeed = 0x5eed

// Quantizer converts one channel of samples in [-1, 1] to signed integers
// of a fixed bit depth. It keeps noise-shaping history, so every channel
// needs its own Quantizer. A fixed seed makes the output reproducible.
type Quantizer struct {
	bitDepth  int
	kind      Kind
	amplitude float64

	coeffs  []float64
	history []float64
	pos     int

	rng *rand.Rand

	scale     float64
	low, high int
}

type config struct {
	kind      Kind
	shaping   Shaping
	amplitude float64
	seed      uint64
}

// Option configures a Quantizer.
type Option func(*config) error

// WithKind sets the dither noise density (default triangular).
func WithKind(k Kind) Option {
	return func(c *config) error {
		if !k.Valid() {
			return fmt.Errorf("dither: kind %d: %w", int(k), daw.ErrInvalidParameter)
		}
		c.kind = k

		return nil
	}
}

// WithShaping sets the noise-shaping filter (default none).
func WithShaping(s Shaping) Option {
	return func(c *config) error {
		if !s.Valid() {
			return fmt.Errorf("dither: shaping %d: %w", int(s), daw.ErrInvalidParameter)
		}
		c.shaping = s

		return nil
	}
}

// WithAmplitude scales the dither noise in LSBs (default 1).
func WithAmplitude(lsb float64) Option {
	return func(c *config) error {
		if !(lsb >= 0) || math.IsInf(lsb, 0) {
			return fmt.Errorf("dither: amplitude %g: %w", lsb, daw.ErrInvalidParameter)
		}
		c.amplitude = lsb

		return nil
	}
}

// WithSeed seeds the noise generator.
func WithSeed(seed uint64) Option {
	return func(c *config) error {
		c.seed = seed

		return nil
	}
}

// NewQuantizer returns a quantizer for bitDepth in [8, 32].
func NewQuantizer(bitDepth int, opts ...Option) (*Quantizer, error) {
	if bitDepth < 8 || bitDepth > 32 {
		return nil, fmt.Errorf("dither: bit depth %d outside [8, 32]: %w", bitDepth, daw.ErrInvalidParameter)
	}

	cfg := config{kind: KindTriangular, amplitude: 1, seed: defaultSeed}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	q := &Quantizer{
		bitDepth:  bitDepth,
		kind:      cfg.kind,
		amplitude: cfg.amplitude,
		coeffs:    cfg.shaping.Coefficients(),
		rng:       rand.New(rand.NewPCG(cfg.seed, cfg.seed^0x9e3779b97f4a7c15)),
	}
	q.history = make([]float64, len(q.coeffs))

	// Half an LSB of headroom at both ends keeps full scale symmetric.
	q.scale = math.Exp2(float64(bitDepth-1)) - 0.5
	q.low = -int(math.Round(q.scale + 0.5))
	q.high = int(math.Round(q.scale - 0.5))

	return q, nil
}

// BitDepth returns the target bit depth.
func (q *Quantizer) BitDepth() int { return q.bitDepth }

// Range returns the smallest and largest output codes.
func (q *Quantizer) Range() (low, high int) { return q.low, q.high }

// Quantize converts one sample. Out-of-range input is clamped.
func (q *Quantizer) Quantize(x float64) int {
	if x != x {
		x = 0
	}

	shaped := x * q.scale
	for i, c := range q.coeffs {
		shaped -= c * q.history[(q.pos+len(q.history)-i)%len(q.history)]
	}

	v := int(math.Floor(shaped + q.noise()))
	v = max(q.low, min(q.high, v))

	if len(q.history) > 0 {
		q.pos = (q.pos + 1) % len(q.history)
		q.history[q.pos] = float64(v) - shaped
	}

	return v
}

// QuantizeBlock converts src into dst, which must be at least as long.
func (q *Quantizer) QuantizeBlock(dst []int, src []float64) {
	for i, x := range src {
		dst[i] = q.Quantize(x)
	}
}

// Reset clears the noise-shaping history.
func (q *Quantizer) Reset() {
	clear(q.history)
	q.pos = 0
}

// noise returns the dither offset plus the half LSB that turns floor into
// round-to-nearest.
func (q *Quantizer) noise() float64 {
	switch q.kind {
	case KindRectangular:
		return 0.5 + q.amplitude*(q.rng.Float64()-0.5)
	case KindTriangular:
		return 0.5 + q.amplitude*(q.rng.Float64()-q.rng.Float64())
	default:
		return 0.5
	}
}
