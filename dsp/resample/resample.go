package resample

import (
	"fmt"
	"math"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/dsp/buffer"
)

// Quality selects the anti-aliasing filter.
type Quality int

// Quality modes.
const (
	QualityFast Quality = iota
	QualityBalanced
	QualityBest
)

// Profile holds the filter parameters of a quality mode.
type Profile struct {
	TapsPerPhase int
	CutoffScale  float64
	KaiserBeta   float64
}

// QualityProfile returns the filter parameters of q.
func QualityProfile(q Quality) Profile {
	switch q {
	case QualityFast:
		return Profile{TapsPerPhase: 16, CutoffScale: 0.88, KaiserBeta: 5}
	case QualityBest:
		return Profile{TapsPerPhase: 64, CutoffScale: 0.96, KaiserBeta: 9}
	default:
		return Profile{TapsPerPhase: 32, CutoffScale: 0.92, KaiserBeta: 7.5}
	}
}

type config struct {
	quality Quality
	maxDen  int
}

// Option configures a Converter.
type Option func(*config)

// WithQuality selects the filter quality (default balanced).
func WithQuality(q Quality) Option {
	return func(c *config) { c.quality = q }
}

// WithMaxDenominator bounds the rational approximation of the rate ratio.
func WithMaxDenominator(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxDen = n
		}
	}
}

// Converter resamples whole signals by the rational factor up/down.
type Converter struct {
	inRate, outRate float64
	up, down        int

	// kernel is the prototype lowpass at up times the input rate; center is
	// its delay in taps.
	kernel []float64
	center int
}

// NewConverter returns a converter from inRate to outRate.
func NewConverter(inRate, outRate float64, opts ...Option) (*Converter, error) {
	if !(inRate > 0) || !(outRate > 0) || math.IsInf(inRate, 0) || math.IsInf(outRate, 0) {
		return nil, fmt.Errorf("resample: rates %g -> %g: %w", inRate, outRate, daw.ErrInvalidParameter)
	}

	cfg := config{quality: QualityBalanced, maxDen: 4096}
	for _, opt := range opts {
		opt(&cfg)
	}

	up, down := approximateRatio(outRate/inRate, cfg.maxDen)
	c := &Converter{inRate: inRate, outRate: outRate, up: up, down: down}

	if up != down {
		c.kernel, c.center = designKernel(up, down, QualityProfile(cfg.quality))
	}

	return c, nil
}

// Ratio returns the reduced conversion factors.
func (c *Converter) Ratio() (up, down int) { return c.up, c.down }

// OutputLen returns the number of frames Process produces for n input
// frames.
func (c *Converter) OutputLen(n int) int {
	return int(math.Round(float64(n) * float64(c.up) / float64(c.down)))
}

// Process converts one channel. Equal rates return a copy.
func (c *Converter) Process(x []float64) []float64 {
	out := make([]float64, c.OutputLen(len(x)))
	if c.kernel == nil {
		copy(out, x)

		return out
	}

	for n := range out {
		// Position of the output frame on the upsampled grid, shifted by the
		// kernel delay.
		pos := n*c.down + c.center
		i := pos / c.up
		tap := pos - i*c.up

		var acc float64
		for ; tap < len(c.kernel) && i >= 0; tap, i = tap+c.up, i-1 {
			if i < len(x) {
				acc += c.kernel[tap] * x[i]
			}
		}
		out[n] = acc
	}

	return out
}

// Buffer converts every channel of buf into a new buffer.
func (c *Converter) Buffer(buf *buffer.Buffer) *buffer.Buffer {
	channels := make([][]float64, buf.Channels())
	for ch := range channels {
		channels[ch] = c.Process(buf.Channel(ch))
	}

	return buffer.FromChannels(channels...)
}
