// Package signal generates reference signals: sine tones, seeded noise and
// a metronome click.
package signal

import (
	"fmt"
	"math"
	"math/rand"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/dsp/core"
)

const (
	clickLengthSeconds = 0.03
	clickAccentHz      = 1500.0
	clickBeatHz        = 1000.0
	clickBeatLevel     = 0.5
)

// Generator creates deterministic signals at a fixed sample rate.
type Generator struct {
	cfg  core.ProcessorConfig
	seed int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets the noise seed.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a generator with seed 1.
func NewGenerator(opts ...core.ProcessorOption) *Generator {
	return NewGeneratorWithOptions(opts)
}

// NewGeneratorWithOptions creates a generator with signal-specific options.
func NewGeneratorWithOptions(coreOpts []core.ProcessorOption, opts ...Option) *Generator {
	g := &Generator{
		cfg:  core.ApplyProcessorOptions(coreOpts...),
		seed: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g
}

// Config returns the processing configuration.
func (g *Generator) Config() core.ProcessorConfig {
	return g.cfg
}

// Sine generates samples of a sine wave starting at phase zero.
func (g *Generator) Sine(freqHz, amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("signal: sine of %d samples: %w", samples, daw.ErrInvalidParameter)
	}
	if !(freqHz >= 0 && freqHz < g.cfg.SampleRate/2) {
		return nil, fmt.Errorf("signal: sine at %g Hz beyond Nyquist: %w", freqHz, daw.ErrInvalidParameter)
	}

	out := make([]float64, samples)
	step := 2 * math.Pi * freqHz / g.cfg.SampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out, nil
}

// WhiteNoise generates seeded white noise in [-amplitude, amplitude).
func (g *Generator) WhiteNoise(amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("signal: noise of %d samples: %w", samples, daw.ErrInvalidParameter)
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("signal: negative noise amplitude %g: %w", amplitude, daw.ErrInvalidParameter)
	}

	out := make([]float64, samples)
	rng := rand.New(rand.NewSource(g.seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return out, nil
}

// Click generates a metronome track of beats beats at tempoBPM. Every beat
// starts with a 30 ms decaying sine burst; the first beat of each bar is
// pitched higher and at full amplitude, the others at half.
func (g *Generator) Click(tempoBPM float64, beatsPerBar, beats int, amplitude float64) ([]float64, error) {
	if !(tempoBPM > 0) || beatsPerBar <= 0 || beats <= 0 {
		return nil, fmt.Errorf("signal: click at %g BPM, %d/%d beats: %w",
			tempoBPM, beats, beatsPerBar, daw.ErrInvalidParameter)
	}

	sr := g.cfg.SampleRate
	beatFrames := int(math.Round(60 / tempoBPM * sr))
	clickFrames := min(int(math.Round(clickLengthSeconds*sr)), beatFrames)
	if clickFrames <= 0 {
		return nil, fmt.Errorf("signal: click beat of %d frames: %w", beatFrames, daw.ErrInvalidParameter)
	}

	out := make([]float64, beats*beatFrames)
	for b := 0; b < beats; b++ {
		freq, level := clickBeatHz, clickBeatLevel
		if b%beatsPerBar == 0 {
			freq, level = clickAccentHz, 1
		}

		step := 2 * math.Pi * freq / sr
		burst := out[b*beatFrames : b*beatFrames+clickFrames]
		for i := range burst {
			decay := 1 - float64(i)/float64(clickFrames)
			burst[i] = amplitude * level * decay * decay * math.Sin(step*float64(i))
		}
	}

	return out, nil
}

// Normalize scales data to targetPeak and returns a new slice. Silent input
// stays silent.
func Normalize(data []float64, targetPeak float64) ([]float64, error) {
	if targetPeak < 0 {
		return nil, fmt.Errorf("signal: negative target peak %g: %w", targetPeak, daw.ErrInvalidParameter)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("signal: normalize empty input: %w", daw.ErrInvalidParameter)
	}

	maxAbs := 0.0
	for _, v := range data {
		maxAbs = math.Max(maxAbs, math.Abs(v))
	}

	out := make([]float64, len(data))
	if maxAbs == 0 || targetPeak == 0 {
		return out, nil
	}

	scale := targetPeak / maxAbs
	for i, v := range data {
		out[i] = v * scale
	}

	return out, nil
}
