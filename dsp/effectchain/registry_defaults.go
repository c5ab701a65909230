package effectchain

import (
	"github.com/cwbudde/algo-daw/dsp/effects"
)

// Built-in effect kinds.
const (
	KindEQ         = "eq"
	KindCompressor = "compressor"
	KindReverb     = "reverb"
	KindDelay      = "delay"
	KindGain       = "gain"
	KindLimiter    = "limiter"
)

var passOptions = []string{"off", "12dB", "24dB"}

// EQSchema declares the equalizer parameters: three shaping bands plus
// optional high-pass and low-pass filters.
var EQSchema = Schema{
	{Name: "lowGainDB", Min: -24, Max: 24, Unit: "dB"},
	{Name: "lowFreq", Min: 20, Max: 1000, Default: 120, Unit: "Hz"},
	{Name: "midGainDB", Min: -24, Max: 24, Unit: "dB"},
	{Name: "midFreq", Min: 100, Max: 10000, Default: 1000, Unit: "Hz"},
	{Name: "midQ", Min: 0.1, Max: 18, Default: 1},
	{Name: "highGainDB", Min: -24, Max: 24, Unit: "dB"},
	{Name: "highFreq", Min: 1000, Max: 20000, Default: 8000, Unit: "Hz"},
	{Name: "highPass", Type: ParamEnum, Options: passOptions},
	{Name: "highPassFreq", Min: 10, Max: 2000, Default: 30, Unit: "Hz"},
	{Name: "lowPass", Type: ParamEnum, Options: passOptions},
	{Name: "lowPassFreq", Min: 1000, Max: 22000, Default: 18000, Unit: "Hz"},
}

// CompressorSchema declares the compressor parameters.
var CompressorSchema = Schema{
	{Name: "thresholdDB", Min: -60, Max: 0, Default: -20, Unit: "dB"},
	{Name: "ratio", Min: 1, Max: 100, Default: 4},
	{Name: "kneeDB", Min: 0, Max: 24, Default: 6, Unit: "dB"},
	{Name: "attackMs", Min: 0.1, Max: 1000, Default: 10, Unit: "ms"},
	{Name: "releaseMs", Min: 1, Max: 5000, Default: 100, Unit: "ms"},
	{Name: "makeupGainDB", Min: 0, Max: 24, Unit: "dB"},
}

// ReverbSchema declares the reverb parameters.
var ReverbSchema = Schema{
	{Name: "decay", Min: 0.1, Max: 20, Default: 1.8, Unit: "s"},
	{Name: "damping", Min: 0, Max: 1, Default: 0.5},
	{Name: "preDelayMs", Min: 0, Max: 250, Default: 20, Unit: "ms"},
}

// DelaySchema declares the delay parameters. A sync division other than
// "off" overrides timeMs with a tempo-derived time.
var DelaySchema = Schema{
	{Name: "timeMs", Min: 1, Max: 2000, Default: 250, Unit: "ms"},
	{Name: "feedback", Min: 0, Max: 0.95, Default: 0.35},
	{Name: "sync", Type: ParamEnum, Options: effects.SyncDivisionNames},
}

// GainSchema declares the utility gain parameters.
var GainSchema = Schema{
	{Name: "gainDB", Min: -144, Max: 24, Unit: "dB"},
}

// LimiterSchema declares the limiter parameters.
var LimiterSchema = Schema{
	{Name: "ceilingDB", Min: -24, Max: 0, Default: effects.DefaultLimiterCeilingDB, Unit: "dB"},
	{Name: "releaseMs", Min: 1, Max: 2000, Default: 50, Unit: "ms"},
}

// DefaultRegistry returns a Registry pre-populated with the built-in effects.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister(Definition{
		Kind:       KindEQ,
		Schema:     EQSchema,
		DefaultMix: 1,
		Factory: func(ctx Context) (Effect, error) {
			fx, err := effects.NewEQ(ctx.SampleRate)
			if err != nil {
				return nil, err
			}

			return &eqRuntime{fx: fx}, nil
		},
	})
	r.MustRegister(Definition{
		Kind:       KindCompressor,
		Schema:     CompressorSchema,
		DefaultMix: 1,
		Factory: func(ctx Context) (Effect, error) {
			fx, err := effects.NewCompressor(ctx.SampleRate)
			if err != nil {
				return nil, err
			}

			return &compressorRuntime{fx: fx}, nil
		},
	})
	r.MustRegister(Definition{
		Kind:       KindReverb,
		Schema:     ReverbSchema,
		DefaultMix: 0.25,
		Factory: func(ctx Context) (Effect, error) {
			fx, err := effects.NewReverb(ctx.SampleRate)
			if err != nil {
				return nil, err
			}

			return &reverbRuntime{fx: fx}, nil
		},
	})
	r.MustRegister(Definition{
		Kind:       KindDelay,
		Schema:     DelaySchema,
		DefaultMix: 0.3,
		Factory: func(ctx Context) (Effect, error) {
			fx, err := effects.NewDelay(ctx.SampleRate)
			if err != nil {
				return nil, err
			}

			return &delayRuntime{fx: fx}, nil
		},
	})
	r.MustRegister(Definition{
		Kind:       KindGain,
		Schema:     GainSchema,
		DefaultMix: 1,
		Factory: func(_ Context) (Effect, error) {
			return &gainRuntime{gain: 1}, nil
		},
	})
	r.MustRegister(Definition{
		Kind:       KindLimiter,
		Schema:     LimiterSchema,
		DefaultMix: 1,
		Factory: func(ctx Context) (Effect, error) {
			fx, err := effects.NewLimiter(ctx.SampleRate)
			if err != nil {
				return nil, err
			}

			return &limiterRuntime{fx: fx}, nil
		},
	})

	return r
}
