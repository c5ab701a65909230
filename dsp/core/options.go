package core

import "fmt"

// Supported processing limits.
const (
	MinSampleRate = 8000.0
	MaxSampleRate = 384000.0
	MinBlockSize  = 16
	MaxBlockSize  = 8192
)

// ProcessorConfig defines common DSP processing settings.
type ProcessorConfig struct {
	SampleRate float64
	BlockSize  int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns sensible defaults for offline and streaming use.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate: 48000,
		BlockSize:  512,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the processing block size.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// Validate reports whether the configuration lies inside the supported limits.
func (c ProcessorConfig) Validate() error {
	if !IsFinite(c.SampleRate) || c.SampleRate < MinSampleRate || c.SampleRate > MaxSampleRate {
		return fmt.Errorf("sample rate %v outside [%v, %v]", c.SampleRate, MinSampleRate, MaxSampleRate)
	}

	if c.BlockSize < MinBlockSize || c.BlockSize > MaxBlockSize {
		return fmt.Errorf("block size %d outside [%d, %d]", c.BlockSize, MinBlockSize, MaxBlockSize)
	}

	return nil
}

// SecondsToFrames converts a time in seconds to the nearest frame index.
func (c ProcessorConfig) SecondsToFrames(seconds float64) int64 {
	return SecondsToFrames(seconds, c.SampleRate)
}

// SecondsToFrames converts a time in seconds to the nearest frame index at sampleRate.
func SecondsToFrames(seconds, sampleRate float64) int64 {
	v := seconds * sampleRate
	if v >= 0 {
		return int64(v + 0.5)
	}

	return -int64(-v + 0.5)
}
