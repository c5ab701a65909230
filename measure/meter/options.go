package meter

import "github.com/cwbudde/algo-daw/dsp/core"

// Config defines meter ballistics.
type Config struct {
	core.ProcessorConfig

	// Channels is the number of metered channels.
	Channels int
	// RMSWindow is the RMS integration window in seconds.
	RMSWindow float64
	// PeakHold is how long a peak is held before it starts to fall, in seconds.
	PeakHold float64
	// PeakDecay is the fall rate of the held peak in dB per second.
	PeakDecay float64
	// PublishInterval is the cadence at which readings are published, in seconds.
	PublishInterval float64
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns a stereo meter with a 300 ms RMS window, 1 s peak
// hold, 20 dB/s peak fall and 50 ms publishing.
func DefaultConfig() Config {
	return Config{
		ProcessorConfig: core.DefaultProcessorConfig(),
		Channels:        2,
		RMSWindow:       0.3,
		PeakHold:        1.0,
		PeakDecay:       20,
		PublishInterval: 0.05,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *Config) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithChannels sets the number of channels.
func WithChannels(channels int) Option {
	return func(cfg *Config) {
		if channels > 0 {
			cfg.Channels = channels
		}
	}
}

// WithRMSWindow sets the RMS window in seconds.
func WithRMSWindow(seconds float64) Option {
	return func(cfg *Config) {
		if seconds > 0 {
			cfg.RMSWindow = seconds
		}
	}
}

// WithPeakBallistics sets the peak hold time (s) and fall rate (dB/s).
func WithPeakBallistics(hold, decayDBPerSecond float64) Option {
	return func(cfg *Config) {
		if hold >= 0 {
			cfg.PeakHold = hold
		}
		if decayDBPerSecond > 0 {
			cfg.PeakDecay = decayDBPerSecond
		}
	}
}

// WithPublishInterval sets the reading cadence in seconds.
func WithPublishInterval(seconds float64) Option {
	return func(cfg *Config) {
		if seconds > 0 {
			cfg.PublishInterval = seconds
		}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
