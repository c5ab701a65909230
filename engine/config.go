package engine

import (
	"go.uber.org/zap"

	"github.com/cwbudde/algo-daw/dsp/buffer"
	"github.com/cwbudde/algo-daw/dsp/effectchain"
	"github.com/cwbudde/algo-daw/live"
	"github.com/cwbudde/algo-daw/mixer"
)

// Config fixes the processing format and the initial session settings.
type Config struct {
	SampleRate float64
	BlockSize  int

	// Tempo in BPM; 0 selects DefaultTempo.
	Tempo float64
	// Master settings; the zero value selects mixer.DefaultMasterSettings.
	Master mixer.MasterSettings
}

// DefaultConfig returns 48 kHz, 256-frame blocks, 120 BPM and the default
// master bus.
func DefaultConfig() Config {
	return Config{
		SampleRate: 48000,
		BlockSize:  256,
		Tempo:      DefaultTempo,
		Master:     mixer.DefaultMasterSettings(),
	}
}

func (c Config) withDefaults() Config {
	if c.Tempo == 0 {
		c.Tempo = DefaultTempo
	}

	if c.Master == (mixer.MasterSettings{}) {
		c.Master = mixer.DefaultMasterSettings()
	}

	return c
}

// Format returns the live stream format.
func (c Config) Format() live.Format {
	return live.Format{SampleRate: c.SampleRate, BlockSize: c.BlockSize}
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	logger   *zap.Logger
	registry *effectchain.Registry
	driver   live.Driver
	input    live.Input
	pool     *buffer.Pool
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRegistry sets the effect registry. The default has the built-in
// effects.
func WithRegistry(r *effectchain.Registry) Option {
	return func(o *options) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithDriver sets the live driver. The default is a live.Manual driver
// that renders only when asked.
func WithDriver(d live.Driver) Option {
	return func(o *options) {
		if d != nil {
			o.driver = d
		}
	}
}

// WithInput sets the capture source for recording. Without one, recording
// fails.
func WithInput(in live.Input) Option {
	return func(o *options) {
		o.input = in
	}
}

// WithPool sets the buffer pool of the live graph. The default is an
// unbounded pool owned by the engine.
func WithPool(p *buffer.Pool) Option {
	return func(o *options) {
		if p != nil {
			o.pool = p
		}
	}
}

func applyOptions(opts ...Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.registry == nil {
		o.registry = effectchain.DefaultRegistry()
	}
	if o.driver == nil {
		o.driver = live.NewManual()
	}
	if o.pool == nil {
		o.pool = buffer.NewPool(buffer.Unbounded())
	}

	return o
}
