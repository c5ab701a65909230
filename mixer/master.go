package mixer

import (
	"fmt"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-daw/dsp/core"
	"github.com/cwbudde/algo-daw/dsp/effects"
	"github.com/cwbudde/algo-daw/measure/meter"
)

// MasterBus applies master gain, a brick-wall limiter and metering to the
// summed track outputs.
type MasterBus struct {
	settings MasterSettings
	gain     float64
	limiter  *effects.Limiter
	meter    *meter.Meter
}

// NewMasterBus creates a master bus for the given sample rate.
func NewMasterBus(settings MasterSettings, sampleRate float64) (*MasterBus, error) {
	limiter, err := effects.NewLimiter(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("mixer: master limiter: %w", err)
	}

	m := &MasterBus{
		limiter: limiter,
		meter:   meter.New(meter.WithSampleRate(sampleRate)),
	}

	if err := m.Configure(settings); err != nil {
		return nil, err
	}

	return m, nil
}

// Configure applies new settings, keeping limiter and meter state.
func (m *MasterBus) Configure(settings MasterSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	if err := m.limiter.SetCeiling(settings.CeilingDB); err != nil {
		return fmt.Errorf("mixer: master ceiling: %w", err)
	}

	if err := m.limiter.SetRelease(settings.ReleaseMs); err != nil {
		return fmt.Errorf("mixer: master release: %w", err)
	}

	m.settings = settings
	m.gain = core.DBToGain(settings.GainDB)

	return nil
}

// Settings returns the current settings.
func (m *MasterBus) Settings() MasterSettings { return m.settings }

// Meter returns the master meter.
func (m *MasterBus) Meter() *meter.Meter { return m.meter }

// Limiter returns the master limiter.
func (m *MasterBus) Limiter() *effects.Limiter { return m.limiter }

// Process applies gain, limiting and metering to a summed stereo block in
// place.
func (m *MasterBus) Process(left, right []float64) {
	if m.gain != 1 {
		vecmath.ScaleBlockInPlace(left, m.gain)
		vecmath.ScaleBlockInPlace(right, m.gain)
	}

	m.limiter.Process(left, right)
	m.meter.Process(left, right)
}

// Reset clears limiter and meter state.
func (m *MasterBus) Reset() {
	m.limiter.Reset()
	m.meter.Reset()
}
