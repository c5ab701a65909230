package effectchain

import (
	"fmt"
	"maps"
	"math"

	"github.com/google/uuid"

	daw "github.com/cwbudde/algo-daw"
)

// Slot is one effect in a track's chain: kind, enabled flag, dry/wet mix and
// parameter values. Slots are plain values; the runtime state lives in a
// Chain and is matched to slots by ID.
type Slot struct {
	ID      string
	Kind    string
	Enabled bool
	// Mix is the dry/wet balance in [0, 1]; 1 is fully wet.
	Mix    float64
	Params map[string]float64

	schema Schema
}

// Schema returns the parameter schema of the slot's kind.
func (s *Slot) Schema() Schema { return s.schema }

// Param returns the current value of a parameter.
func (s *Slot) Param(name string) (float64, bool) {
	v, ok := s.Params[name]

	return v, ok
}

// SetParameter validates and stores a parameter value. Enum parameters take
// the index of their option.
func (s *Slot) SetParameter(name string, value float64) error {
	spec, ok := s.schema.Lookup(name)
	if !ok {
		return fmt.Errorf("effectchain: %s has no parameter %q: %w", s.Kind, name, daw.ErrInvalidParameter)
	}

	if err := spec.Validate(value); err != nil {
		return err
	}

	if s.Params == nil {
		s.Params = s.schema.Defaults()
	}
	s.Params[name] = value

	return nil
}

// SetEnum sets an enum parameter by option name.
func (s *Slot) SetEnum(name, option string) error {
	spec, ok := s.schema.Lookup(name)
	if !ok || spec.Type != ParamEnum {
		return fmt.Errorf("effectchain: %s has no enum parameter %q: %w", s.Kind, name, daw.ErrInvalidParameter)
	}

	idx, ok := spec.Option(option)
	if !ok {
		return fmt.Errorf("effectchain: parameter %q has no option %q: %w", name, option, daw.ErrInvalidParameter)
	}

	return s.SetParameter(name, float64(idx))
}

// SetMix sets the dry/wet balance.
func (s *Slot) SetMix(mix float64) error {
	if math.IsNaN(mix) || mix < 0 || mix > 1 {
		return fmt.Errorf("effectchain: mix must be in [0, 1]: %g: %w", mix, daw.ErrInvalidParameter)
	}
	s.Mix = mix

	return nil
}

// Toggle enables or bypasses the slot.
func (s *Slot) Toggle(enabled bool) {
	s.Enabled = enabled
}

// Clone returns a deep copy with the same ID.
func (s Slot) Clone() Slot {
	s.Params = maps.Clone(s.Params)

	return s
}

// Duplicate returns a deep copy with a fresh ID.
func (s Slot) Duplicate() Slot {
	c := s.Clone()
	c.ID = uuid.NewString()

	return c
}

func (s *Slot) params() Params {
	return Params{ID: s.ID, Kind: s.Kind, Num: s.Params}
}
