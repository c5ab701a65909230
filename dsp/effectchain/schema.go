package effectchain

import (
	"fmt"
	"math"
	"slices"

	daw "github.com/cwbudde/algo-daw"
)

// ParamType is the value type of an effect parameter.
type ParamType int

// Parameter types. Enum values are stored as the index of the option.
const (
	ParamNumber ParamType = iota
	ParamEnum
)

func (t ParamType) String() string {
	if t == ParamEnum {
		return "enum"
	}

	return "number"
}

// ParamSpec declares one parameter of an effect kind.
type ParamSpec struct {
	Name    string
	Type    ParamType
	Min     float64
	Max     float64
	Default float64
	Options []string
	Unit    string
}

// Validate reports whether v is an acceptable value for the parameter.
func (s ParamSpec) Validate(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("effectchain: parameter %q: non-finite value: %w", s.Name, daw.ErrInvalidParameter)
	}

	if s.Type == ParamEnum {
		if v != math.Trunc(v) || v < 0 || int(v) >= len(s.Options) {
			return fmt.Errorf("effectchain: parameter %q: option index %g out of range [0, %d): %w",
				s.Name, v, len(s.Options), daw.ErrInvalidParameter)
		}

		return nil
	}

	if v < s.Min || v > s.Max {
		return fmt.Errorf("effectchain: parameter %q must be in [%g, %g]: %g: %w",
			s.Name, s.Min, s.Max, v, daw.ErrInvalidParameter)
	}

	return nil
}

// Option returns the index of an enum option by name.
func (s ParamSpec) Option(name string) (int, bool) {
	i := slices.Index(s.Options, name)

	return i, i >= 0
}

// Schema is the ordered parameter list of an effect kind.
type Schema []ParamSpec

// Lookup returns the spec with the given name.
func (s Schema) Lookup(name string) (ParamSpec, bool) {
	for _, p := range s {
		if p.Name == name {
			return p, true
		}
	}

	return ParamSpec{}, false
}

// Defaults returns a fresh map of default values.
func (s Schema) Defaults() map[string]float64 {
	out := make(map[string]float64, len(s))
	for _, p := range s {
		out[p.Name] = p.Default
	}

	return out
}

// Validate checks every value in params against the schema. Unknown names
// are rejected.
func (s Schema) Validate(params map[string]float64) error {
	for name, v := range params {
		spec, ok := s.Lookup(name)
		if !ok {
			return fmt.Errorf("effectchain: unknown parameter %q: %w", name, daw.ErrInvalidParameter)
		}

		if err := spec.Validate(v); err != nil {
			return err
		}
	}

	return nil
}
