package effectchain

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	daw "github.com/cwbudde/algo-daw"
)

// Definition describes an effect kind.
type Definition struct {
	Kind    string
	Schema  Schema
	Factory Factory
	// DefaultMix is the dry/wet mix of new slots. Wet-only effects such as
	// delay and reverb default below 1.
	DefaultMix float64
}

// Registry maps effect kinds to their definitions.
type Registry struct {
	defs map[string]*Definition
}

var errDuplicateEffect = errors.New("duplicate effect kind")

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Register adds a definition.
func (r *Registry) Register(def Definition) error {
	if def.Kind == "" {
		return errors.New("empty effect kind")
	}

	if def.Factory == nil {
		return errors.New("nil factory")
	}

	if _, exists := r.defs[def.Kind]; exists {
		return fmt.Errorf("%w: %s", errDuplicateEffect, def.Kind)
	}

	for _, p := range def.Schema {
		if err := p.Validate(p.Default); err != nil {
			return fmt.Errorf("effectchain: %s default: %w", def.Kind, err)
		}
	}

	if def.DefaultMix < 0 || def.DefaultMix > 1 {
		return fmt.Errorf("effectchain: %s default mix %g: %w", def.Kind, def.DefaultMix, daw.ErrInvalidParameter)
	}

	def.Schema = slices.Clone(def.Schema)
	r.defs[def.Kind] = &def

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(def Definition) {
	err := r.Register(def)
	if err != nil {
		panic("effectchain registry: " + err.Error())
	}
}

// Lookup returns the definition of the given kind.
func (r *Registry) Lookup(kind string) (*Definition, bool) {
	def, ok := r.defs[kind]

	return def, ok
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.defs))
	for k := range r.defs {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)

	return kinds
}

// NewSlot returns an enabled slot of the given kind with a fresh ID and
// default parameters.
func (r *Registry) NewSlot(kind string) (Slot, error) {
	def, ok := r.defs[kind]
	if !ok {
		return Slot{}, fmt.Errorf("effectchain: unknown effect kind %q: %w", kind, daw.ErrInvalidParameter)
	}

	return Slot{
		ID:      uuid.NewString(),
		Kind:    kind,
		Enabled: true,
		Mix:     def.DefaultMix,
		Params:  def.Schema.Defaults(),
		schema:  def.Schema,
	}, nil
}

func (r *Registry) newEffect(ctx Context, kind string) (Effect, error) {
	def, ok := r.defs[kind]
	if !ok {
		return nil, fmt.Errorf("effectchain: unknown effect kind %q: %w", kind, daw.ErrInvalidParameter)
	}

	return def.Factory(ctx)
}
