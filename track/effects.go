package track

import (
	"fmt"
	"slices"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/dsp/effectchain"
)

// EffectIndex returns the position of an effect slot, or -1.
func (t *Track) EffectIndex(id string) int {
	return slices.IndexFunc(t.Effects, func(s effectchain.Slot) bool { return s.ID == id })
}

// Effect returns a pointer to the slot with the given ID.
func (t *Track) Effect(id string) (*effectchain.Slot, error) {
	i := t.EffectIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("track: effect %q on %q: %w", id, t.Name, daw.ErrNotFound)
	}

	return &t.Effects[i], nil
}

// AddEffect inserts a slot at index; -1 appends.
func (t *Track) AddEffect(slot effectchain.Slot, index int) error {
	if slot.ID == "" || slot.Kind == "" {
		return fmt.Errorf("track: effect slot needs an ID and a kind: %w", daw.ErrInvalidParameter)
	}

	if t.EffectIndex(slot.ID) >= 0 {
		return fmt.Errorf("track: effect %q already on %q: %w", slot.ID, t.Name, daw.ErrInvalidParameter)
	}

	if index == -1 {
		index = len(t.Effects)
	}

	if index < 0 || index > len(t.Effects) {
		return fmt.Errorf("track: effect index %d outside [0, %d]: %w", index, len(t.Effects), daw.ErrInvalidParameter)
	}

	t.Effects = slices.Insert(t.Effects, index, slot.Clone())

	return nil
}

// RemoveEffect removes and returns the slot with the given ID.
func (t *Track) RemoveEffect(id string) (effectchain.Slot, error) {
	i := t.EffectIndex(id)
	if i < 0 {
		return effectchain.Slot{}, fmt.Errorf("track: effect %q on %q: %w", id, t.Name, daw.ErrNotFound)
	}

	s := t.Effects[i]
	t.Effects = slices.Delete(t.Effects, i, i+1)

	return s, nil
}

// ReorderEffect moves a slot to a new index.
func (t *Track) ReorderEffect(id string, index int) error {
	i := t.EffectIndex(id)
	if i < 0 {
		return fmt.Errorf("track: effect %q on %q: %w", id, t.Name, daw.ErrNotFound)
	}

	if index < 0 || index >= len(t.Effects) {
		return fmt.Errorf("track: effect index %d outside [0, %d): %w", index, len(t.Effects), daw.ErrInvalidParameter)
	}

	s := t.Effects[i]
	t.Effects = slices.Delete(t.Effects, i, i+1)
	t.Effects = slices.Insert(t.Effects, index, s)

	return nil
}
