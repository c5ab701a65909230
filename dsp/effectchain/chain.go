package effectchain

import (
	"fmt"
	"maps"
)

type slotRuntime struct {
	kind   string
	effect Effect
	params map[string]float64
}

// Chain owns the effect runtimes of one track and processes stereo blocks
// through them in slot order.
//
// A Chain is not safe for concurrent use; the render goroutine owns it.
type Chain struct {
	ctx      Context
	registry *Registry

	slots []Slot
	nodes map[string]*slotRuntime

	dry [2][]float64
}

// New creates an empty Chain.
func New(ctx Context, registry *Registry) *Chain {
	return &Chain{
		ctx:      ctx,
		registry: registry,
		nodes:    make(map[string]*slotRuntime),
	}
}

// Context returns the current chain context.
func (c *Chain) Context() Context {
	return c.ctx
}

// SetContext updates the chain context and reconfigures every runtime.
func (c *Chain) SetContext(ctx Context) error {
	if ctx == c.ctx {
		return nil
	}
	c.ctx = ctx

	for i := range c.slots {
		s := &c.slots[i]
		rt := c.nodes[s.ID]
		if rt == nil {
			continue
		}

		if err := rt.effect.Configure(ctx, s.params()); err != nil {
			return fmt.Errorf("effectchain: configure %s %q: %w", s.Kind, s.ID, err)
		}
	}

	return nil
}

// Len returns the number of slots.
func (c *Chain) Len() int {
	return len(c.slots)
}

// Effect returns the runtime of a slot, or nil.
func (c *Chain) Effect(slotID string) Effect {
	rt := c.nodes[slotID]
	if rt == nil {
		return nil
	}

	return rt.effect
}

// Sync reconciles the runtimes with a new slot list. Runtimes whose slot ID
// and kind are unchanged are kept with their DSP state and only reconfigured
// when their parameters differ. Removed slots drop their runtime. On error
// the chain keeps its previous slot list.
func (c *Chain) Sync(slots []Slot) error {
	next := make(map[string]*slotRuntime, len(slots))

	for i := range slots {
		s := &slots[i]

		rt := c.nodes[s.ID]
		if rt == nil || rt.kind != s.Kind {
			effect, err := c.registry.newEffect(c.ctx, s.Kind)
			if err != nil {
				return err
			}

			rt = &slotRuntime{kind: s.Kind, effect: effect}
		}

		if rt.params == nil || !maps.Equal(rt.params, s.Params) {
			if err := rt.effect.Configure(c.ctx, s.params()); err != nil {
				return fmt.Errorf("effectchain: configure %s %q: %w", s.Kind, s.ID, err)
			}
			rt.params = maps.Clone(s.Params)
			if rt.params == nil {
				rt.params = map[string]float64{}
			}
		}

		next[s.ID] = rt
	}

	c.slots = c.slots[:0]
	for _, s := range slots {
		c.slots = append(c.slots, s.Clone())
	}
	c.nodes = next

	return nil
}

// Process runs a stereo block through every enabled slot in order.
func (c *Chain) Process(left, right []float64) {
	if len(left) == 0 {
		return
	}

	for i := range c.slots {
		s := &c.slots[i]
		if !s.Enabled {
			continue
		}

		rt := c.nodes[s.ID]
		if rt == nil {
			continue
		}

		if s.Mix >= 1 {
			rt.effect.Process(left, right)

			continue
		}

		c.processMixed(rt.effect, s.Mix, left, right)
	}
}

func (c *Chain) processMixed(effect Effect, mix float64, left, right []float64) {
	n := len(left)
	if cap(c.dry[0]) < n {
		c.dry[0] = make([]float64, n)
		c.dry[1] = make([]float64, n)
	}

	dryL, dryR := c.dry[0][:n], c.dry[1][:n]
	copy(dryL, left)
	copy(dryR, right)

	effect.Process(left, right)

	dryGain := 1 - mix
	for i := range n {
		left[i] = dryL[i]*dryGain + left[i]*mix
		right[i] = dryR[i]*dryGain + right[i]*mix
	}
}

// Reset clears the DSP state of every runtime.
func (c *Chain) Reset() {
	for _, rt := range c.nodes {
		rt.effect.Reset()
	}
}
