package mixer

import (
	"errors"
	"fmt"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/dsp/buffer"
	"github.com/cwbudde/algo-daw/dsp/core"
	"github.com/cwbudde/algo-daw/dsp/effectchain"
	"github.com/cwbudde/algo-daw/track"
)

type sendRoute struct {
	target   *trackNode
	level    float64
	preFader bool
}

type trackNode struct {
	tr    *track.Track
	chain *effectchain.Chain

	// out holds the track's block; in accumulates aux input.
	out *buffer.Buffer
	in  *buffer.Buffer

	audible      bool
	gainL, gainR float64
	sends        []sendRoute
}

// Graph renders a Snapshot. It owns one effect chain per track and a set of
// pooled block buffers. A Graph is not safe for concurrent use: one render
// goroutine drives it and control changes arrive through Sync.
type Graph struct {
	snap     Snapshot
	registry *effectchain.Registry
	pool     *buffer.Pool

	nodes []*trackNode // declared order
	order []*trackNode // processing order
	byID  map[string]*trackNode

	master *MasterBus
}

// NewGraph builds a graph for snap, acquiring its block buffers from pool.
func NewGraph(snap Snapshot, registry *effectchain.Registry, pool *buffer.Pool) (*Graph, error) {
	if registry == nil || pool == nil {
		return nil, fmt.Errorf("mixer: graph needs a registry and a pool: %w", daw.ErrInvalidParameter)
	}

	if err := snap.Validate(); err != nil {
		return nil, err
	}

	master, err := NewMasterBus(snap.Master, snap.SampleRate)
	if err != nil {
		return nil, err
	}

	g := &Graph{
		snap:     Snapshot{SampleRate: snap.SampleRate, BlockSize: snap.BlockSize},
		registry: registry,
		pool:     pool,
		byID:     map[string]*trackNode{},
		master:   master,
	}

	if err := g.Sync(snap); err != nil {
		_ = g.Release()

		return nil, err
	}

	return g, nil
}

// Snapshot returns the snapshot the graph currently renders.
func (g *Graph) Snapshot() Snapshot { return g.snap }

// Master returns the master bus.
func (g *Graph) Master() *MasterBus { return g.master }

// Sync switches the graph to a new snapshot. Tracks that keep their ID and
// type keep their effect state and buffers; new tracks get fresh chains;
// removed tracks release their buffers. The sample rate and block size
// cannot change. On error the graph keeps rendering the previous snapshot.
func (g *Graph) Sync(snap Snapshot) error {
	if snap.SampleRate != g.snap.SampleRate || snap.BlockSize != g.snap.BlockSize {
		return fmt.Errorf("mixer: format change %gHz/%d -> %gHz/%d: %w",
			g.snap.SampleRate, g.snap.BlockSize, snap.SampleRate, snap.BlockSize, daw.ErrInvalidState)
	}

	if err := snap.Validate(); err != nil {
		return err
	}

	if err := g.checkEffects(snap.Tracks); err != nil {
		return err
	}

	order, err := ProcessingOrder(snap.Tracks)
	if err != nil {
		return err
	}

	ctx := effectchain.Context{SampleRate: snap.SampleRate, Tempo: snap.Tempo, BeatsPerBar: snap.BeatsPerBar}

	nodes := make([]*trackNode, len(snap.Tracks))
	byID := make(map[string]*trackNode, len(snap.Tracks))
	var created []*trackNode

	for i, t := range snap.Tracks {
		n := g.byID[t.ID]
		if n == nil || n.tr.Type != t.Type {
			n, err = g.newNode(ctx)
			if err != nil {
				g.releaseNodes(created)

				return err
			}
			created = append(created, n)
		}

		nodes[i] = n
		byID[t.ID] = n
	}

	for i, t := range snap.Tracks {
		n := nodes[i]
		if err := n.chain.SetContext(ctx); err != nil {
			g.releaseNodes(created)

			return err
		}

		if err := n.chain.Sync(t.Effects); err != nil {
			g.releaseNodes(created)

			return fmt.Errorf("mixer: track %q: %w", t.Name, err)
		}
	}

	if err := g.master.Configure(snap.Master); err != nil {
		g.releaseNodes(created)

		return err
	}

	// Commit.
	for id, n := range g.byID {
		if byID[id] != n {
			g.releaseNode(n)
		}
	}

	audible := Audible(snap.Tracks, order)
	for i, t := range snap.Tracks {
		n := nodes[i]
		n.tr = t
		n.audible = audible[i]
		n.gainL, n.gainR = core.PanGains(t.Pan)
		gain := t.Gain()
		n.gainL *= gain
		n.gainR *= gain

		n.sends = n.sends[:0]
		for _, s := range t.Sends {
			n.sends = append(n.sends, sendRoute{target: byID[s.Target], level: s.Level, preFader: s.PreFader})
		}
	}

	g.order = g.order[:0]
	for _, i := range order {
		g.order = append(g.order, nodes[i])
	}

	g.nodes = nodes
	g.byID = byID
	g.snap = snap

	return nil
}

func (g *Graph) checkEffects(tracks []*track.Track) error {
	for _, t := range tracks {
		for _, s := range t.Effects {
			def, ok := g.registry.Lookup(s.Kind)
			if !ok {
				return fmt.Errorf("mixer: track %q: unknown effect kind %q: %w", t.Name, s.Kind, daw.ErrInvalidParameter)
			}

			if err := def.Schema.Validate(s.Params); err != nil {
				return fmt.Errorf("mixer: track %q: %w", t.Name, err)
			}
		}
	}

	return nil
}

func (g *Graph) newNode(ctx effectchain.Context) (*trackNode, error) {
	out, err := g.pool.Acquire(2, g.snap.BlockSize)
	if err != nil {
		return nil, err
	}

	in, err := g.pool.Acquire(2, g.snap.BlockSize)
	if err != nil {
		_ = g.pool.Release(out)

		return nil, err
	}
	// pooled buffers are not cleared
	in.Zero()

	return &trackNode{
		chain: effectchain.New(ctx, g.registry),
		out:   out,
		in:    in,
	}, nil
}

func (g *Graph) releaseNode(n *trackNode) error {
	return errors.Join(g.pool.Release(n.out), g.pool.Release(n.in))
}

func (g *Graph) releaseNodes(nodes []*trackNode) {
	for _, n := range nodes {
		_ = g.releaseNode(n)
	}
}

// Release returns every buffer to the pool. The graph must not be used
// afterwards.
func (g *Graph) Release() error {
	var errs []error
	for _, n := range g.byID {
		errs = append(errs, g.releaseNode(n))
	}

	g.nodes, g.order, g.byID = nil, nil, nil

	return errors.Join(errs...)
}

// Reset clears all effect, limiter and meter state.
func (g *Graph) Reset() {
	for _, n := range g.nodes {
		n.chain.Reset()
		n.in.Zero()
	}
	g.master.Reset()
}
