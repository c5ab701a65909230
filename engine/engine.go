package engine

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/dsp/buffer"
	"github.com/cwbudde/algo-daw/dsp/effectchain"
	"github.com/cwbudde/algo-daw/events"
	"github.com/cwbudde/algo-daw/live"
	"github.com/cwbudde/algo-daw/measure/meter"
	"github.com/cwbudde/algo-daw/mixer"
	"github.com/cwbudde/algo-daw/track"
)

// State is the transport state.
type State int

// Transport states.
const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Engine is one audio session. Several engines may run side by side; they
// share nothing unless given the same pool or registry.
type Engine struct {
	cfg      Config
	format   live.Format
	log      *zap.Logger
	registry *effectchain.Registry
	driver   live.Driver
	input    live.Input
	pool     *buffer.Pool
	bus      *events.Bus
	mail     *mailbox

	mu       sync.Mutex
	tracks   []*track.Track // never mutated in place
	clock    Clock
	master   mixer.MasterSettings
	state    State
	recTrack string
	closed   bool

	// Render side. Lock order is mu before renderMu; the driver callback
	// takes only renderMu.
	renderMu sync.Mutex
	graph    *mixer.Graph
	current  *blockState
	capture  *capture
	inL, inR []float64

	frame atomic.Int64
	meter atomic.Pointer[meter.Meter]
}

// New creates a stopped engine with no tracks. It fails with
// daw.ErrIntegrationFailure when the format is outside the supported
// limits.
func New(cfg Config, opts ...Option) (*Engine, error) {
	cfg = cfg.withDefaults()

	if err := cfg.Format().Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	clock := DefaultClock()
	clock.Tempo = cfg.Tempo
	if err := clock.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Master.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	o := applyOptions(opts...)

	e := &Engine{
		cfg:      cfg,
		format:   cfg.Format(),
		log:      o.logger,
		registry: o.registry,
		driver:   o.driver,
		input:    o.input,
		pool:     o.pool,
		bus:      events.NewBus(),
		mail:     newMailbox(),
		clock:    clock,
		master:   cfg.Master,
		inL:      make([]float64, cfg.BlockSize),
		inR:      make([]float64, cfg.BlockSize),
	}

	e.log.Info("engine created",
		zap.Float64("sample_rate", cfg.SampleRate),
		zap.Int("block_size", cfg.BlockSize),
	)

	return e, nil
}

// Config returns the configuration the engine was created with.
func (e *Engine) Config() Config { return e.cfg }

// Registry returns the effect registry.
func (e *Engine) Registry() *effectchain.Registry { return e.registry }

// Subscribe registers an event subscriber; see events.Bus.Subscribe.
func (e *Engine) Subscribe(buffer int) *events.Subscription {
	return e.bus.Subscribe(buffer)
}

// State returns the transport state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.state
}

// Recording reports whether a recording is in progress.
func (e *Engine) Recording() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.recTrack != ""
}

// Position returns the transport position in seconds.
func (e *Engine) Position() float64 {
	return float64(e.frame.Load()) / e.format.SampleRate
}

// Frame returns the transport position in frames.
func (e *Engine) Frame() int64 {
	return e.frame.Load()
}

// Meter returns the latest master meter reading. Before the first
// playback it is the zero Reading.
func (e *Engine) Meter() meter.Reading {
	m := e.meter.Load()
	if m == nil {
		return meter.Reading{}
	}

	return m.Latest()
}

// Clock returns a copy of the project clock.
func (e *Engine) Clock() Clock {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.clock.clone()
}

// Master returns the master bus settings.
func (e *Engine) Master() mixer.MasterSettings {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.master
}

// Close stops playback, releases the live graph and closes every event
// subscription. A closed engine rejects all further calls.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return fmt.Errorf("engine: already closed: %w", daw.ErrInvalidState)
	}

	var errs []error
	if e.state == Playing {
		errs = append(errs, e.driver.Stop())
	}

	e.renderMu.Lock()
	if e.graph != nil {
		errs = append(errs, e.graph.Release())
		e.graph = nil
	}
	e.capture = nil
	e.current = nil
	e.renderMu.Unlock()

	e.meter.Store(nil)
	e.state = Stopped
	e.recTrack = ""
	e.closed = true
	e.bus.Close()

	e.log.Info("engine closed")

	return errors.Join(errs...)
}

func (e *Engine) checkOpen() error {
	if e.closed {
		return fmt.Errorf("engine: closed: %w", daw.ErrInvalidState)
	}

	return nil
}

// fail logs a rejected command and returns err wrapped with the operation.
func (e *Engine) fail(op string, err error) error {
	e.log.Debug("command rejected", zap.String("op", op), zap.Error(err))

	return fmt.Errorf("engine: %s: %w", op, err)
}

func (e *Engine) emit(evs ...events.Event) {
	for _, ev := range evs {
		e.bus.Publish(ev)
	}
}

func (e *Engine) indexLocked(id string) int {
	return slices.IndexFunc(e.tracks, func(t *track.Track) bool { return t.ID == id })
}

func (e *Engine) blockStateLocked() *blockState {
	st := &blockState{
		snap: mixer.Snapshot{
			SampleRate:  e.format.SampleRate,
			BlockSize:   e.format.BlockSize,
			Tempo:       e.clock.Tempo,
			BeatsPerBar: e.clock.TimeSignature.Numerator,
			Tracks:      slices.Clone(e.tracks),
			Master:      e.master,
		},
	}

	if e.clock.Loop != nil {
		l := *e.clock.Loop
		st.loop = &l
	}

	return st
}

// publishLocked hands the current state to the render goroutine.
func (e *Engine) publishLocked() {
	e.mail.put(e.blockStateLocked())
}

// commitLocked installs a new track list after checking its routing.
func (e *Engine) commitLocked(tracks []*track.Track) error {
	if _, err := mixer.ProcessingOrder(tracks); err != nil {
		return err
	}

	e.tracks = tracks
	e.publishLocked()

	return nil
}
