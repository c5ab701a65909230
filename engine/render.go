package engine

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/dsp/buffer"
	"github.com/cwbudde/algo-daw/dsp/core"
	"github.com/cwbudde/algo-daw/dsp/effectchain"
	"github.com/cwbudde/algo-daw/events"
	"github.com/cwbudde/algo-daw/mixer"
)

// RenderOption configures an offline render.
type RenderOption func(*renderOptions)

type renderOptions struct {
	start     float64
	progress  func(done, total int)
	pool      *buffer.Pool
	blockSize int
}

// WithStart renders the timeline from start seconds instead of 0.
func WithStart(seconds float64) RenderOption {
	return func(o *renderOptions) { o.start = seconds }
}

// WithProgress reports the number of rendered blocks after each block.
func WithProgress(fn func(done, total int)) RenderOption {
	return func(o *renderOptions) { o.progress = fn }
}

// WithRenderPool takes the graph buffers from p instead of a private
// unbounded pool.
func WithRenderPool(p *buffer.Pool) RenderOption {
	return func(o *renderOptions) { o.pool = p }
}

// WithBlockSize overrides the processing block size. Results match live
// playback only at the engine's block size.
func WithBlockSize(n int) RenderOption {
	return func(o *renderOptions) { o.blockSize = n }
}

// RenderOffline renders duration+tail seconds of the current session into
// a new stereo buffer. It builds its own graph, leaves the transport
// untouched and works in any transport state. ctx is checked between
// blocks; on cancellation or any other failure no buffer is returned.
func (e *Engine) RenderOffline(ctx context.Context, duration, tail float64, opts ...RenderOption) (*buffer.Buffer, error) {
	o := renderOptions{blockSize: e.format.BlockSize}
	for _, opt := range opts {
		opt(&o)
	}

	if err := checkRender(duration, tail, o); err != nil {
		return nil, e.fail("render", err)
	}

	e.mu.Lock()
	if err := e.checkOpen(); err != nil {
		e.mu.Unlock()

		return nil, e.fail("render", err)
	}
	st := e.blockStateLocked()
	e.mu.Unlock()

	snap := st.snap
	snap.BlockSize = o.blockSize

	total := int(core.SecondsToFrames(duration+tail, snap.SampleRate))
	if total <= 0 {
		return nil, e.fail("render", fmt.Errorf("%g s is shorter than one frame: %w", duration+tail, daw.ErrInvalidRange))
	}

	buf, err := renderSnapshot(ctx, snap, e.registry, o, total, e.log)
	if err != nil {
		return nil, e.fail("render", err)
	}

	e.emit(events.Event{Type: events.RenderCompleted, Duration: duration + tail})
	e.log.Info("render completed", zap.Float64("seconds", duration+tail), zap.Int("frames", total))

	return buf, nil
}

func checkRender(duration, tail float64, o renderOptions) error {
	switch {
	case !(duration > 0) || math.IsInf(duration, 0):
		return fmt.Errorf("duration %g: %w", duration, daw.ErrInvalidRange)
	case !(tail >= 0) || math.IsInf(tail, 0):
		return fmt.Errorf("tail %g: %w", tail, daw.ErrInvalidRange)
	case !(o.start >= 0) || math.IsInf(o.start, 0):
		return fmt.Errorf("start %g: %w", o.start, daw.ErrInvalidRange)
	case o.blockSize < core.MinBlockSize || o.blockSize > core.MaxBlockSize:
		return fmt.Errorf("block size %d outside [%d, %d]: %w", o.blockSize, core.MinBlockSize, core.MaxBlockSize, daw.ErrInvalidParameter)
	}

	return nil
}

func renderSnapshot(
	ctx context.Context,
	snap mixer.Snapshot,
	registry *effectchain.Registry,
	o renderOptions,
	total int,
	log *zap.Logger,
) (*buffer.Buffer, error) {
	pool := o.pool
	if pool == nil {
		pool = buffer.NewPool(buffer.Unbounded())
	}

	g, err := mixer.NewGraph(snap, registry, pool)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := g.Release(); err != nil {
			log.Warn("releasing render graph", zap.Error(err))
		}
	}()

	out := buffer.New(2, total)
	left, right := out.Channel(0), out.Channel(1)
	frame0 := core.SecondsToFrames(o.start, snap.SampleRate)

	bs := snap.BlockSize
	blocks := (total + bs - 1) / bs

	for b := range blocks {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("cancelled after %d of %d blocks: %w", b, blocks, err)
		}

		s := b * bs
		end := min(s+bs, total)
		g.Process(left[s:end], right[s:end], frame0+int64(s))

		if o.progress != nil {
			o.progress(b+1, blocks)
		}
	}

	return out, nil
}

// RenderJob is an offline render running in the background.
type RenderJob struct {
	cancel context.CancelFunc
	done   chan struct{}

	buf *buffer.Buffer
	err error
}

// StartRender runs RenderOffline on its own goroutine.
func (e *Engine) StartRender(ctx context.Context, duration, tail float64, opts ...RenderOption) *RenderJob {
	ctx, cancel := context.WithCancel(ctx)

	j := &RenderJob{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(j.done)
		defer cancel()

		j.buf, j.err = e.RenderOffline(ctx, duration, tail, opts...)
	}()

	return j
}

// Wait blocks until the render finishes and returns its result.
func (j *RenderJob) Wait() (*buffer.Buffer, error) {
	<-j.done

	return j.buf, j.err
}

// Cancel asks the render to stop. Wait then reports the cancellation.
func (j *RenderJob) Cancel() { j.cancel() }

// Done is closed when the render has finished.
func (j *RenderJob) Done() <-chan struct{} { return j.done }
