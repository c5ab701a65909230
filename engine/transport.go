package engine

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/dsp/core"
	"github.com/cwbudde/algo-daw/events"
	"github.com/cwbudde/algo-daw/mixer"
)

// Play starts playback at from seconds. From Stopped the live graph starts
// with clean effect state; from Paused it keeps its state. Play while
// playing fails with daw.ErrInvalidState.
func (e *Engine) Play(from float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkOpen(); err != nil {
		return e.fail("play", err)
	}

	if e.state == Playing {
		return e.fail("play", fmt.Errorf("already playing: %w", daw.ErrInvalidState))
	}

	if !(from >= 0) || math.IsInf(from, 0) {
		return e.fail("play", fmt.Errorf("position %g: %w", from, daw.ErrInvalidRange))
	}

	if err := e.startLocked(core.SecondsToFrames(from, e.format.SampleRate), e.state == Stopped); err != nil {
		return e.fail("play", err)
	}

	return nil
}

// Resume continues paused playback where it stopped.
func (e *Engine) Resume() error {
	return e.Play(e.Position())
}

// Pause halts playback and keeps the position. Only valid while playing
// and not recording.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkOpen(); err != nil {
		return e.fail("pause", err)
	}

	if e.state != Playing {
		return e.fail("pause", fmt.Errorf("transport is %s: %w", e.state, daw.ErrInvalidState))
	}

	if e.recTrack != "" {
		return e.fail("pause", fmt.Errorf("recording in progress: %w", daw.ErrInvalidState))
	}

	if err := e.driver.Stop(); err != nil {
		return e.fail("pause", fmt.Errorf("%w: %w", err, daw.ErrIntegrationFailure))
	}

	e.state = Paused
	e.emit(events.Event{Type: events.PlaybackPaused, Position: e.Position()})

	return nil
}

// Stop halts playback and rewinds to 0. A recording in progress is
// finished first. Stop while stopped fails with daw.ErrInvalidState.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkOpen(); err != nil {
		return e.fail("stop", err)
	}

	if e.state == Stopped {
		return e.fail("stop", fmt.Errorf("already stopped: %w", daw.ErrInvalidState))
	}

	var errs []error
	if e.state == Playing {
		if err := e.driver.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("%w: %w", err, daw.ErrIntegrationFailure))
		}
	}

	if e.recTrack != "" {
		// an empty take is dropped silently
		if _, err := e.stopRecordingLocked(); err != nil && !errors.Is(err, errNothingCaptured) {
			errs = append(errs, err)
		}
	}

	// a callback already in flight finishes before the rewind
	e.renderMu.Lock()
	pos := e.Position()
	e.frame.Store(0)
	e.renderMu.Unlock()

	e.state = Stopped
	e.emit(events.Event{Type: events.PlaybackStopped, Position: pos})
	e.log.Info("playback stopped", zap.Float64("position", pos))

	if err := errors.Join(errs...); err != nil {
		return e.fail("stop", err)
	}

	return nil
}

// startLocked positions the transport and starts the driver. A fresh start
// rebuilds the live graph from the current state. If the driver fails to
// start, graph, meter and position are restored.
func (e *Engine) startLocked(frame int64, fresh bool) error {
	e.renderMu.Lock()
	prevGraph, prevCurrent := e.graph, e.current
	prevMeter, prevFrame := e.meter.Load(), e.frame.Load()

	var built *mixer.Graph
	if fresh || e.graph == nil {
		st := e.blockStateLocked()
		g, err := mixer.NewGraph(st.snap, e.registry, e.pool)
		if err != nil {
			e.renderMu.Unlock()

			return err
		}

		// the rebuilt graph already reflects everything pending
		e.mail.take()
		built = g
		e.graph = g
		e.current = st
		e.meter.Store(g.Master().Meter())
	} else {
		e.applyPending()
	}
	e.frame.Store(frame)
	e.renderMu.Unlock()

	if err := e.driver.Start(e.format, e.process); err != nil {
		e.renderMu.Lock()
		if built != nil {
			e.graph = prevGraph
			e.current = prevCurrent
			e.meter.Store(prevMeter)
			if rerr := built.Release(); rerr != nil {
				e.log.Warn("releasing unused graph", zap.Error(rerr))
			}
		}
		e.frame.Store(prevFrame)
		e.renderMu.Unlock()

		return fmt.Errorf("start driver: %w: %w", err, daw.ErrIntegrationFailure)
	}

	if built != nil && prevGraph != nil {
		if err := prevGraph.Release(); err != nil {
			e.log.Warn("releasing live graph", zap.Error(err))
		}
	}

	e.state = Playing
	e.emit(events.Event{Type: events.PlaybackStarted, Position: e.Position()})
	e.log.Info("playback started", zap.Float64("position", e.Position()), zap.Bool("fresh", fresh))

	return nil
}

// applyPending syncs the live graph to the newest published state. Callers
// hold renderMu.
func (e *Engine) applyPending() {
	st, ok := e.mail.take()
	if !ok {
		return
	}

	if err := e.graph.Sync(st.snap); err != nil {
		e.log.Warn("snapshot dropped", zap.Error(err))

		return
	}
	e.current = st
}

// process is the driver callback. It applies pending state, captures
// input while recording and renders one block.
func (e *Engine) process(left, right []float64) {
	e.renderMu.Lock()
	defer e.renderMu.Unlock()

	if e.graph == nil {
		return
	}

	e.applyPending()

	pos := e.frame.Load()
	n := min(len(left), len(right))

	var loop *Loop
	if c := e.capture; c != nil {
		e.record(c, pos, n)
	} else {
		loop = e.current.loop
	}

	e.frame.Store(e.render(left[:n], right[:n], pos, loop))
}

// render plays the block starting at pos and returns the position after it.
// A block that crosses the loop end is split and continues at the loop
// start.
func (e *Engine) render(left, right []float64, pos int64, loop *Loop) int64 {
	var loopStart, loopEnd int64
	if loop != nil {
		loopStart = core.SecondsToFrames(loop.Start, e.format.SampleRate)
		loopEnd = core.SecondsToFrames(loop.End, e.format.SampleRate)
	}

	n := len(left)
	for off := 0; off < n; {
		seg := n - off
		wraps := loop != nil && loopEnd > loopStart && pos < loopEnd && pos+int64(seg) >= loopEnd
		if wraps {
			seg = int(loopEnd - pos)
		}

		if seg > 0 {
			e.graph.Process(left[off:off+seg], right[off:off+seg], pos)
		}

		off += seg
		pos += int64(seg)
		if wraps {
			pos = loopStart
		}
	}

	return pos
}

// SetTempo sets the tempo in BPM. Clips keep their positions in seconds.
func (e *Engine) SetTempo(bpm float64) error {
	return e.editClock("set tempo", func(c *Clock) error {
		if err := checkTempo(bpm); err != nil {
			return err
		}
		c.Tempo = bpm

		return nil
	})
}

// SetTimeSignature sets the time signature.
func (e *Engine) SetTimeSignature(numerator, denominator int) error {
	return e.editClock("set time signature", func(c *Clock) error {
		ts := TimeSignature{Numerator: numerator, Denominator: denominator}
		if err := ts.Validate(); err != nil {
			return err
		}
		c.TimeSignature = ts

		return nil
	})
}

// SetLoop enables looping over [start, end) seconds in live playback.
// Looping is suspended while recording.
func (e *Engine) SetLoop(start, end float64) error {
	return e.editClock("set loop", func(c *Clock) error {
		l := Loop{Start: start, End: end}
		if err := l.Validate(); err != nil {
			return err
		}
		c.Loop = &l

		return nil
	})
}

// ClearLoop disables looping.
func (e *Engine) ClearLoop() error {
	return e.editClock("clear loop", func(c *Clock) error {
		c.Loop = nil

		return nil
	})
}

func (e *Engine) editClock(op string, fn func(c *Clock) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkOpen(); err != nil {
		return e.fail(op, err)
	}

	c := e.clock.clone()
	if err := fn(&c); err != nil {
		return e.fail(op, err)
	}

	e.clock = c
	e.publishLocked()

	return nil
}

// SetMasterGain sets the master gain in dB.
func (e *Engine) SetMasterGain(dB float64) error {
	return e.editMaster("set master gain", func(m *mixer.MasterSettings) {
		if dB < core.SilenceDB {
			dB = math.Inf(-1)
		}
		m.GainDB = dB
	})
}

// SetLimiterCeiling sets the master limiter ceiling in dBFS, within
// [-24, 0].
func (e *Engine) SetLimiterCeiling(dB float64) error {
	return e.editMaster("set limiter ceiling", func(m *mixer.MasterSettings) { m.CeilingDB = dB })
}

// SetLimiterRelease sets the master limiter release in milliseconds.
func (e *Engine) SetLimiterRelease(ms float64) error {
	return e.editMaster("set limiter release", func(m *mixer.MasterSettings) { m.ReleaseMs = ms })
}

func (e *Engine) editMaster(op string, fn func(m *mixer.MasterSettings)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkOpen(); err != nil {
		return e.fail(op, err)
	}

	m := e.master
	fn(&m)
	if err := m.Validate(); err != nil {
		return e.fail(op, err)
	}

	e.master = m
	e.publishLocked()

	return nil
}
