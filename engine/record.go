package engine

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/clip"
	"github.com/cwbudde/algo-daw/dsp/buffer"
	"github.com/cwbudde/algo-daw/events"
	"github.com/cwbudde/algo-daw/track"
)

var errNothingCaptured = fmt.Errorf("nothing captured: %w", daw.ErrInvalidState)

// capture accumulates input on the render goroutine.
type capture struct {
	trackID string
	// start is the transport frame of the first captured block, or -1.
	start       int64
	left, right []float64
}

// record appends one block of input. Callers hold renderMu.
func (e *Engine) record(c *capture, pos int64, n int) {
	if c.start < 0 {
		c.start = pos
	}

	l, r := e.inL[:n], e.inR[:n]
	e.input.Read(l, r)
	c.left = append(c.left, l...)
	c.right = append(c.right, r...)
}

// StartRecording captures the engine input onto an armed audio track.
// Capture begins with the next live block. From Stopped it also starts
// playback at the current position.
func (e *Engine) StartRecording(trackID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkOpen(); err != nil {
		return e.fail("start recording", err)
	}

	if e.recTrack != "" {
		return e.fail("start recording", fmt.Errorf("already recording: %w", daw.ErrInvalidState))
	}

	if e.state == Paused {
		return e.fail("start recording", fmt.Errorf("transport is paused: %w", daw.ErrInvalidState))
	}

	if e.input == nil {
		return e.fail("start recording", fmt.Errorf("no input configured: %w", daw.ErrIntegrationFailure))
	}

	i := e.indexLocked(trackID)
	if i < 0 {
		return e.fail("start recording", fmt.Errorf("track %q: %w", trackID, daw.ErrNotFound))
	}

	t := e.tracks[i]
	if t.Type != track.TypeAudio || !t.Armed {
		return e.fail("start recording", fmt.Errorf("%s track %q is not armed: %w", t.Type, t.Name, daw.ErrInvalidState))
	}

	e.renderMu.Lock()
	e.capture = &capture{trackID: trackID, start: -1}
	e.renderMu.Unlock()

	if e.state == Stopped {
		if err := e.startLocked(e.frame.Load(), true); err != nil {
			e.renderMu.Lock()
			e.capture = nil
			e.renderMu.Unlock()

			return e.fail("start recording", err)
		}
	}

	e.recTrack = trackID
	e.emit(events.Event{Type: events.RecordingStarted, TrackID: trackID, Position: e.Position()})
	e.log.Info("recording started", zap.String("track", t.Name))

	return nil
}

// StopRecording ends the take and places it as a new clip on the recorded
// track at the position capture began. It returns the clip ID. Playback
// continues. A take with no captured audio fails with
// daw.ErrInvalidState.
func (e *Engine) StopRecording() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkOpen(); err != nil {
		return "", e.fail("stop recording", err)
	}

	if e.recTrack == "" {
		return "", e.fail("stop recording", fmt.Errorf("not recording: %w", daw.ErrInvalidState))
	}

	id, err := e.stopRecordingLocked()
	if err != nil {
		return "", e.fail("stop recording", err)
	}

	return id, nil
}

func (e *Engine) stopRecordingLocked() (string, error) {
	e.renderMu.Lock()
	c := e.capture
	e.capture = nil
	e.renderMu.Unlock()

	trackID := e.recTrack
	e.recTrack = ""
	e.emit(events.Event{Type: events.RecordingStopped, TrackID: trackID, Position: e.Position()})

	if c == nil || c.start < 0 || len(c.left) == 0 {
		return "", errNothingCaptured
	}

	sr := e.format.SampleRate
	src, err := clip.NewAudioSource("", sr, buffer.FromChannels(c.left, c.right))
	if err != nil {
		return "", err
	}

	take, err := clip.New(src, float64(c.start)/sr, 0, float64(len(c.left))/sr)
	if err != nil {
		return "", err
	}

	i := e.indexLocked(trackID)
	if i < 0 {
		return "", fmt.Errorf("recorded track %q: %w", trackID, daw.ErrNotFound)
	}

	t := e.tracks[i].Clone()
	if err := t.AddClip(take); err != nil {
		return "", err
	}

	tracks := slices.Clone(e.tracks)
	tracks[i] = t
	if err := e.commitLocked(tracks); err != nil {
		return "", err
	}

	e.emit(events.Event{Type: events.ClipAdded, TrackID: trackID, ClipID: take.ID})
	e.log.Info("recording stopped",
		zap.String("track", t.Name),
		zap.String("clip", take.ID),
		zap.Float64("seconds", take.Duration),
	)

	return take.ID, nil
}
