package engine

import (
	"fmt"

	"go.uber.org/zap"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/events"
	"github.com/cwbudde/algo-daw/mixer"
	"github.com/cwbudde/algo-daw/project"
)

// Snapshot returns the session as project data. Audio sources carry IDs
// only; project.StoreSources writes them out.
func (e *Engine) Snapshot() project.Project {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := project.Project{
		Version:    project.Version,
		SampleRate: e.format.SampleRate,
		BlockSize:  e.format.BlockSize,
		Tempo:      e.clock.Tempo,
		TimeSignature: project.TimeSignature{
			Numerator:   e.clock.TimeSignature.Numerator,
			Denominator: e.clock.TimeSignature.Denominator,
		},
		Master: project.FromMaster(e.master),
		Tracks: project.FromTracks(e.tracks),
	}

	if l := e.clock.Loop; l != nil {
		p.Loop = &project.Loop{Start: l.Start, End: l.End}
	}

	return p
}

// Load replaces the whole session with p. Audio sources come from res.
// Everything is validated before anything changes; on error the session
// is untouched. Loading is refused while recording.
func (e *Engine) Load(p project.Project, res project.SourceResolver) error {
	clock, err := clockFromProject(p)
	if err != nil {
		return e.fail("load", err)
	}

	master := p.Master.Settings()
	if err := master.Validate(); err != nil {
		return e.fail("load", err)
	}

	tracks, err := project.BuildTracks(p.Tracks, e.registry, res)
	if err != nil {
		return e.fail("load", err)
	}

	if _, err := mixer.ProcessingOrder(tracks); err != nil {
		return e.fail("load", err)
	}

	if p.SampleRate > 0 && p.SampleRate != e.format.SampleRate {
		e.log.Debug("project sample rate differs from engine",
			zap.Float64("project", p.SampleRate),
			zap.Float64("engine", e.format.SampleRate),
		)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkOpen(); err != nil {
		return e.fail("load", err)
	}

	if e.recTrack != "" {
		return e.fail("load", fmt.Errorf("recording in progress: %w", daw.ErrInvalidState))
	}

	old := e.tracks
	e.tracks = tracks
	e.clock = clock
	e.master = master
	e.publishLocked()

	for _, t := range old {
		e.emit(events.Event{Type: events.TrackRemoved, TrackID: t.ID})
	}
	for _, t := range tracks {
		e.emit(events.Event{Type: events.TrackCreated, TrackID: t.ID})
	}

	e.log.Info("project loaded", zap.String("name", p.Name), zap.Int("tracks", len(tracks)))

	return nil
}

func clockFromProject(p project.Project) (Clock, error) {
	c := DefaultClock()

	if p.Tempo != 0 {
		c.Tempo = p.Tempo
	}

	if p.TimeSignature != (project.TimeSignature{}) {
		c.TimeSignature = TimeSignature{Numerator: p.TimeSignature.Numerator, Denominator: p.TimeSignature.Denominator}
	}

	if p.Loop != nil {
		c.Loop = &Loop{Start: p.Loop.Start, End: p.Loop.End}
	}

	return c, c.Validate()
}
