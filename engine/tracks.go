package engine

import (
	"fmt"
	"slices"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/clip"
	"github.com/cwbudde/algo-daw/dsp/effectchain"
	"github.com/cwbudde/algo-daw/events"
	"github.com/cwbudde/algo-daw/track"
)

// TrackConfig describes a new track.
type TrackConfig struct {
	Name string
	Type track.Type
}

// AddTrack appends a track with default routing (0 dB, centre pan,
// unmuted) and returns its ID.
func (e *Engine) AddTrack(cfg TrackConfig) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkOpen(); err != nil {
		return "", e.fail("add track", err)
	}

	name := cfg.Name
	if name == "" {
		name = fmt.Sprintf("%s %d", cfg.Type, len(e.tracks)+1)
	}

	t, err := track.New(name, cfg.Type)
	if err != nil {
		return "", e.fail("add track", err)
	}

	if err := e.commitLocked(append(slices.Clone(e.tracks), t)); err != nil {
		return "", e.fail("add track", err)
	}

	e.emit(events.Event{Type: events.TrackCreated, TrackID: t.ID})

	return t.ID, nil
}

// RemoveTrack deletes a track together with its clips and effects, and
// removes every send that targets it. The track being recorded cannot be
// removed.
func (e *Engine) RemoveTrack(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkOpen(); err != nil {
		return e.fail("remove track", err)
	}

	i := e.indexLocked(id)
	if i < 0 {
		return e.fail("remove track", fmt.Errorf("track %q: %w", id, daw.ErrNotFound))
	}

	if id == e.recTrack {
		return e.fail("remove track", fmt.Errorf("track %q is recording: %w", id, daw.ErrInvalidState))
	}

	tracks := make([]*track.Track, 0, len(e.tracks)-1)
	for j, t := range e.tracks {
		if j == i {
			continue
		}

		if t.SendIndex(id) >= 0 {
			t = t.Clone()
			_ = t.RemoveSend(id)
		}
		tracks = append(tracks, t)
	}

	if err := e.commitLocked(tracks); err != nil {
		return e.fail("remove track", err)
	}

	e.emit(events.Event{Type: events.TrackRemoved, TrackID: id})

	return nil
}

// Track returns a copy of the track with the given ID.
func (e *Engine) Track(id string) (*track.Track, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.indexLocked(id)
	if i < 0 {
		return nil, fmt.Errorf("engine: track %q: %w", id, daw.ErrNotFound)
	}

	return e.tracks[i].Clone(), nil
}

// Tracks returns copies of all tracks in declared order.
func (e *Engine) Tracks() []*track.Track {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]*track.Track, len(e.tracks))
	for i, t := range e.tracks {
		out[i] = t.Clone()
	}

	return out
}

// Length returns the end of the last clip in seconds, or 0 for an empty
// session.
func (e *Engine) Length() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	var end float64
	for _, t := range e.tracks {
		for _, c := range t.Clips {
			end = max(end, c.End())
		}
	}

	return end
}

// mutate runs fn on a private copy of a track and commits the copy only if
// fn and the routing check succeed. evs are published after the commit.
func (e *Engine) mutate(op, id string, fn func(t *track.Track) error, evs ...events.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkOpen(); err != nil {
		return e.fail(op, err)
	}

	i := e.indexLocked(id)
	if i < 0 {
		return e.fail(op, fmt.Errorf("track %q: %w", id, daw.ErrNotFound))
	}

	t := e.tracks[i].Clone()
	if err := fn(t); err != nil {
		return e.fail(op, err)
	}

	tracks := slices.Clone(e.tracks)
	tracks[i] = t
	if err := e.commitLocked(tracks); err != nil {
		return e.fail(op, err)
	}

	e.emit(evs...)

	return nil
}

// SetName renames a track.
func (e *Engine) SetName(id, name string) error {
	return e.mutate("set name", id, func(t *track.Track) error {
		t.Name = name

		return nil
	})
}

// SetVolume sets the fader level in dB; see track.Track.SetVolume.
func (e *Engine) SetVolume(id string, dB float64) error {
	return e.mutate("set volume", id, func(t *track.Track) error { return t.SetVolume(dB) })
}

// SetPan sets the stereo position in [-1, 1].
func (e *Engine) SetPan(id string, pan float64) error {
	return e.mutate("set pan", id, func(t *track.Track) error { return t.SetPan(pan) })
}

// SetMute sets the mute flag.
func (e *Engine) SetMute(id string, mute bool) error {
	return e.mutate("set mute", id, func(t *track.Track) error {
		t.SetMute(mute)

		return nil
	})
}

// SetSolo sets the solo flag. Solo is global: while any track is soloed
// only soloed tracks and the aux tracks they feed are heard.
func (e *Engine) SetSolo(id string, solo bool) error {
	return e.mutate("set solo", id, func(t *track.Track) error {
		t.SetSolo(solo)

		return nil
	})
}

// SetArmed arms an audio track for recording. The track being recorded
// cannot be disarmed.
func (e *Engine) SetArmed(id string, armed bool) error {
	return e.mutate("set armed", id, func(t *track.Track) error {
		if !armed && t.ID == e.recTrack {
			return fmt.Errorf("track %q is recording: %w", t.Name, daw.ErrInvalidState)
		}

		return t.SetArmed(armed)
	})
}

// SetInstrument replaces the voice of an instrument track.
func (e *Engine) SetInstrument(id string, inst clip.Instrument) error {
	return e.mutate("set instrument", id, func(t *track.Track) error { return t.SetInstrument(inst) })
}

// SetSend adds or updates a send from track id to an aux track. Sends to
// non-aux tracks and routing cycles are rejected.
func (e *Engine) SetSend(id string, s track.Send) error {
	return e.mutate("set send", id, func(t *track.Track) error { return t.SetSend(s) })
}

// RemoveSend removes the send from track id to target.
func (e *Engine) RemoveSend(id, target string) error {
	return e.mutate("remove send", id, func(t *track.Track) error { return t.RemoveSend(target) })
}

// AddEffect inserts a new effect of the given kind at index (-1 appends)
// and returns the effect ID.
func (e *Engine) AddEffect(trackID, kind string, index int) (string, error) {
	slot, err := e.registry.NewSlot(kind)
	if err != nil {
		return "", e.fail("add effect", err)
	}

	ev := events.Event{Type: events.EffectAdded, TrackID: trackID, EffectID: slot.ID}
	if err := e.mutate("add effect", trackID, func(t *track.Track) error { return t.AddEffect(slot, index) }, ev); err != nil {
		return "", err
	}

	return slot.ID, nil
}

// RemoveEffect removes an effect from a track.
func (e *Engine) RemoveEffect(trackID, effectID string) error {
	ev := events.Event{Type: events.EffectRemoved, TrackID: trackID, EffectID: effectID}

	return e.mutate("remove effect", trackID, func(t *track.Track) error {
		_, err := t.RemoveEffect(effectID)

		return err
	}, ev)
}

// ReorderEffect moves an effect to a new position in its chain.
func (e *Engine) ReorderEffect(trackID, effectID string, index int) error {
	return e.mutate("reorder effect", trackID, func(t *track.Track) error { return t.ReorderEffect(effectID, index) })
}

// SetEffectParameter sets a numeric parameter, validated against the
// effect's schema.
func (e *Engine) SetEffectParameter(trackID, effectID, name string, value float64) error {
	return e.editEffect("set effect parameter", trackID, effectID, func(s *effectchain.Slot) error {
		return s.SetParameter(name, value)
	})
}

// SetEffectEnum sets an enum parameter by option name.
func (e *Engine) SetEffectEnum(trackID, effectID, name, option string) error {
	return e.editEffect("set effect enum", trackID, effectID, func(s *effectchain.Slot) error {
		return s.SetEnum(name, option)
	})
}

// ToggleEffect enables or bypasses an effect. A bypassed effect is skipped
// entirely.
func (e *Engine) ToggleEffect(trackID, effectID string, enabled bool) error {
	return e.editEffect("toggle effect", trackID, effectID, func(s *effectchain.Slot) error {
		s.Toggle(enabled)

		return nil
	})
}

// SetEffectMix sets the dry/wet balance of an effect.
func (e *Engine) SetEffectMix(trackID, effectID string, mix float64) error {
	return e.editEffect("set effect mix", trackID, effectID, func(s *effectchain.Slot) error {
		return s.SetMix(mix)
	})
}

func (e *Engine) editEffect(op, trackID, effectID string, fn func(s *effectchain.Slot) error) error {
	return e.mutate(op, trackID, func(t *track.Track) error {
		s, err := t.Effect(effectID)
		if err != nil {
			return err
		}

		return fn(s)
	})
}

// AddClip places a clip on a track and returns its ID. A clip without an
// ID gets a fresh one.
func (e *Engine) AddClip(trackID string, c clip.Clip) (string, error) {
	if c.ID == "" {
		c = c.Clone()
	}

	ev := events.Event{Type: events.ClipAdded, TrackID: trackID, ClipID: c.ID}
	if err := e.mutate("add clip", trackID, func(t *track.Track) error { return t.AddClip(c) }, ev); err != nil {
		return "", err
	}

	return c.ID, nil
}

// UpdateClip replaces a clip with an edited version carrying the same ID.
func (e *Engine) UpdateClip(trackID string, c clip.Clip) error {
	return e.mutate("update clip", trackID, func(t *track.Track) error { return t.ReplaceClip(c) })
}

// RemoveClip deletes a clip from a track.
func (e *Engine) RemoveClip(trackID, clipID string) error {
	return e.mutate("remove clip", trackID, func(t *track.Track) error {
		_, err := t.RemoveClip(clipID)

		return err
	})
}

// MoveClip sets a clip's timeline start.
func (e *Engine) MoveClip(trackID, clipID string, start float64) error {
	return e.editClip("move clip", trackID, clipID, func(c clip.Clip) (clip.Clip, error) {
		return c.Move(start)
	})
}

// TrimClip sets a clip's source offset and duration.
func (e *Engine) TrimClip(trackID, clipID string, offset, duration float64) error {
	return e.editClip("trim clip", trackID, clipID, func(c clip.Clip) (clip.Clip, error) {
		return c.Trim(offset, duration)
	})
}

// SplitClip cuts a clip at timeline time at and returns the ID of the new
// right half. Splitting at the clip start changes nothing and returns
// clipID.
func (e *Engine) SplitClip(trackID, clipID string, at float64) (string, error) {
	var rightID string

	err := e.mutate("split clip", trackID, func(t *track.Track) error {
		c, err := t.Clip(clipID)
		if err != nil {
			return err
		}

		left, right, err := c.Split(at)
		if err != nil {
			return err
		}
		rightID = right.ID

		if left.ID == "" {
			return nil
		}

		if err := t.ReplaceClip(left); err != nil {
			return err
		}

		return t.AddClip(right)
	})
	if err != nil {
		return "", err
	}

	if rightID == clipID {
		return rightID, nil
	}

	e.emit(events.Event{Type: events.ClipAdded, TrackID: trackID, ClipID: rightID})

	return rightID, nil
}

func (e *Engine) editClip(op, trackID, clipID string, fn func(c clip.Clip) (clip.Clip, error)) error {
	return e.mutate(op, trackID, func(t *track.Track) error {
		c, err := t.Clip(clipID)
		if err != nil {
			return err
		}

		c, err = fn(c)
		if err != nil {
			return err
		}

		return t.ReplaceClip(c)
	})
}
