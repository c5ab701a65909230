package track

import (
	"fmt"
	"slices"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/clip"
)

// ClipIndex returns the position of a clip, or -1.
func (t *Track) ClipIndex(id string) int {
	return slices.IndexFunc(t.Clips, func(c clip.Clip) bool { return c.ID == id })
}

// Clip returns a copy of the clip with the given ID.
func (t *Track) Clip(id string) (clip.Clip, error) {
	i := t.ClipIndex(id)
	if i < 0 {
		return clip.Clip{}, fmt.Errorf("track: clip %q on %q: %w", id, t.Name, daw.ErrNotFound)
	}

	return t.Clips[i], nil
}

// AddClip validates and appends a clip. Aux tracks host no clips, audio
// tracks take audio sources and instrument tracks take note sequences.
func (t *Track) AddClip(c clip.Clip) error {
	if err := t.checkClip(c); err != nil {
		return err
	}

	if t.ClipIndex(c.ID) >= 0 {
		return fmt.Errorf("track: clip %q already on %q: %w", c.ID, t.Name, daw.ErrInvalidParameter)
	}

	c.TrackID = t.ID
	t.Clips = append(t.Clips, c)

	return nil
}

// ReplaceClip swaps in an edited version of an existing clip.
func (t *Track) ReplaceClip(c clip.Clip) error {
	i := t.ClipIndex(c.ID)
	if i < 0 {
		return fmt.Errorf("track: clip %q on %q: %w", c.ID, t.Name, daw.ErrNotFound)
	}

	if err := t.checkClip(c); err != nil {
		return err
	}

	c.TrackID = t.ID
	t.Clips[i] = c

	return nil
}

// RemoveClip removes and returns the clip with the given ID.
func (t *Track) RemoveClip(id string) (clip.Clip, error) {
	i := t.ClipIndex(id)
	if i < 0 {
		return clip.Clip{}, fmt.Errorf("track: clip %q on %q: %w", id, t.Name, daw.ErrNotFound)
	}

	c := t.Clips[i]
	t.Clips = slices.Delete(t.Clips, i, i+1)

	return c, nil
}

func (t *Track) checkClip(c clip.Clip) error {
	if c.ID == "" {
		return fmt.Errorf("track: clip without ID: %w", daw.ErrInvalidParameter)
	}

	switch t.Type {
	case TypeAux:
		return fmt.Errorf("track: aux track %q hosts no clips: %w", t.Name, daw.ErrInvalidState)
	case TypeAudio:
		if _, ok := c.Source.(*clip.AudioSource); !ok {
			return fmt.Errorf("track: audio track %q needs an audio source: %w", t.Name, daw.ErrInvalidParameter)
		}
	case TypeInstrument:
		if _, ok := c.Source.(*clip.NoteSequence); !ok {
			return fmt.Errorf("track: instrument track %q needs a note sequence: %w", t.Name, daw.ErrInvalidParameter)
		}
	}

	return c.Validate()
}
