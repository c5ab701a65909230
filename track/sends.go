package track

import (
	"fmt"
	"math"
	"slices"

	daw "github.com/cwbudde/algo-daw"
)

// SendIndex returns the position of the send to target, or -1.
func (t *Track) SendIndex(target string) int {
	return slices.IndexFunc(t.Sends, func(s Send) bool { return s.Target == target })
}

// SetSend adds or updates the send to s.Target. The target's type and the
// absence of routing cycles are checked by the owner of all tracks.
func (t *Track) SetSend(s Send) error {
	if s.Target == "" || s.Target == t.ID {
		return fmt.Errorf("track: send target %q: %w", s.Target, daw.ErrInvalidParameter)
	}

	if math.IsNaN(s.Level) || s.Level < 0 || s.Level > MaxSendLevel {
		return fmt.Errorf("track: send level %g outside [0, %g]: %w", s.Level, MaxSendLevel, daw.ErrInvalidParameter)
	}

	if i := t.SendIndex(s.Target); i >= 0 {
		t.Sends[i] = s

		return nil
	}
	t.Sends = append(t.Sends, s)

	return nil
}

// RemoveSend removes the send to target.
func (t *Track) RemoveSend(target string) error {
	i := t.SendIndex(target)
	if i < 0 {
		return fmt.Errorf("track: send to %q on %q: %w", target, t.Name, daw.ErrNotFound)
	}
	t.Sends = slices.Delete(t.Sends, i, i+1)

	return nil
}
