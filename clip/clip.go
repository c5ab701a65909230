package clip

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	daw "github.com/cwbudde/algo-daw"
)

// boundsEpsilon absorbs float rounding in the source bounds check.
const boundsEpsilon = 1e-9

// Clip is a region of a Source placed on the timeline. All times are in
// absolute seconds; tempo changes never move clips.
type Clip struct {
	ID      string
	TrackID string
	Source  Source

	Start    float64
	Offset   float64
	Duration float64
	// Rate is the playback rate; source time advances Rate seconds per
	// timeline second.
	Rate float64
	Gain float64

	FadeIn  Fade
	FadeOut Fade
}

// New returns a validated clip at unity rate and gain with a fresh ID.
func New(src Source, start, offset, duration float64) (Clip, error) {
	c := Clip{
		ID:       uuid.NewString(),
		Source:   src,
		Start:    start,
		Offset:   offset,
		Duration: duration,
		Rate:     1,
		Gain:     1,
	}

	if err := c.Validate(); err != nil {
		return Clip{}, err
	}

	return c, nil
}

// End returns the timeline time at which the clip stops sounding.
func (c Clip) End() float64 {
	return c.Start + c.Duration
}

// SourceSpan returns the amount of source material the clip consumes.
func (c Clip) SourceSpan() float64 {
	return c.Duration * c.Rate
}

// Validate checks the clip fields and the source bounds invariant
// Offset + Duration*Rate <= Source.Length().
func (c Clip) Validate() error {
	if c.Source == nil {
		return fmt.Errorf("clip: %q has no source: %w", c.ID, daw.ErrInvalidParameter)
	}

	switch {
	case !finiteNonNeg(c.Start):
		return fmt.Errorf("clip: start %g: %w", c.Start, daw.ErrInvalidRange)
	case !finiteNonNeg(c.Offset):
		return fmt.Errorf("clip: offset %g: %w", c.Offset, daw.ErrInvalidRange)
	case !(c.Duration > 0) || math.IsInf(c.Duration, 0):
		return fmt.Errorf("clip: duration %g: %w", c.Duration, daw.ErrInvalidRange)
	case !finiteNonNeg(c.Rate):
		return fmt.Errorf("clip: rate %g: %w", c.Rate, daw.ErrInvalidParameter)
	case !finiteNonNeg(c.Gain):
		return fmt.Errorf("clip: gain %g: %w", c.Gain, daw.ErrInvalidParameter)
	}

	if err := c.FadeIn.validate("in"); err != nil {
		return err
	}

	if err := c.FadeOut.validate("out"); err != nil {
		return err
	}

	if end := c.Offset + c.SourceSpan(); end > c.Source.Length()+boundsEpsilon {
		return fmt.Errorf("clip: source range [%g, %g] exceeds source length %g: %w",
			c.Offset, end, c.Source.Length(), daw.ErrInvalidRange)
	}

	return nil
}

// Fades returns the effective fades, scaled down so they fit the duration.
func (c Clip) Fades() (in, out Fade) {
	return clampFades(c.FadeIn, c.FadeOut, c.Duration)
}

// Trim returns a copy with a new source offset and duration.
func (c Clip) Trim(offset, duration float64) (Clip, error) {
	c.Offset = offset
	c.Duration = duration
	if err := c.Validate(); err != nil {
		return Clip{}, err
	}

	return c, nil
}

// Move returns a copy starting at a new timeline position.
func (c Clip) Move(start float64) (Clip, error) {
	if !finiteNonNeg(start) {
		return Clip{}, fmt.Errorf("clip: start %g: %w", start, daw.ErrInvalidRange)
	}
	c.Start = start

	return c, nil
}

// WithGain returns a copy with a new linear gain.
func (c Clip) WithGain(gain float64) (Clip, error) {
	c.Gain = gain
	if err := c.Validate(); err != nil {
		return Clip{}, err
	}

	return c, nil
}

// WithRate returns a copy with a new playback rate.
func (c Clip) WithRate(rate float64) (Clip, error) {
	c.Rate = rate
	if err := c.Validate(); err != nil {
		return Clip{}, err
	}

	return c, nil
}

// WithFades returns a copy with new fades.
func (c Clip) WithFades(in, out Fade) (Clip, error) {
	c.FadeIn = in
	c.FadeOut = out
	if err := c.Validate(); err != nil {
		return Clip{}, err
	}

	return c, nil
}

// Split cuts the clip at timeline time at, which must lie in
// [Start, End). The left half keeps the ID and the fade-in; the right half
// gets a fresh ID and the fade-out. Splitting at Start leaves nothing on the
// left: left is the zero Clip (empty ID) and right is c unchanged.
func (c Clip) Split(at float64) (left, right Clip, err error) {
	if !(at >= c.Start) || !(at < c.End()) {
		return Clip{}, Clip{}, fmt.Errorf("clip: split point %g outside [%g, %g): %w",
			at, c.Start, c.End(), daw.ErrInvalidRange)
	}

	if at == c.Start {
		return Clip{}, c, nil
	}

	left, right = c, c
	head := at - c.Start

	left.Duration = head
	left.FadeOut = Fade{}

	right.ID = uuid.NewString()
	right.Start = at
	right.Offset = c.Offset + head*c.Rate
	right.Duration = c.Duration - head
	right.FadeIn = Fade{}

	return left, right, nil
}

// Clone returns a copy with a fresh ID sharing the same source.
func (c Clip) Clone() Clip {
	c.ID = uuid.NewString()

	return c
}

// Overlaps reports whether two clips sound at the same time.
func (c Clip) Overlaps(other Clip) bool {
	return c.Start < other.End() && other.Start < c.End()
}

func finiteNonNeg(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}
