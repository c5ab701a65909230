package engine

import (
	"fmt"
	"math"

	daw "github.com/cwbudde/algo-daw"
)

// Tempo limits in BPM.
const (
	MinTempo     = 20.0
	MaxTempo     = 999.0
	DefaultTempo = 120.0
)

// TimeSignature is numerator beats of 1/denominator notes per bar.
type TimeSignature struct {
	Numerator   int
	Denominator int
}

// Validate accepts numerators in [1, 32] and power-of-two denominators up
// to 32.
func (ts TimeSignature) Validate() error {
	if ts.Numerator < 1 || ts.Numerator > 32 {
		return fmt.Errorf("engine: time signature numerator %d outside [1, 32]: %w", ts.Numerator, daw.ErrInvalidParameter)
	}

	d := ts.Denominator
	if d < 1 || d > 32 || d&(d-1) != 0 {
		return fmt.Errorf("engine: time signature denominator %d is not a power of two up to 32: %w", d, daw.ErrInvalidParameter)
	}

	return nil
}

func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.Numerator, ts.Denominator)
}

// Loop is the [Start, End) region live playback repeats, in seconds.
type Loop struct {
	Start float64
	End   float64
}

// Validate requires 0 <= Start < End.
func (l Loop) Validate() error {
	if !(l.Start >= 0) || !(l.End > l.Start) || math.IsInf(l.End, 0) {
		return fmt.Errorf("engine: loop [%g, %g): %w", l.Start, l.End, daw.ErrInvalidRange)
	}

	return nil
}

// Clock is the musical time base. Clip positions are absolute seconds, so
// changing the tempo never moves a clip.
type Clock struct {
	Tempo         float64
	TimeSignature TimeSignature
	// Loop is nil when looping is off.
	Loop *Loop
}

// DefaultClock returns 120 BPM in 4/4 without a loop.
func DefaultClock() Clock {
	return Clock{Tempo: DefaultTempo, TimeSignature: TimeSignature{Numerator: 4, Denominator: 4}}
}

// Validate checks tempo, time signature and loop.
func (c Clock) Validate() error {
	if err := checkTempo(c.Tempo); err != nil {
		return err
	}

	if err := c.TimeSignature.Validate(); err != nil {
		return err
	}

	if c.Loop != nil {
		return c.Loop.Validate()
	}

	return nil
}

// SecondsPerBeat returns the length of one beat.
func (c Clock) SecondsPerBeat() float64 {
	return 60 / c.Tempo
}

// BeatsToSeconds converts a beat count to seconds.
func (c Clock) BeatsToSeconds(beats float64) float64 {
	return beats * c.SecondsPerBeat()
}

// BarsToSeconds converts a bar count to seconds.
func (c Clock) BarsToSeconds(bars float64) float64 {
	return bars * float64(c.TimeSignature.Numerator) * c.SecondsPerBeat()
}

func (c Clock) clone() Clock {
	if c.Loop != nil {
		l := *c.Loop
		c.Loop = &l
	}

	return c
}

func checkTempo(bpm float64) error {
	if !(bpm >= MinTempo && bpm <= MaxTempo) {
		return fmt.Errorf("engine: tempo %g BPM outside [%g, %g]: %w", bpm, MinTempo, MaxTempo, daw.ErrInvalidParameter)
	}

	return nil
}
