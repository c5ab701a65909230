package track

import (
	"fmt"
	"math"
	"slices"

	"github.com/google/uuid"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/clip"
	"github.com/cwbudde/algo-daw/dsp/core"
	"github.com/cwbudde/algo-daw/dsp/effectchain"
)

// SilenceDB is the volume at and below which a track is silent.
const SilenceDB = core.SilenceDB

// MaxSendLevel is the largest linear send level (+12 dB).
const MaxSendLevel = 4.0

// Type is the kind of a track.
type Type int

// Track types.
const (
	TypeAudio Type = iota
	TypeInstrument
	TypeAux
)

var typeNames = []string{"audio", "instrument", "aux"}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}

	return typeNames[t]
}

// ParseType returns the track type with the given name.
func ParseType(name string) (Type, error) {
	for i, n := range typeNames {
		if n == name {
			return Type(i), nil
		}
	}

	return TypeAudio, fmt.Errorf("track: unknown type %q: %w", name, daw.ErrInvalidParameter)
}

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	return t >= TypeAudio && t <= TypeAux
}

// Send routes part of a track's signal to an aux track.
type Send struct {
	Target string
	// Level is a linear gain in [0, 4].
	Level float64
	// PreFader taps the signal after the effects, before volume and pan.
	PreFader bool
}

// Track is one mixer channel.
type Track struct {
	ID   string
	Name string
	Type Type

	VolumeDB float64
	Pan      float64
	Mute     bool
	Solo     bool
	Armed    bool

	Sends   []Send
	Effects []effectchain.Slot
	Clips   []clip.Clip

	// Instrument renders NoteSequence clips on instrument tracks.
	Instrument clip.Instrument
}

// New returns a track with default routing: 0 dB, centre pan, unmuted.
func New(name string, typ Type) (*Track, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("track: type %d: %w", typ, daw.ErrInvalidParameter)
	}

	t := &Track{
		ID:   uuid.NewString(),
		Name: name,
		Type: typ,
	}
	if typ == TypeInstrument {
		t.Instrument = clip.DefaultInstrument()
	}

	return t, nil
}

// Gain returns the linear fader gain; exactly 1 at 0 dB and 0 at or below
// SilenceDB.
func (t *Track) Gain() float64 {
	return core.DBToGain(t.VolumeDB)
}

// SetVolume sets the fader level in dB. -Inf and anything at or below
// SilenceDB mean silence.
func (t *Track) SetVolume(dB float64) error {
	if math.IsNaN(dB) || math.IsInf(dB, 1) {
		return fmt.Errorf("track: volume %g dB: %w", dB, daw.ErrInvalidParameter)
	}

	if dB < SilenceDB {
		dB = math.Inf(-1)
	}
	t.VolumeDB = dB

	return nil
}

// SetPan sets the stereo position in [-1, 1].
func (t *Track) SetPan(pan float64) error {
	if math.IsNaN(pan) || pan < -1 || pan > 1 {
		return fmt.Errorf("track: pan %g outside [-1, 1]: %w", pan, daw.ErrInvalidParameter)
	}
	t.Pan = pan

	return nil
}

// SetMute sets the mute flag.
func (t *Track) SetMute(mute bool) { t.Mute = mute }

// SetSolo sets the solo flag.
func (t *Track) SetSolo(solo bool) { t.Solo = solo }

// SetArmed arms the track for recording. Only audio tracks can be armed.
func (t *Track) SetArmed(armed bool) error {
	if armed && t.Type != TypeAudio {
		return fmt.Errorf("track: cannot arm %s track %q: %w", t.Type, t.Name, daw.ErrInvalidState)
	}
	t.Armed = armed

	return nil
}

// SetInstrument replaces the instrument settings of an instrument track.
func (t *Track) SetInstrument(inst clip.Instrument) error {
	if t.Type != TypeInstrument {
		return fmt.Errorf("track: %s track %q has no instrument: %w", t.Type, t.Name, daw.ErrInvalidState)
	}

	if err := inst.Validate(); err != nil {
		return err
	}
	t.Instrument = inst

	return nil
}

// Duration returns the end time of the last clip.
func (t *Track) Duration() float64 {
	var end float64
	for _, c := range t.Clips {
		end = max(end, c.End())
	}

	return end
}

// Clone returns a deep copy sharing only immutable clip sources.
func (t *Track) Clone() *Track {
	c := *t
	c.Sends = slices.Clone(t.Sends)
	c.Clips = slices.Clone(t.Clips)

	c.Effects = make([]effectchain.Slot, len(t.Effects))
	for i, s := range t.Effects {
		c.Effects[i] = s.Clone()
	}

	return &c
}
