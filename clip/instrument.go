package clip

import (
	"fmt"
	"math"

	daw "github.com/cwbudde/algo-daw"
)

// Waveform defines the oscillator shape of an instrument.
type Waveform int

// Waveforms.
const (
	WaveSine Waveform = iota
	WaveTriangle
	WaveSaw
	WaveSquare
)

var waveformNames = []string{"sine", "triangle", "saw", "square"}

func (w Waveform) String() string {
	if w < 0 || int(w) >= len(waveformNames) {
		return fmt.Sprintf("Waveform(%d)", int(w))
	}

	return waveformNames[w]
}

// ParseWaveform returns the waveform with the given name.
func ParseWaveform(name string) (Waveform, error) {
	for i, n := range waveformNames {
		if n == name {
			return Waveform(i), nil
		}
	}

	return WaveSine, fmt.Errorf("clip: unknown waveform %q: %w", name, daw.ErrInvalidParameter)
}

// Instrument is the simple oscillator voice that renders NoteSequence clips
// on instrument tracks.
type Instrument struct {
	Waveform Waveform
	Attack   float64 // seconds
	Release  float64 // seconds
	Gain     float64 // linear
}

// DefaultInstrument returns a sine voice with 5 ms attack, 100 ms release
// and a gain that leaves headroom for chords.
func DefaultInstrument() Instrument {
	return Instrument{Waveform: WaveSine, Attack: 0.005, Release: 0.1, Gain: 0.25}
}

// Validate checks the instrument settings.
func (in Instrument) Validate() error {
	switch {
	case in.Waveform < WaveSine || in.Waveform > WaveSquare:
		return fmt.Errorf("clip: waveform %d: %w", in.Waveform, daw.ErrInvalidParameter)
	case !(in.Attack >= 0) || in.Attack > 10:
		return fmt.Errorf("clip: attack %g outside [0, 10]: %w", in.Attack, daw.ErrInvalidParameter)
	case !(in.Release >= 0) || in.Release > 10:
		return fmt.Errorf("clip: release %g outside [0, 10]: %w", in.Release, daw.ErrInvalidParameter)
	case !(in.Gain >= 0) || in.Gain > 4:
		return fmt.Errorf("clip: instrument gain %g outside [0, 4]: %w", in.Gain, daw.ErrInvalidParameter)
	}

	return nil
}

// noteSample returns the voice output for note n at source time t (seconds
// from the sequence start). It is a pure function of t.
func (in Instrument) noteSample(n Note, t float64) float64 {
	local := t - n.Start
	if local < 0 {
		return 0
	}

	env := in.envelope(local, n.Length)
	if env == 0 {
		return 0
	}

	phase := 2 * math.Pi * n.Frequency() * local
	// wrap into [-pi, pi) so the saw ramps symmetrically
	phase = math.Mod(phase+math.Pi, 2*math.Pi) - math.Pi

	return env * in.Gain * float64(n.Velocity) / 127 * waveSample(in.Waveform, phase)
}

func (in Instrument) envelope(local, length float64) float64 {
	level := func(t float64) float64 {
		if in.Attack <= 0 || t >= in.Attack {
			return 1
		}

		return t / in.Attack
	}

	if local < length {
		return level(local)
	}

	// compare against the end point directly; local-length loses bits
	if in.Release <= 0 || local >= length+in.Release {
		return 0
	}

	return level(length) * max(0, 1-(local-length)/in.Release)
}

// voiceLength is how long a note sounds including its release tail.
func (in Instrument) voiceLength(n Note) float64 {
	return n.Length + in.Release
}

func waveSample(w Waveform, phase float64) float64 {
	switch w {
	case WaveTriangle:
		return (2 / math.Pi) * math.Asin(math.Sin(phase))
	case WaveSaw:
		return phase / math.Pi
	case WaveSquare:
		if math.Sin(phase) >= 0 {
			return 1
		}

		return -1
	default:
		return math.Sin(phase)
	}
}
