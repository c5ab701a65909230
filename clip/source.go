package clip

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/dsp/buffer"
)

// Source is the material a clip plays. It is implemented by *AudioSource
// and *NoteSequence only.
type Source interface {
	// SourceID identifies the source, for persistence.
	SourceID() string
	// Length returns the playable length in seconds.
	Length() float64

	isSource()
}

// AudioSource is immutable recorded or imported audio. Mono material is
// played on both channels.
type AudioSource struct {
	id         string
	sampleRate float64
	buf        *buffer.Buffer
}

// NewAudioSource wraps a mono or stereo buffer. The buffer must not be
// modified afterwards. An empty id gets a fresh UUID.
func NewAudioSource(id string, sampleRate float64, buf *buffer.Buffer) (*AudioSource, error) {
	if buf == nil || buf.Channels() < 1 || buf.Channels() > 2 {
		return nil, fmt.Errorf("clip: audio source needs a mono or stereo buffer: %w", daw.ErrInvalidParameter)
	}

	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("clip: audio source sample rate %g: %w", sampleRate, daw.ErrInvalidParameter)
	}

	if id == "" {
		id = uuid.NewString()
	}

	return &AudioSource{id: id, sampleRate: sampleRate, buf: buf}, nil
}

// SourceID returns the source ID.
func (s *AudioSource) SourceID() string { return s.id }

// SampleRate returns the native sample rate of the material.
func (s *AudioSource) SampleRate() float64 { return s.sampleRate }

// Frames returns the number of frames.
func (s *AudioSource) Frames() int { return s.buf.Frames() }

// Length returns the duration in seconds.
func (s *AudioSource) Length() float64 { return float64(s.buf.Frames()) / s.sampleRate }

// Buffer returns the underlying buffer. It must be treated as read-only.
func (s *AudioSource) Buffer() *buffer.Buffer { return s.buf }

// Stereo returns the left and right channels; both are the same slice for
// mono material.
func (s *AudioSource) Stereo() (left, right []float64) { return s.buf.Stereo() }

func (*AudioSource) isSource() {}

// Note is one note of a NoteSequence. Start and Length are seconds relative
// to the start of the sequence.
type Note struct {
	Pitch    int
	Velocity int
	Start    float64
	Length   float64
}

// Frequency returns the equal-tempered frequency of the note (A4 = 440 Hz).
func (n Note) Frequency() float64 {
	return 440 * math.Exp2(float64(n.Pitch-69)/12)
}

// NoteSequence is an immutable list of notes with an explicit length.
// Notes extending past the length are cut at the clip boundary.
type NoteSequence struct {
	id     string
	notes  []Note
	length float64
}

// NewNoteSequence validates and wraps notes. An empty id gets a fresh UUID.
func NewNoteSequence(id string, notes []Note, length float64) (*NoteSequence, error) {
	if !(length > 0) || math.IsInf(length, 0) {
		return nil, fmt.Errorf("clip: note sequence length %g: %w", length, daw.ErrInvalidParameter)
	}

	for i, n := range notes {
		switch {
		case n.Pitch < 0 || n.Pitch > 127:
			return nil, fmt.Errorf("clip: note %d pitch %d outside [0, 127]: %w", i, n.Pitch, daw.ErrInvalidParameter)
		case n.Velocity < 1 || n.Velocity > 127:
			return nil, fmt.Errorf("clip: note %d velocity %d outside [1, 127]: %w", i, n.Velocity, daw.ErrInvalidParameter)
		case !(n.Start >= 0) || !(n.Length > 0) || math.IsInf(n.Start+n.Length, 0):
			return nil, fmt.Errorf("clip: note %d timing [%g, +%g]: %w", i, n.Start, n.Length, daw.ErrInvalidParameter)
		}
	}

	if id == "" {
		id = uuid.NewString()
	}

	return &NoteSequence{id: id, notes: append([]Note(nil), notes...), length: length}, nil
}

// SourceID returns the sequence ID.
func (s *NoteSequence) SourceID() string { return s.id }

// Length returns the sequence length in seconds.
func (s *NoteSequence) Length() float64 { return s.length }

// Notes returns a copy of the notes.
func (s *NoteSequence) Notes() []Note { return append([]Note(nil), s.notes...) }

func (*NoteSequence) isSource() {}
