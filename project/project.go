package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	daw "github.com/cwbudde/algo-daw"
)

// Version is the current file format version.
const Version = 1

// Source kinds.
const (
	SourceAudio = "audio"
	SourceNotes = "notes"
)

// Project is a complete session.
type Project struct {
	Version    int     `yaml:"version" json:"version"`
	Name       string  `yaml:"name,omitempty" json:"name,omitempty"`
	SampleRate float64 `yaml:"sampleRate" json:"sampleRate"`
	BlockSize  int     `yaml:"blockSize" json:"blockSize"`

	Tempo         float64       `yaml:"tempo" json:"tempo"`
	TimeSignature TimeSignature `yaml:"timeSignature,flow" json:"timeSignature"`
	Loop          *Loop         `yaml:"loop,omitempty,flow" json:"loop,omitempty"`

	Master Master  `yaml:"master" json:"master"`
	Tracks []Track `yaml:"tracks" json:"tracks"`
}

// TimeSignature is numerator over denominator.
type TimeSignature struct {
	Numerator   int `yaml:"numerator" json:"numerator"`
	Denominator int `yaml:"denominator" json:"denominator"`
}

// Loop is the [Start, End) loop region in seconds.
type Loop struct {
	Start float64 `yaml:"start" json:"start"`
	End   float64 `yaml:"end" json:"end"`
}

// Master holds the master bus settings.
type Master struct {
	GainDB    float64 `yaml:"gainDb" json:"gainDb"`
	CeilingDB float64 `yaml:"ceilingDb" json:"ceilingDb"`
	ReleaseMs float64 `yaml:"releaseMs" json:"releaseMs"`
}

// Track is one mixer channel. Type is audio, instrument or aux.
type Track struct {
	ID       string  `yaml:"id" json:"id"`
	Name     string  `yaml:"name" json:"name"`
	Type     string  `yaml:"type" json:"type"`
	VolumeDB float64 `yaml:"volumeDb" json:"volumeDb"`
	Pan      float64 `yaml:"pan" json:"pan"`
	Mute     bool    `yaml:"mute,omitempty" json:"mute,omitempty"`
	Solo     bool    `yaml:"solo,omitempty" json:"solo,omitempty"`
	Armed    bool    `yaml:"armed,omitempty" json:"armed,omitempty"`

	Sends      []Send      `yaml:"sends,omitempty" json:"sends,omitempty"`
	Effects    []Effect    `yaml:"effects,omitempty" json:"effects,omitempty"`
	Clips      []Clip      `yaml:"clips,omitempty" json:"clips,omitempty"`
	Instrument *Instrument `yaml:"instrument,omitempty" json:"instrument,omitempty"`
}

// Send routes a track to an aux track.
type Send struct {
	Target   string  `yaml:"target" json:"target"`
	Level    float64 `yaml:"level" json:"level"`
	PreFader bool    `yaml:"preFader,omitempty" json:"preFader,omitempty"`
}

// Effect is one slot of a track's effect chain.
type Effect struct {
	ID      string             `yaml:"id" json:"id"`
	Kind    string             `yaml:"kind" json:"kind"`
	Enabled bool               `yaml:"enabled" json:"enabled"`
	Mix     float64            `yaml:"mix" json:"mix"`
	Params  map[string]float64 `yaml:"params,omitempty,flow" json:"params,omitempty"`
}

// Clip places a source on the timeline.
type Clip struct {
	ID       string  `yaml:"id" json:"id"`
	Start    float64 `yaml:"start" json:"start"`
	Offset   float64 `yaml:"offset" json:"offset"`
	Duration float64 `yaml:"duration" json:"duration"`
	Rate     float64 `yaml:"rate" json:"rate"`
	Gain     float64 `yaml:"gain" json:"gain"`
	FadeIn   *Fade   `yaml:"fadeIn,omitempty,flow" json:"fadeIn,omitempty"`
	FadeOut  *Fade   `yaml:"fadeOut,omitempty,flow" json:"fadeOut,omitempty"`
	Source   Source  `yaml:"source" json:"source"`
}

// Fade is a clip gain ramp.
type Fade struct {
	Duration float64 `yaml:"duration" json:"duration"`
	Shape    string  `yaml:"shape" json:"shape"`
}

// Source references clip material. Audio sources carry a path relative to
// the project file, or nothing when the material lives only in memory.
// Note sequences are stored inline.
type Source struct {
	ID     string  `yaml:"id" json:"id"`
	Kind   string  `yaml:"kind" json:"kind"`
	Path   string  `yaml:"path,omitempty" json:"path,omitempty"`
	Length float64 `yaml:"length,omitempty" json:"length,omitempty"`
	Notes  []Note  `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// Note is one note of a sequence.
type Note struct {
	Pitch    int     `yaml:"pitch" json:"pitch"`
	Velocity int     `yaml:"velocity" json:"velocity"`
	Start    float64 `yaml:"start" json:"start"`
	Length   float64 `yaml:"length" json:"length"`
}

// Instrument holds the oscillator voice of an instrument track.
type Instrument struct {
	Waveform string  `yaml:"waveform" json:"waveform"`
	Attack   float64 `yaml:"attack" json:"attack"`
	Release  float64 `yaml:"release" json:"release"`
	Gain     float64 `yaml:"gain" json:"gain"`
}

// Keys a hand-written file may leave out default to their neutral value
// rather than zero: clips play at unity rate and gain, effects are enabled
// and fully wet, instrument voices play at unity gain.

type (
	plainClip       Clip
	plainEffect     Effect
	plainInstrument Instrument
)

func defaultClip() plainClip             { return plainClip{Rate: 1, Gain: 1} }
func defaultEffect() plainEffect         { return plainEffect{Enabled: true, Mix: 1} }
func defaultInstrument() plainInstrument { return plainInstrument{Gain: 1} }

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Clip) UnmarshalYAML(n *yaml.Node) error {
	v := defaultClip()
	if err := n.Decode(&v); err != nil {
		return err
	}
	*c = Clip(v)

	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Clip) UnmarshalJSON(data []byte) error {
	v := defaultClip()
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = Clip(v)

	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *Effect) UnmarshalYAML(n *yaml.Node) error {
	v := defaultEffect()
	if err := n.Decode(&v); err != nil {
		return err
	}
	*e = Effect(v)

	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Effect) UnmarshalJSON(data []byte) error {
	v := defaultEffect()
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*e = Effect(v)

	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (in *Instrument) UnmarshalYAML(n *yaml.Node) error {
	v := defaultInstrument()
	if err := n.Decode(&v); err != nil {
		return err
	}
	*in = Instrument(v)

	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (in *Instrument) UnmarshalJSON(data []byte) error {
	v := defaultInstrument()
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*in = Instrument(v)

	return nil
}

// Parse decodes a project from JSON or YAML.
func Parse(data []byte) (Project, error) {
	var p Project

	errJSON := json.Unmarshal(data, &p)
	if errJSON != nil {
		p = Project{}
		if errYAML := yaml.Unmarshal(data, &p); errYAML != nil {
			return Project{}, fmt.Errorf("project: not JSON (%v) or YAML (%v): %w", errJSON, errYAML, daw.ErrInvalidParameter)
		}
	}

	if p.Version > Version {
		return Project{}, fmt.Errorf("project: format version %d is newer than %d: %w", p.Version, Version, daw.ErrInvalidParameter)
	}

	return p, nil
}

// LoadFile reads a project file.
func LoadFile(path string) (Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Project{}, fmt.Errorf("project: %w: %w", err, daw.ErrNotFound)
	}

	return Parse(data)
}

// Marshal encodes p as YAML, or as indented JSON when asJSON is set.
func Marshal(p Project, asJSON bool) ([]byte, error) {
	p.Version = Version

	if asJSON {
		return json.MarshalIndent(p, "", "  ")
	}

	return yaml.Marshal(p)
}

// SaveFile writes p to path. Files ending in .json are written as JSON,
// everything else as YAML.
func SaveFile(path string, p Project) error {
	data, err := Marshal(p, strings.EqualFold(filepath.Ext(path), ".json"))
	if err != nil {
		return fmt.Errorf("project: encode: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("project: %w", err)
	}

	return nil
}
