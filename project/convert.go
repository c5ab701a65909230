package project

import (
	"fmt"
	"math"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/clip"
	"github.com/cwbudde/algo-daw/dsp/effectchain"
	"github.com/cwbudde/algo-daw/mixer"
	"github.com/cwbudde/algo-daw/track"
)

// FromMaster converts master bus settings.
func FromMaster(m mixer.MasterSettings) Master {
	return Master{GainDB: finiteDB(m.GainDB), CeilingDB: m.CeilingDB, ReleaseMs: m.ReleaseMs}
}

// Settings returns the master bus settings. A zero Master yields the
// defaults.
func (m Master) Settings() mixer.MasterSettings {
	if m == (Master{}) {
		return mixer.DefaultMasterSettings()
	}

	return mixer.MasterSettings{GainDB: m.GainDB, CeilingDB: m.CeilingDB, ReleaseMs: m.ReleaseMs}
}

// FromTracks converts tracks to their persisted shape, in order.
func FromTracks(tracks []*track.Track) []Track {
	out := make([]Track, len(tracks))
	for i, t := range tracks {
		out[i] = FromTrack(t)
	}

	return out
}

// FromTrack converts one track.
func FromTrack(t *track.Track) Track {
	pt := Track{
		ID:       t.ID,
		Name:     t.Name,
		Type:     t.Type.String(),
		VolumeDB: finiteDB(t.VolumeDB),
		Pan:      t.Pan,
		Mute:     t.Mute,
		Solo:     t.Solo,
		Armed:    t.Armed,
	}

	for _, s := range t.Sends {
		pt.Sends = append(pt.Sends, Send{Target: s.Target, Level: s.Level, PreFader: s.PreFader})
	}

	for _, s := range t.Effects {
		pt.Effects = append(pt.Effects, Effect{
			ID:      s.ID,
			Kind:    s.Kind,
			Enabled: s.Enabled,
			Mix:     s.Mix,
			Params:  s.Clone().Params,
		})
	}

	for _, c := range t.Clips {
		pt.Clips = append(pt.Clips, fromClip(c))
	}

	if t.Type == track.TypeInstrument {
		in := t.Instrument
		pt.Instrument = &Instrument{Waveform: in.Waveform.String(), Attack: in.Attack, Release: in.Release, Gain: in.Gain}
	}

	return pt
}

func fromClip(c clip.Clip) Clip {
	pc := Clip{
		ID:       c.ID,
		Start:    c.Start,
		Offset:   c.Offset,
		Duration: c.Duration,
		Rate:     c.Rate,
		Gain:     c.Gain,
	}

	if c.FadeIn.Duration > 0 {
		pc.FadeIn = &Fade{Duration: c.FadeIn.Duration, Shape: c.FadeIn.Shape.String()}
	}
	if c.FadeOut.Duration > 0 {
		pc.FadeOut = &Fade{Duration: c.FadeOut.Duration, Shape: c.FadeOut.Shape.String()}
	}

	switch src := c.Source.(type) {
	case *clip.NoteSequence:
		pc.Source = Source{ID: src.SourceID(), Kind: SourceNotes, Length: src.Length()}
		for _, n := range src.Notes() {
			pc.Source.Notes = append(pc.Source.Notes, Note{Pitch: n.Pitch, Velocity: n.Velocity, Start: n.Start, Length: n.Length})
		}
	case *clip.AudioSource:
		pc.Source = Source{ID: src.SourceID(), Kind: SourceAudio, Length: src.Length()}
	}

	return pc
}

// BuildTracks converts persisted tracks into runtime tracks. Effect slots
// are checked against registry and audio sources come from res. Routing
// is not checked here; that needs the whole track list (see
// mixer.ProcessingOrder).
func BuildTracks(tracks []Track, registry *effectchain.Registry, res SourceResolver) ([]*track.Track, error) {
	out := make([]*track.Track, len(tracks))
	for i, pt := range tracks {
		t, err := pt.Build(registry, res)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}

	return out, nil
}

// Build converts one persisted track.
func (pt Track) Build(registry *effectchain.Registry, res SourceResolver) (*track.Track, error) {
	typ, err := track.ParseType(pt.Type)
	if err != nil {
		return nil, err
	}

	t, err := track.New(pt.Name, typ)
	if err != nil {
		return nil, err
	}

	if pt.ID != "" {
		t.ID = pt.ID
	}

	if err := t.SetVolume(pt.VolumeDB); err != nil {
		return nil, fmt.Errorf("project: track %q: %w", pt.Name, err)
	}
	if err := t.SetPan(pt.Pan); err != nil {
		return nil, fmt.Errorf("project: track %q: %w", pt.Name, err)
	}
	t.SetMute(pt.Mute)
	t.SetSolo(pt.Solo)
	if err := t.SetArmed(pt.Armed); err != nil {
		return nil, fmt.Errorf("project: track %q: %w", pt.Name, err)
	}

	if pt.Instrument != nil {
		inst, err := pt.Instrument.build()
		if err != nil {
			return nil, fmt.Errorf("project: track %q: %w", pt.Name, err)
		}
		if err := t.SetInstrument(inst); err != nil {
			return nil, fmt.Errorf("project: track %q: %w", pt.Name, err)
		}
	}

	for _, s := range pt.Sends {
		if err := t.SetSend(track.Send{Target: s.Target, Level: s.Level, PreFader: s.PreFader}); err != nil {
			return nil, fmt.Errorf("project: track %q: %w", pt.Name, err)
		}
	}

	for _, e := range pt.Effects {
		slot, err := e.build(registry)
		if err != nil {
			return nil, fmt.Errorf("project: track %q: %w", pt.Name, err)
		}
		if err := t.AddEffect(slot, -1); err != nil {
			return nil, fmt.Errorf("project: track %q: %w", pt.Name, err)
		}
	}

	for _, pc := range pt.Clips {
		c, err := pc.build(res)
		if err != nil {
			return nil, fmt.Errorf("project: track %q: %w", pt.Name, err)
		}
		if err := t.AddClip(c); err != nil {
			return nil, fmt.Errorf("project: track %q: %w", pt.Name, err)
		}
	}

	return t, nil
}

func (e Effect) build(registry *effectchain.Registry) (effectchain.Slot, error) {
	slot, err := registry.NewSlot(e.Kind)
	if err != nil {
		return effectchain.Slot{}, err
	}

	if e.ID != "" {
		slot.ID = e.ID
	}

	for name, v := range e.Params {
		if err := slot.SetParameter(name, v); err != nil {
			return effectchain.Slot{}, err
		}
	}

	if err := slot.SetMix(e.Mix); err != nil {
		return effectchain.Slot{}, err
	}
	slot.Toggle(e.Enabled)

	return slot, nil
}

func (pc Clip) build(res SourceResolver) (clip.Clip, error) {
	var src clip.Source

	switch pc.Source.Kind {
	case SourceNotes:
		notes := make([]clip.Note, len(pc.Source.Notes))
		for i, n := range pc.Source.Notes {
			notes[i] = clip.Note{Pitch: n.Pitch, Velocity: n.Velocity, Start: n.Start, Length: n.Length}
		}

		seq, err := clip.NewNoteSequence(pc.Source.ID, notes, pc.Source.Length)
		if err != nil {
			return clip.Clip{}, err
		}
		src = seq
	case SourceAudio:
		if res == nil {
			return clip.Clip{}, fmt.Errorf("project: audio source %q without a resolver: %w", pc.Source.ID, daw.ErrNotFound)
		}

		audio, err := res.Resolve(pc.Source)
		if err != nil {
			return clip.Clip{}, err
		}
		src = audio
	default:
		return clip.Clip{}, fmt.Errorf("project: source kind %q: %w", pc.Source.Kind, daw.ErrInvalidParameter)
	}

	c := clip.Clip{
		ID:       pc.ID,
		Source:   src,
		Start:    pc.Start,
		Offset:   pc.Offset,
		Duration: pc.Duration,
		Rate:     pc.Rate,
		Gain:     pc.Gain,
	}

	var err error
	if c.FadeIn, err = pc.FadeIn.build(); err != nil {
		return clip.Clip{}, err
	}
	if c.FadeOut, err = pc.FadeOut.build(); err != nil {
		return clip.Clip{}, err
	}

	if c.ID == "" {
		c = c.Clone()
	}

	return c, c.Validate()
}

func (f *Fade) build() (clip.Fade, error) {
	if f == nil {
		return clip.Fade{}, nil
	}

	shape, err := clip.ParseShape(f.Shape)
	if err != nil {
		return clip.Fade{}, err
	}

	return clip.Fade{Duration: f.Duration, Shape: shape}, nil
}

func (in Instrument) build() (clip.Instrument, error) {
	w, err := clip.ParseWaveform(in.Waveform)
	if err != nil {
		return clip.Instrument{}, err
	}

	return clip.Instrument{Waveform: w, Attack: in.Attack, Release: in.Release, Gain: in.Gain}, nil
}

// finiteDB maps silence to the finite silence level, which JSON can encode.
func finiteDB(dB float64) float64 {
	if math.IsInf(dB, -1) {
		return track.SilenceDB
	}

	return dB
}
