package project

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/clip"
	"github.com/cwbudde/algo-daw/dsp/buffer"
	"github.com/cwbudde/algo-daw/dsp/effectchain"
	"github.com/cwbudde/algo-daw/export"
	"github.com/cwbudde/algo-daw/internal/testutil"
	"github.com/cwbudde/algo-daw/mixer"
	"github.com/cwbudde/algo-daw/track"
)

func sessionTracks(t *testing.T) ([]*track.Track, *clip.AudioSource) {
	t.Helper()

	reg := effectchain.DefaultRegistry()

	src, err := clip.NewAudioSource("", 48000, buffer.FromChannels(testutil.DeterministicSine(220, 48000, 0.5, 48000)))
	require.NoError(t, err)

	aux, err := track.New("Verb", track.TypeAux)
	require.NoError(t, err)
	verb, err := reg.NewSlot(effectchain.KindReverb)
	require.NoError(t, err)
	require.NoError(t, verb.SetParameter("decay", 2.5))
	require.NoError(t, aux.AddEffect(verb, -1))

	vox, err := track.New("Vox", track.TypeAudio)
	require.NoError(t, err)
	require.NoError(t, vox.SetVolume(-6))
	require.NoError(t, vox.SetPan(-0.25))
	require.NoError(t, vox.SetArmed(true))
	require.NoError(t, vox.SetSend(track.Send{Target: aux.ID, Level: 0.5, PreFader: true}))

	eq, err := reg.NewSlot(effectchain.KindEQ)
	require.NoError(t, err)
	require.NoError(t, eq.SetParameter("midGainDB", 3))
	require.NoError(t, eq.SetEnum("highPass", "24dB"))
	eq.Toggle(false)
	require.NoError(t, vox.AddEffect(eq, -1))

	c, err := clip.New(src, 0.5, 0.1, 0.8)
	require.NoError(t, err)
	c, err = c.WithFades(clip.Fade{Duration: 0.01, Shape: clip.ShapeSCurve}, clip.Fade{Duration: 0.2, Shape: clip.ShapeExponential})
	require.NoError(t, err)
	require.NoError(t, vox.AddClip(c))

	synth, err := track.New("Keys", track.TypeInstrument)
	require.NoError(t, err)
	require.NoError(t, synth.SetVolume(math.Inf(-1)))
	require.NoError(t, synth.SetInstrument(clip.Instrument{Waveform: clip.WaveSaw, Attack: 0.01, Release: 0.2, Gain: 0.3}))

	seq, err := clip.NewNoteSequence("", []clip.Note{{Pitch: 60, Velocity: 100, Start: 0, Length: 0.5}, {Pitch: 67, Velocity: 90, Start: 0.5, Length: 0.5}}, 1)
	require.NoError(t, err)
	nc, err := clip.New(seq, 1, 0, 1)
	require.NoError(t, err)
	require.NoError(t, synth.AddClip(nc))

	return []*track.Track{vox, synth, aux}, src
}

func sessionProject(t *testing.T) (Project, []*track.Track, MapResolver) {
	t.Helper()

	tracks, _ := sessionTracks(t)

	return Project{
		Name:          "demo",
		SampleRate:    48000,
		BlockSize:     256,
		Tempo:         96,
		TimeSignature: TimeSignature{Numerator: 3, Denominator: 4},
		Loop:          &Loop{Start: 1, End: 3},
		Master:        FromMaster(mixer.MasterSettings{GainDB: -2, CeilingDB: -1, ReleaseMs: 80}),
		Tracks:        FromTracks(tracks),
	}, tracks, CollectSources(tracks)
}

func requireSameTracks(t *testing.T, want, got []*track.Track) {
	t.Helper()

	require.Len(t, got, len(want))
	for i := range want {
		w, g := want[i], got[i]
		require.Equal(t, w.ID, g.ID)
		require.Equal(t, w.Name, g.Name)
		require.Equal(t, w.Type, g.Type)
		require.Equal(t, w.Gain(), g.Gain())
		require.Equal(t, w.Pan, g.Pan)
		require.Equal(t, w.Armed, g.Armed)
		require.Equal(t, w.Sends, g.Sends)
		require.Equal(t, w.Instrument, g.Instrument)

		require.Len(t, g.Effects, len(w.Effects))
		for j := range w.Effects {
			require.Equal(t, w.Effects[j].ID, g.Effects[j].ID)
			require.Equal(t, w.Effects[j].Enabled, g.Effects[j].Enabled)
			require.Equal(t, w.Effects[j].Mix, g.Effects[j].Mix)
			require.Equal(t, w.Effects[j].Params, g.Effects[j].Params)
		}

		require.Len(t, g.Clips, len(w.Clips))
		for j := range w.Clips {
			wc, gc := w.Clips[j], g.Clips[j]
			require.Equal(t, wc.ID, gc.ID)
			require.Equal(t, wc.Start, gc.Start)
			require.Equal(t, wc.Offset, gc.Offset)
			require.Equal(t, wc.Duration, gc.Duration)
			require.Equal(t, wc.FadeIn, gc.FadeIn)
			require.Equal(t, wc.FadeOut, gc.FadeOut)
			require.Equal(t, wc.Source.SourceID(), gc.Source.SourceID())
		}
	}
}

func TestRoundTripThroughYAMLAndJSON(t *testing.T) {
	t.Parallel()

	for _, asJSON := range []bool{false, true} {
		p, tracks, sources := sessionProject(t)

		data, err := Marshal(p, asJSON)
		require.NoError(t, err)

		back, err := Parse(data)
		require.NoError(t, err)
		require.Equal(t, Version, back.Version)
		require.Equal(t, p.Tempo, back.Tempo)
		require.Equal(t, p.TimeSignature, back.TimeSignature)
		require.Equal(t, *p.Loop, *back.Loop)
		require.Equal(t, mixer.MasterSettings{GainDB: -2, CeilingDB: -1, ReleaseMs: 80}, back.Master.Settings())

		got, err := BuildTracks(back.Tracks, effectchain.DefaultRegistry(), sources)
		require.NoError(t, err)
		requireSameTracks(t, tracks, got)
	}
}

func TestSilentVolumeSurvivesJSON(t *testing.T) {
	t.Parallel()

	p, _, _ := sessionProject(t)
	require.Equal(t, track.SilenceDB, p.Tracks[1].VolumeDB)

	_, err := Marshal(p, true)
	require.NoError(t, err)
}

func TestZeroMasterMeansDefaults(t *testing.T) {
	t.Parallel()

	require.Equal(t, mixer.DefaultMasterSettings(), Master{}.Settings())
}

func TestOmittedKeysDefaultToNeutral(t *testing.T) {
	t.Parallel()

	docs := map[string]string{
		"yaml": `
tracks:
  - name: keys
    type: instrument
    instrument: {waveform: saw}
    effects:
      - kind: delay
      - {kind: gain, enabled: false, mix: 0}
    clips:
      - start: 1
        duration: 2
        source: {kind: notes}
      - {duration: 1, gain: 0, source: {kind: notes}}
`,
		"json": `{"tracks": [{"name": "keys", "type": "instrument",
  "instrument": {"waveform": "saw"},
  "effects": [{"kind": "delay"}, {"kind": "gain", "enabled": false, "mix": 0}],
  "clips": [{"start": 1, "duration": 2, "source": {"kind": "notes"}},
            {"duration": 1, "gain": 0, "source": {"kind": "notes"}}]}]}`,
	}

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p, err := Parse([]byte(doc))
			require.NoError(t, err)
			require.Len(t, p.Tracks, 1)
			tr := p.Tracks[0]

			require.Equal(t, 1.0, tr.Clips[0].Rate)
			require.Equal(t, 1.0, tr.Clips[0].Gain)
			require.Equal(t, 1.0, tr.Clips[1].Rate)
			require.Zero(t, tr.Clips[1].Gain, "explicit values win")

			require.True(t, tr.Effects[0].Enabled)
			require.Equal(t, 1.0, tr.Effects[0].Mix)
			require.False(t, tr.Effects[1].Enabled)
			require.Zero(t, tr.Effects[1].Mix)

			require.NotNil(t, tr.Instrument)
			require.Equal(t, 1.0, tr.Instrument.Gain)
			require.Equal(t, "saw", tr.Instrument.Waveform)
		})
	}
}

func TestParseRejects(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("{{{ nope"))
	require.ErrorIs(t, err, daw.ErrInvalidParameter)

	_, err = Parse([]byte("version: 99\n"))
	require.ErrorIs(t, err, daw.ErrInvalidParameter)
}

func TestBuildErrors(t *testing.T) {
	t.Parallel()

	reg := effectchain.DefaultRegistry()
	p, _, sources := sessionProject(t)

	bad := p.Tracks[0]
	bad.Type = "bus"
	_, err := bad.Build(reg, sources)
	require.ErrorIs(t, err, daw.ErrInvalidParameter)

	_, err = p.Tracks[0].Build(reg, MapResolver{})
	require.ErrorIs(t, err, daw.ErrNotFound)

	_, err = p.Tracks[0].Build(reg, nil)
	require.ErrorIs(t, err, daw.ErrNotFound)

	unknown := p.Tracks[2]
	unknown.Effects = []Effect{{Kind: "flanger", Enabled: true, Mix: 1}}
	_, err = unknown.Build(reg, sources)
	require.ErrorIs(t, err, daw.ErrInvalidParameter)

	outOfRange := p.Tracks[2]
	outOfRange.Effects = []Effect{{Kind: effectchain.KindGain, Enabled: true, Mix: 1, Params: map[string]float64{"gainDB": 99}}}
	_, err = outOfRange.Build(reg, sources)
	require.ErrorIs(t, err, daw.ErrInvalidParameter)

	tooLong := p.Tracks[0]
	tooLong.Clips = []Clip{p.Tracks[0].Clips[0]}
	tooLong.Clips[0].Duration = 5
	_, err = tooLong.Build(reg, sources)
	require.ErrorIs(t, err, daw.ErrInvalidRange)
}

func TestFilesAndSources(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "song.yaml")

	p, tracks, sources := sessionProject(t)
	require.NoError(t, StoreSources(&p, path, "audio", sources))
	require.NotEmpty(t, p.Tracks[0].Clips[0].Source.Path)
	require.NoError(t, SaveFile(path, p))

	loaded, err := LoadFile(path)
	require.NoError(t, err)

	res := NewFileResolver(path, 48000)
	got, err := BuildTracks(loaded.Tracks, effectchain.DefaultRegistry(), res)
	require.NoError(t, err)
	requireSameTracks(t, tracks, got)

	// Float WAV keeps the samples exactly at float32 precision.
	want := sources[p.Tracks[0].Clips[0].Source.ID].Buffer().Channel(0)
	gotSrc := got[0].Clips[0].Source.(*clip.AudioSource)
	testutil.RequireSliceNearlyEqual(t, gotSrc.Buffer().Channel(0), want, 1e-7)

	again, err := res.Resolve(loaded.Tracks[0].Clips[0].Source)
	require.NoError(t, err)
	require.Same(t, gotSrc, again)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, daw.ErrNotFound)
}

func TestFileResolverResamples(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	wav := buffer.FromChannels(testutil.DC(0.25, 22050))
	require.NoError(t, export.WriteWAVFile(filepath.Join(dir, "dc.wav"), wav, 22050, export.WithEncoding(export.Float32)))

	res := NewFileResolver(filepath.Join(dir, "p.yaml"), 44100)
	a, err := res.Resolve(Source{ID: "dc", Kind: SourceAudio, Path: "dc.wav"})
	require.NoError(t, err)
	require.Equal(t, 44100.0, a.SampleRate())
	require.Equal(t, 44100, a.Frames())
	require.InDelta(t, 0.25, a.Buffer().Channel(0)[22050], 1e-3)
}

func TestResolversFallBack(t *testing.T) {
	t.Parallel()

	_, _, sources := sessionProject(t)
	var id string
	for k := range sources {
		id = k
	}

	rs := Resolvers{MapResolver{}, sources}
	a, err := rs.Resolve(Source{ID: id, Kind: SourceAudio})
	require.NoError(t, err)
	require.Equal(t, id, a.SourceID())

	_, err = rs.Resolve(Source{ID: "nope", Kind: SourceAudio})
	require.ErrorIs(t, err, daw.ErrNotFound)

	_, err = Resolvers{}.Resolve(Source{ID: "nope"})
	require.ErrorIs(t, err, daw.ErrNotFound)
}
