package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/clip"
	"github.com/cwbudde/algo-daw/dsp/buffer"
	"github.com/cwbudde/algo-daw/engine"
	"github.com/cwbudde/algo-daw/export"
	"github.com/cwbudde/algo-daw/internal/testutil"
	"github.com/cwbudde/algo-daw/project"
	"github.com/cwbudde/algo-daw/track"
)

const testRate = 48000.0

// writeProject saves a session with one audio track playing 0.5 s of DC at
// 0.25. With empty set, the session has no clips.
func writeProject(t *testing.T, empty bool) string {
	t.Helper()

	e, err := engine.New(engine.Config{SampleRate: testRate, BlockSize: 256})
	require.NoError(t, err)
	defer e.Close()

	id, err := e.AddTrack(engine.TrackConfig{Name: "dc", Type: track.TypeAudio})
	require.NoError(t, err)

	if !empty {
		src, err := clip.NewAudioSource("dc", testRate, buffer.FromChannels(testutil.DC(0.25, 24000)))
		require.NoError(t, err)
		c, err := clip.New(src, 0, 0, 0.5)
		require.NoError(t, err)
		_, err = e.AddClip(id, c)
		require.NoError(t, err)
	}

	path := filepath.Join(t.TempDir(), "song.yaml")
	p := e.Snapshot()
	require.NoError(t, project.StoreSources(&p, path, "audio", project.CollectSources(e.Tracks())))
	require.NoError(t, project.SaveFile(path, p))

	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	env := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(env, []byte("DAW_LOG_LEVEL=error\n"), 0o600))

	a := &app{}
	root := newRootCmd(a)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--env-file", env}, args...))

	err := root.ExecuteContext(context.Background())
	a.close()

	return out.String(), err
}

func TestRenderWritesWAV(t *testing.T) {
	path := writeProject(t, false)
	out := filepath.Join(t.TempDir(), "mix.wav")

	report, err := run(t, "render", path, "-o", out, "--tail", "0.25", "-e", "float32", "--report")
	require.NoError(t, err)
	require.Contains(t, report, "peak dBFS")
	require.Contains(t, report, "-12.04")
	require.Contains(t, report, "0.750 s, A-weighted RMS")

	buf, rate, err := export.ReadWAVFile(out)
	require.NoError(t, err)
	require.Equal(t, testRate, rate)
	require.Equal(t, 36000, buf.Frames())

	left, right := buf.Stereo()
	require.InDelta(t, 0.25, left[100], 1e-6)
	require.InDelta(t, 0.25, right[12000], 1e-6)
	require.Zero(t, left[30000])
}

func TestRenderDuration(t *testing.T) {
	path := writeProject(t, false)
	out := filepath.Join(t.TempDir(), "short.wav")

	_, err := run(t, "render", path, "-o", out, "-d", "0.1", "--tail", "0", "--seed", "7")
	require.NoError(t, err)

	buf, _, err := export.ReadWAVFile(out)
	require.NoError(t, err)
	require.Equal(t, 4800, buf.Frames())
}

func TestRenderErrors(t *testing.T) {
	path := writeProject(t, false)

	_, err := run(t, "render", path, "-e", "mp3")
	require.ErrorIs(t, err, daw.ErrInvalidParameter)

	_, err = run(t, "render", path, "--dither", "loud")
	require.ErrorIs(t, err, daw.ErrInvalidParameter)

	_, err = run(t, "render", path, "--weighting", "B")
	require.ErrorIs(t, err, daw.ErrInvalidParameter)

	_, err = run(t, "render", path, "--start", "3")
	require.ErrorIs(t, err, daw.ErrInvalidRange)

	_, err = run(t, "render", writeProject(t, true))
	require.ErrorIs(t, err, daw.ErrInvalidRange)

	_, err = run(t, "render", filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, daw.ErrNotFound)
}

func TestInfoListsEffects(t *testing.T) {
	out, err := run(t, "info")
	require.NoError(t, err)

	require.Contains(t, out, "48000 Hz")
	require.Contains(t, out, "CPU")
	require.Contains(t, out, "compressor")
	require.Contains(t, out, "ratio")
	require.Contains(t, out, "1/8d")
}

func TestUploadChecksFilesFirst(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "notes.wav")
	require.NoError(t, os.WriteFile(bad, []byte("not a wav file"), 0o600))

	_, err := run(t, "upload", bad)
	require.Error(t, err)
	require.Contains(t, err.Error(), bad)
}

func TestPlayNeedsSomethingToPlay(t *testing.T) {
	_, err := run(t, "play")
	require.ErrorContains(t, err, "nothing to play")
}

func TestBadLogLevel(t *testing.T) {
	_, err := run(t, "--log-level", "loud", "info")
	require.ErrorIs(t, err, daw.ErrInvalidParameter)
}

func TestReloadKeepsGeneratedTracks(t *testing.T) {
	path := writeProject(t, false)
	a := &app{log: zap.NewNop()}

	e, err := engine.New(engine.Config{SampleRate: testRate, BlockSize: 256})
	require.NoError(t, err)
	defer e.Close()

	generate := func(e *engine.Engine) error {
		return addGenerated(e, playOptions{toneHz: 440, metronome: true})
	}
	require.NoError(t, generate(e))
	require.Len(t, e.Tracks(), 2)

	names := func() []string {
		var out []string
		for _, tr := range e.Tracks() {
			out = append(out, tr.Name)
		}

		return out
	}

	a.reload(e, path, testRate, generate)
	require.Equal(t, []string{"dc", "test tone", "metronome"}, names())

	// a broken file keeps the session as it was
	require.NoError(t, os.WriteFile(path, []byte("tracks: [\n"), 0o600))
	a.reload(e, path, testRate, generate)
	require.Equal(t, []string{"dc", "test tone", "metronome"}, names())
}
