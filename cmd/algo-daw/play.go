package main

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-daw/clip"
	"github.com/cwbudde/algo-daw/dsp/buffer"
	"github.com/cwbudde/algo-daw/dsp/core"
	"github.com/cwbudde/algo-daw/dsp/signal"
	"github.com/cwbudde/algo-daw/engine"
	"github.com/cwbudde/algo-daw/events"
	"github.com/cwbudde/algo-daw/live/otodriver"
	"github.com/cwbudde/algo-daw/project"
	"github.com/cwbudde/algo-daw/track"
)

const (
	reloadDelay      = 150 * time.Millisecond
	driverPoll       = 250 * time.Millisecond
	testToneLevel    = 0.25
	metronomeLevel   = 0.5
	minTestToneSecs  = 2.0
	defaultBufferLen = 100 * time.Millisecond
)

type playOptions struct {
	from      float64
	duration  float64
	tail      float64
	toneHz    float64
	metronome bool
	watch     bool
	buffer    time.Duration
}

func newPlayCmd(a *app) *cobra.Command {
	var o playOptions

	cmd := &cobra.Command{
		Use:   "play [PROJECT]",
		Short: "Play a project through the default audio device",
		Long: `Play a project through the default audio device until it ends or the
command is interrupted. With --watch the project file is reloaded whenever
it changes, without stopping playback.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" && o.toneHz == 0 && !o.metronome {
				return fmt.Errorf("play: nothing to play; give a project, --test-tone or --metronome")
			}

			return a.play(cmd.Context(), path, o)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&o.from, "from", 0, "start position in seconds")
	f.Float64VarP(&o.duration, "duration", "d", 0, "stop after this many seconds (default: end of the session)")
	f.Float64Var(&o.tail, "tail", 1, "seconds to keep playing after the last clip")
	f.Float64Var(&o.toneHz, "test-tone", 0, "add a sine track at this frequency in Hz")
	f.BoolVar(&o.metronome, "metronome", false, "add a click track at the session tempo")
	f.BoolVarP(&o.watch, "watch", "w", false, "reload the project when the file changes; play until interrupted")
	f.DurationVar(&o.buffer, "buffer", defaultBufferLen, "audio device buffer length")

	return cmd
}

func (a *app) play(ctx context.Context, path string, o playOptions) error {
	var p project.Project

	ec := a.cfg.Engine()
	if path != "" {
		var err error
		if p, ec, err = a.loadProject(path); err != nil {
			return err
		}
	}

	drv, err := otodriver.New(ec.SampleRate, otodriver.WithBufferSize(o.buffer))
	if err != nil {
		return err
	}

	e, err := a.newEngine(ec, engine.WithDriver(drv))
	if err != nil {
		return err
	}
	defer e.Close()

	if path != "" {
		if err := e.Load(p, project.NewFileResolver(path, ec.SampleRate)); err != nil {
			return err
		}
	}

	generate := func(e *engine.Engine) error { return addGenerated(e, o) }
	if err := generate(e); err != nil {
		return err
	}

	sub := e.Subscribe(32)
	defer sub.Unsubscribe()
	go a.logEvents(sub.C)

	if o.watch && path != "" {
		w, err := a.watchProject(ctx, e, path, ec.SampleRate, generate)
		if err != nil {
			return err
		}
		defer w.Close()
	}

	if err := e.Play(o.from); err != nil {
		return err
	}

	var until <-chan time.Time
	switch {
	case o.duration > 0:
		until = time.After(seconds(o.duration))
	case !o.watch:
		until = time.After(seconds(e.Length() - o.from + o.tail))
	}

	tick := time.NewTicker(driverPoll)
	defer tick.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-until:
			break loop
		case <-tick.C:
			if err := drv.Err(); err != nil {
				_ = e.Stop()

				return err
			}
		}
	}

	return e.Stop()
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Max(s, 0) * float64(time.Second))
}

func (a *app) logEvents(c <-chan events.Event) {
	for ev := range c {
		a.log.Debug("event",
			zap.String("type", string(ev.Type)),
			zap.String("track", ev.TrackID),
			zap.Float64("position", ev.Position),
		)
	}
}

// addGenerated adds the tracks requested by --test-tone and --metronome,
// sized to the session.
func addGenerated(e *engine.Engine, o playOptions) error {
	if o.toneHz > 0 {
		if err := addTestTone(e, o.toneHz, max(e.Length(), o.from+minTestToneSecs)); err != nil {
			return err
		}
	}
	if o.metronome {
		if err := addMetronome(e, max(e.Length(), o.from+minTestToneSecs)); err != nil {
			return err
		}
	}

	return nil
}

// addGeneratedTrack places samples as a single clip at 0 on a new audio
// track.
func addGeneratedTrack(e *engine.Engine, name string, samples []float64) error {
	sr := e.Config().SampleRate

	src, err := clip.NewAudioSource(name, sr, buffer.FromChannels(samples))
	if err != nil {
		return err
	}
	c, err := clip.New(src, 0, 0, src.Length())
	if err != nil {
		return err
	}

	id, err := e.AddTrack(engine.TrackConfig{Name: name, Type: track.TypeAudio})
	if err != nil {
		return err
	}
	_, err = e.AddClip(id, c)

	return err
}

func addTestTone(e *engine.Engine, hz, length float64) error {
	sr := e.Config().SampleRate
	g := signal.NewGenerator(core.WithSampleRate(sr))

	samples, err := g.Sine(hz, testToneLevel, int(core.SecondsToFrames(length, sr)))
	if err != nil {
		return err
	}

	return addGeneratedTrack(e, "test tone", samples)
}

func addMetronome(e *engine.Engine, length float64) error {
	clock := e.Clock()
	g := signal.NewGenerator(core.WithSampleRate(e.Config().SampleRate))

	beats := int(math.Ceil(length / clock.SecondsPerBeat()))
	samples, err := g.Click(clock.Tempo, clock.TimeSignature.Numerator, beats, metronomeLevel)
	if err != nil {
		return err
	}

	return addGeneratedTrack(e, "metronome", samples)
}

// watchProject reloads path into e whenever the file is written. Editors
// often replace the file, so the directory is watched and events are
// filtered by name. Bursts of events collapse into one reload, after which
// generate re-adds the tracks that do not come from the file.
func (a *app) watchProject(
	ctx context.Context, e *engine.Engine, path string, sampleRate float64, generate func(*engine.Engine) error,
) (*fsnotify.Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()

		return nil, fmt.Errorf("watch: %w", err)
	}

	go func() {
		var reload <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Rename) {
					reload = time.After(reloadDelay)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				a.log.Warn("watching project", zap.Error(err))
			case <-reload:
				reload = nil
				a.reload(e, abs, sampleRate, generate)
			}
		}
	}()

	a.log.Info("watching project", zap.String("file", abs))

	return w, nil
}

// reload keeps the current session when the new file does not load.
func (a *app) reload(e *engine.Engine, path string, sampleRate float64, generate func(*engine.Engine) error) {
	p, err := project.LoadFile(path)
	if err != nil {
		a.log.Warn("project reload failed", zap.Error(err))

		return
	}

	if err := e.Load(p, project.NewFileResolver(path, sampleRate)); err != nil {
		a.log.Warn("project reload failed", zap.Error(err))

		return
	}

	if generate != nil {
		if err := generate(e); err != nil {
			a.log.Warn("re-adding generated tracks", zap.Error(err))
		}
	}

	a.log.Info("project reloaded", zap.String("file", path), zap.Int("tracks", len(p.Tracks)))
}
