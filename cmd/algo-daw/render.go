package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/dsp/dither"
	"github.com/cwbudde/algo-daw/dsp/filter/weighting"
	"github.com/cwbudde/algo-daw/engine"
	"github.com/cwbudde/algo-daw/export"
	"github.com/cwbudde/algo-daw/measure/stats"
)

type renderOptions struct {
	out      string
	start    float64
	duration float64
	tail     float64
	encoding string
	dither   string
	shaping  string
	seed     uint64
	title    string
	upload   bool
	report   bool
	weight   string
}

func newRenderCmd(a *app) *cobra.Command {
	var o renderOptions

	cmd := &cobra.Command{
		Use:   "render PROJECT",
		Short: "Render a project offline to a WAV file",
		Long: `Render a project offline with the same graph live playback uses.
Without --duration the render runs to the end of the last clip, followed by
--tail seconds for reverb and delay to ring out.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.render(cmd.Context(), cmd.OutOrStdout(), args[0], o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.out, "out", "o", "", "output file (default: project name with .wav)")
	f.Float64Var(&o.start, "start", 0, "timeline position to start from, in seconds")
	f.Float64VarP(&o.duration, "duration", "d", 0, "seconds to render (default: to the end of the last clip)")
	f.Float64Var(&o.tail, "tail", 2, "extra seconds rendered after the duration")
	f.StringVarP(&o.encoding, "encoding", "e", export.PCM24.String(), "sample format: pcm16, pcm24, pcm32 or float32")
	f.StringVar(&o.dither, "dither", dither.KindTriangular.String(), "dither for PCM output: none, rectangular or triangular")
	f.StringVar(&o.shaping, "shaping", dither.ShapingNone.String(), "noise shaping: none, efb, 2sc, 3fc or 9fc")
	f.Uint64Var(&o.seed, "seed", 0, "dither seed for reproducible output")
	f.StringVar(&o.title, "title", "", "title stored in the file (default: project file name)")
	f.BoolVar(&o.upload, "upload", false, "upload to the configured MinIO bucket instead of writing a file")
	f.BoolVar(&o.report, "report", false, "print level statistics of the render")
	f.StringVar(&o.weight, "weighting", weighting.TypeA.String(), "weighting curve for the reported RMS: A, C or Z")

	return cmd
}

func (o renderOptions) wavOptions() ([]export.Option, error) {
	enc, err := export.ParseEncoding(o.encoding)
	if err != nil {
		return nil, err
	}
	kind, err := dither.ParseKind(o.dither)
	if err != nil {
		return nil, err
	}
	shaping, err := dither.ParseShaping(o.shaping)
	if err != nil {
		return nil, err
	}

	opts := []export.Option{
		export.WithEncoding(enc),
		export.WithDither(kind, shaping),
	}
	if o.seed != 0 {
		opts = append(opts, export.WithSeed(o.seed))
	}

	return opts, nil
}

func (a *app) render(ctx context.Context, out io.Writer, path string, o renderOptions) error {
	wavOpts, err := o.wavOptions()
	if err != nil {
		return err
	}
	curve, err := weighting.Parse(o.weight)
	if err != nil {
		return err
	}

	e, ec, err := a.openProject(path)
	if err != nil {
		return err
	}
	defer e.Close()

	duration := o.duration
	if duration == 0 {
		duration = e.Length() - o.start
	}
	if duration <= 0 {
		return fmt.Errorf("render: %s has nothing to play after %g s: %w", path, o.start, daw.ErrInvalidRange)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	name := o.out
	if name == "" {
		name = stem + ".wav"
	}

	title := o.title
	if title == "" {
		title = stem
	}
	wavOpts = append(wavOpts, export.WithTitle(title))

	started := time.Now()
	buf, err := e.RenderOffline(ctx, duration, o.tail,
		engine.WithStart(o.start),
		engine.WithProgress(func(done, total int) {
			if done%500 == 0 || done == total {
				a.log.Debug("rendering", zap.Int("block", done), zap.Int("blocks", total))
			}
		}),
	)
	if err != nil {
		return err
	}

	rep, err := stats.Analyze(buf, ec.SampleRate, curve)
	if err != nil {
		return err
	}
	if o.report {
		if err := printReport(out, rep); err != nil {
			return err
		}
	}

	fields := []zap.Field{
		zap.Float64("seconds", rep.Seconds()),
		zap.Float64("peakDb", rep.PeakDB()),
		zap.Float64("rmsDb", rep.WeightedRMSDB),
		zap.Int("clipped", rep.Clipped()),
		zap.Duration("took", time.Since(started)),
	}

	if o.upload {
		sink, err := a.minioSink(ctx)
		if err != nil {
			return err
		}

		loc, err := export.Publish(ctx, sink, filepath.Base(name), buf, ec.SampleRate, wavOpts...)
		if err != nil {
			return err
		}
		a.log.Info("render uploaded", append(fields, zap.String("object", loc))...)

		return nil
	}

	if err := export.WriteWAVFile(name, buf, ec.SampleRate, wavOpts...); err != nil {
		return err
	}
	a.log.Info("render written", append(fields, zap.String("file", name))...)

	return nil
}

func printReport(out io.Writer, r stats.Report) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintln(tw, "channel\tpeak dBFS\trms dBFS\tcrest dB\tdc\tclipped\t")
	for i, c := range r.Channels {
		fmt.Fprintf(tw, "%d\t%.2f\t%.2f\t%.2f\t%+.5f\t%d\t\n", i, c.PeakDB(), c.RMSDB(), c.CrestDB(), c.DC, c.Clipped)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(out, "%.3f s, %s-weighted RMS %.2f dB\n", r.Seconds(), r.Weighting, r.WeightedRMSDB)

	return err
}
