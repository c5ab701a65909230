package main

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-vecmath/cpu"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-daw/dsp/effectchain"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the audio configuration, SIMD support and available effects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.info(cmd.OutOrStdout())
		},
	}
}

func (a *app) info(out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	ec := a.cfg.Engine()
	fmt.Fprintln(tw, "AUDIO")
	fmt.Fprintf(tw, "  sample rate\t%g Hz\n", ec.SampleRate)
	fmt.Fprintf(tw, "  block size\t%d frames (%.2f ms)\n", ec.BlockSize, 1000*float64(ec.BlockSize)/ec.SampleRate)
	fmt.Fprintf(tw, "  tempo\t%g BPM\n", ec.Tempo)
	fmt.Fprintf(tw, "  limiter\t%g dBFS, %g ms release\n", ec.Master.CeilingDB, ec.Master.ReleaseMs)
	if a.cfg.Audio.PoolCeiling > 0 {
		fmt.Fprintf(tw, "  pool ceiling\t%d samples\n", a.cfg.Audio.PoolCeiling)
	} else {
		fmt.Fprintln(tw, "  pool ceiling\tunbounded")
	}

	f := cpu.DetectFeatures()
	fmt.Fprintln(tw, "\nCPU")
	fmt.Fprintf(tw, "  architecture\t%s (%s)\n", f.Architecture, runtime.GOOS)
	fmt.Fprintf(tw, "  SIMD\t%s\n", simdList(f))

	reg := effectchain.DefaultRegistry()
	fmt.Fprintln(tw, "\nEFFECTS")
	for _, kind := range reg.Kinds() {
		def, _ := reg.Lookup(kind)
		fmt.Fprintf(tw, "  %s\tmix %g\n", kind, def.DefaultMix)
		for _, p := range def.Schema {
			fmt.Fprintf(tw, "    %s\t%s\n", p.Name, describeParam(p))
		}
	}

	return tw.Flush()
}

func simdList(f cpu.Features) string {
	var names []string
	for _, s := range []struct {
		name string
		ok   bool
	}{
		{"SSE2", f.HasSSE2},
		{"AVX", f.HasAVX},
		{"AVX2", f.HasAVX2},
		{"AVX-512", f.HasAVX512},
		{"NEON", f.HasNEON},
	} {
		if s.ok {
			names = append(names, s.name)
		}
	}

	if len(names) == 0 {
		return "none (generic kernels)"
	}

	return strings.Join(names, ", ")
}

func describeParam(p effectchain.ParamSpec) string {
	if p.Type == effectchain.ParamEnum {
		return fmt.Sprintf("%s (default %s)", strings.Join(p.Options, " | "), p.Options[int(p.Default)])
	}

	unit := ""
	if p.Unit != "" {
		unit = " " + p.Unit
	}

	return fmt.Sprintf("%g .. %g%s (default %g)", p.Min, p.Max, unit, p.Default)
}
