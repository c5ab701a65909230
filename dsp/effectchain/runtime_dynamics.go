package effectchain

import (
	"fmt"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-daw/dsp/core"
	"github.com/cwbudde/algo-daw/dsp/effects"
)

type compressorRuntime struct {
	fx *effects.Compressor
}

func (r *compressorRuntime) Configure(ctx Context, p Params) error {
	err := r.fx.SetSampleRate(ctx.SampleRate)
	if err != nil {
		return fmt.Errorf("effectchain: configure compressor sample rate: %w", err)
	}

	err = r.fx.SetThreshold(p.GetNum("thresholdDB", -20))
	if err != nil {
		return fmt.Errorf("effectchain: configure compressor threshold: %w", err)
	}

	err = r.fx.SetRatio(p.GetNum("ratio", 4))
	if err != nil {
		return fmt.Errorf("effectchain: configure compressor ratio: %w", err)
	}

	err = r.fx.SetKnee(p.GetNum("kneeDB", 6))
	if err != nil {
		return fmt.Errorf("effectchain: configure compressor knee: %w", err)
	}

	err = r.fx.SetAttack(p.GetNum("attackMs", 10))
	if err != nil {
		return fmt.Errorf("effectchain: configure compressor attack: %w", err)
	}

	err = r.fx.SetRelease(p.GetNum("releaseMs", 100))
	if err != nil {
		return fmt.Errorf("effectchain: configure compressor release: %w", err)
	}

	err = r.fx.SetMakeupGain(p.GetNum("makeupGainDB", 0))
	if err != nil {
		return fmt.Errorf("effectchain: configure compressor makeup gain: %w", err)
	}

	return nil
}

func (r *compressorRuntime) Process(left, right []float64) { r.fx.Process(left, right) }
func (r *compressorRuntime) Reset()                        { r.fx.Reset() }

type limiterRuntime struct {
	fx *effects.Limiter
}

func (r *limiterRuntime) Configure(ctx Context, p Params) error {
	err := r.fx.SetSampleRate(ctx.SampleRate)
	if err != nil {
		return fmt.Errorf("effectchain: configure limiter sample rate: %w", err)
	}

	err = r.fx.SetCeiling(p.GetNum("ceilingDB", effects.DefaultLimiterCeilingDB))
	if err != nil {
		return fmt.Errorf("effectchain: configure limiter ceiling: %w", err)
	}

	err = r.fx.SetRelease(p.GetNum("releaseMs", 50))
	if err != nil {
		return fmt.Errorf("effectchain: configure limiter release: %w", err)
	}

	return nil
}

func (r *limiterRuntime) Process(left, right []float64) { r.fx.Process(left, right) }
func (r *limiterRuntime) Reset()                        { r.fx.Reset() }

type gainRuntime struct {
	gain float64
}

func (r *gainRuntime) Configure(_ Context, p Params) error {
	r.gain = core.DBToGain(p.GetNum("gainDB", 0))

	return nil
}

func (r *gainRuntime) Process(left, right []float64) {
	if r.gain == 1 {
		return
	}

	vecmath.ScaleBlockInPlace(left, r.gain)
	vecmath.ScaleBlockInPlace(right, r.gain)
}

func (r *gainRuntime) Reset() {}
