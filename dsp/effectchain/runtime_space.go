package effectchain

import (
	"fmt"

	"github.com/cwbudde/algo-daw/dsp/effects"
)

type eqRuntime struct {
	fx *effects.EQ
}

func (r *eqRuntime) Configure(ctx Context, p Params) error {
	err := r.fx.SetSampleRate(ctx.SampleRate)
	if err != nil {
		return fmt.Errorf("effectchain: configure eq sample rate: %w", err)
	}

	bands := []effects.Band{
		passBand(effects.BandHighPass, p.GetEnum("highPass", 0), p.GetNum("highPassFreq", 30)),
		{
			Kind:    effects.BandLowShelf,
			Freq:    p.GetNum("lowFreq", 120),
			GainDB:  p.GetNum("lowGainDB", 0),
			Q:       0.7071,
			Enabled: true,
		},
		{
			Kind:    effects.BandPeak,
			Freq:    p.GetNum("midFreq", 1000),
			GainDB:  p.GetNum("midGainDB", 0),
			Q:       p.GetNum("midQ", 1),
			Enabled: true,
		},
		{
			Kind:    effects.BandHighShelf,
			Freq:    p.GetNum("highFreq", 8000),
			GainDB:  p.GetNum("highGainDB", 0),
			Q:       0.7071,
			Enabled: true,
		},
		passBand(effects.BandLowPass, p.GetEnum("lowPass", 0), p.GetNum("lowPassFreq", 18000)),
	}

	err = r.fx.SetBands(bands)
	if err != nil {
		return fmt.Errorf("effectchain: configure eq bands: %w", err)
	}

	return nil
}

// passBand maps the off/12dB/24dB option index to a Butterworth band.
func passBand(kind effects.BandKind, option int, freq float64) effects.Band {
	return effects.Band{
		Kind:    kind,
		Freq:    freq,
		Q:       0.7071,
		Order:   2 * option,
		Enabled: option > 0,
	}
}

func (r *eqRuntime) Process(left, right []float64) { r.fx.Process(left, right) }
func (r *eqRuntime) Reset()                        { r.fx.Reset() }

type reverbRuntime struct {
	fx *effects.Reverb
}

func (r *reverbRuntime) Configure(ctx Context, p Params) error {
	if ctx.SampleRate != r.fx.SampleRate() {
		fx, err := effects.NewReverb(ctx.SampleRate)
		if err != nil {
			return fmt.Errorf("effectchain: configure reverb sample rate: %w", err)
		}
		r.fx = fx
	}

	err := r.fx.SetDecay(p.GetNum("decay", 1.8))
	if err != nil {
		return fmt.Errorf("effectchain: configure reverb decay: %w", err)
	}

	err = r.fx.SetDamp(p.GetNum("damping", 0.5))
	if err != nil {
		return fmt.Errorf("effectchain: configure reverb damping: %w", err)
	}

	err = r.fx.SetPreDelay(p.GetNum("preDelayMs", 20) / 1000)
	if err != nil {
		return fmt.Errorf("effectchain: configure reverb pre-delay: %w", err)
	}

	return nil
}

func (r *reverbRuntime) Process(left, right []float64) { r.fx.Process(left, right) }
func (r *reverbRuntime) Reset()                        { r.fx.Reset() }

type delayRuntime struct {
	fx *effects.Delay
}

func (r *delayRuntime) Configure(ctx Context, p Params) error {
	err := r.fx.SetSampleRate(ctx.SampleRate)
	if err != nil {
		return fmt.Errorf("effectchain: configure delay sample rate: %w", err)
	}

	seconds := p.GetNum("timeMs", 250) / 1000
	if div := effects.SyncDivision(p.GetEnum("sync", 0)); div != effects.SyncOff {
		seconds = effects.SyncedTime(div, ctx.Tempo, ctx.BeatsPerBar)
	}

	err = r.fx.SetTime(seconds)
	if err != nil {
		return fmt.Errorf("effectchain: configure delay time: %w", err)
	}

	err = r.fx.SetFeedback(p.GetNum("feedback", 0.35))
	if err != nil {
		return fmt.Errorf("effectchain: configure delay feedback: %w", err)
	}

	return nil
}

func (r *delayRuntime) Process(left, right []float64) { r.fx.Process(left, right) }
func (r *delayRuntime) Reset()                        { r.fx.Reset() }
