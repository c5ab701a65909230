package effects

import (
	"math"

	"github.com/cwbudde/algo-daw/dsp/delay"
)

const (
	reverbNumCombs     = 8
	reverbNumAllpasses = 4
	reverbStereoSpread = 23
	reverbTuningRate   = 44100.0

	reverbInputGain  = 0.015
	reverbOutputGain = 3.0

	defaultReverbDecaySeconds = 1.8
	defaultReverbDamp         = 0.5
	defaultReverbPreDelay     = 0.02

	minReverbDecaySeconds = 0.1
	maxReverbDecaySeconds = 20.0
	maxReverbPreDelay     = 0.25
)

// Comb and allpass lengths in samples at 44.1 kHz.
var (
	reverbCombTuning    = [reverbNumCombs]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}
	reverbAllpassTuning = [reverbNumAllpasses]int{556, 441, 341, 225}
)

// Reverb is a stereo Schroeder/Freeverb-style reverb with pre-delay and a
// decay time expressed as RT60. Comb feedback is derived per comb so every
// comb decays by 60 dB in the requested time. It outputs the reverberant
// signal only.
type Reverb struct {
	sampleRate   float64
	decaySeconds float64
	damp         float64
	preDelay     float64

	preDelaySamples int
	pre             [2]*delay.Line
	combs           [2][reverbNumCombs]reverbComb
	allpass         [2][reverbNumAllpasses]reverbAllpass
}

type reverbAllpass struct {
	buffer []float64
	index  int
}

func (a *reverbAllpass) process(input float64) float64 {
	bufOut := a.buffer[a.index]
	a.buffer[a.index] = input + bufOut*0.5
	a.index++
	if a.index == len(a.buffer) {
		a.index = 0
	}

	return bufOut - input
}

type reverbComb struct {
	feedback    float64
	filterStore float64
	dampA       float64
	dampB       float64
	buffer      []float64
	index       int
}

func (c *reverbComb) process(input float64) float64 {
	output := c.buffer[c.index]
	c.filterStore = output*c.dampB + c.filterStore*c.dampA
	if math.Abs(c.filterStore) < 1e-23 {
		c.filterStore = 0
	}
	c.buffer[c.index] = input + c.filterStore*c.feedback
	c.index++
	if c.index == len(c.buffer) {
		c.index = 0
	}

	return output
}

// NewReverb returns a reverb with a 1.8 s decay, 20 ms pre-delay and
// medium damping.
func NewReverb(sampleRate float64) (*Reverb, error) {
	if err := checkSampleRate(sampleRate); err != nil {
		return nil, err
	}

	r := &Reverb{
		sampleRate:   sampleRate,
		decaySeconds: defaultReverbDecaySeconds,
		damp:         defaultReverbDamp,
		preDelay:     defaultReverbPreDelay,
	}

	scale := sampleRate / reverbTuningRate
	for ch := 0; ch < 2; ch++ {
		spread := ch * reverbStereoSpread
		for i, n := range reverbCombTuning {
			r.combs[ch][i].buffer = make([]float64, max(int(float64(n+spread)*scale), 1))
		}
		for i, n := range reverbAllpassTuning {
			r.allpass[ch][i].buffer = make([]float64, max(int(float64(n+spread)*scale), 1))
		}

		line, err := delay.New(int(math.Ceil(maxReverbPreDelay*sampleRate)) + 1)
		if err != nil {
			return nil, err
		}
		r.pre[ch] = line
	}

	r.updateCombs()
	r.updatePreDelay()

	return r, nil
}

// SetDecay sets the RT60 decay time in seconds.
func (r *Reverb) SetDecay(seconds float64) error {
	if err := checkRange("reverb decay", seconds, minReverbDecaySeconds, maxReverbDecaySeconds); err != nil {
		return err
	}
	r.decaySeconds = seconds
	r.updateCombs()

	return nil
}

// SetDamp sets high-frequency damping in [0, 1].
func (r *Reverb) SetDamp(v float64) error {
	if err := checkRange("reverb damping", v, 0, 1); err != nil {
		return err
	}
	r.damp = v
	r.updateCombs()

	return nil
}

// SetPreDelay sets the pre-delay in seconds, within [0, 0.25].
func (r *Reverb) SetPreDelay(seconds float64) error {
	if err := checkRange("reverb pre-delay", seconds, 0, maxReverbPreDelay); err != nil {
		return err
	}
	r.preDelay = seconds
	r.updatePreDelay()

	return nil
}

// Decay returns the RT60 in seconds.
func (r *Reverb) Decay() float64 { return r.decaySeconds }

// Damp returns the damping amount.
func (r *Reverb) Damp() float64 { return r.damp }

// PreDelay returns the pre-delay in seconds.
func (r *Reverb) PreDelay() float64 { return r.preDelay }

// SampleRate returns the rate the comb network was sized for.
func (r *Reverb) SampleRate() float64 { return r.sampleRate }

// Process replaces a stereo block with its reverberant signal.
func (r *Reverb) Process(left, right []float64) {
	for i := range left {
		// Freeverb feeds the mono sum into both channel networks.
		in := (left[i] + right[i]) * reverbInputGain
		left[i] = r.processChannel(0, in) * reverbOutputGain
		right[i] = r.processChannel(1, in) * reverbOutputGain
	}
}

func (r *Reverb) processChannel(ch int, in float64) float64 {
	if r.preDelaySamples > 0 {
		in = r.pre[ch].Tick(in, r.preDelaySamples)
	}

	var acc float64
	for i := range r.combs[ch] {
		acc += r.combs[ch][i].process(in)
	}
	for i := range r.allpass[ch] {
		acc = r.allpass[ch][i].process(acc)
	}

	return acc
}

// Reset clears all delay and filter state.
func (r *Reverb) Reset() {
	for ch := 0; ch < 2; ch++ {
		r.pre[ch].Reset()
		for i := range r.combs[ch] {
			c := &r.combs[ch][i]
			clear(c.buffer)
			c.index = 0
			c.filterStore = 0
		}
		for i := range r.allpass[ch] {
			a := &r.allpass[ch][i]
			clear(a.buffer)
			a.index = 0
		}
	}
}

func (r *Reverb) updateCombs() {
	for ch := 0; ch < 2; ch++ {
		for i := range r.combs[ch] {
			c := &r.combs[ch][i]
			loopSeconds := float64(len(c.buffer)) / r.sampleRate
			c.feedback = math.Pow(10, -3*loopSeconds/r.decaySeconds)
			c.dampA = r.damp * 0.4
			c.dampB = 1 - c.dampA
		}
	}
}

func (r *Reverb) updatePreDelay() {
	r.preDelaySamples = int(math.Round(r.preDelay * r.sampleRate))
}
