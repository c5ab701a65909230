// Package stats measures whole signals: level, crest factor, DC offset and
// clipping per channel, plus a frequency-weighted RMS. It backs the report
// printed after an offline render.
package stats

import (
	"fmt"
	"math"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/dsp/buffer"
	"github.com/cwbudde/algo-daw/dsp/filter/biquad"
	"github.com/cwbudde/algo-daw/dsp/filter/weighting"
)

// ClipLevel is the magnitude at or above which a sample counts as clipped.
const ClipLevel = 1.0

// Channel holds the statistics of one channel.
type Channel struct {
	Frames  int
	DC      float64 // mean
	RMS     float64
	Peak    float64 // max |x|
	PeakPos int
	Clipped int // samples at or above ClipLevel
	// ZeroCrossings counts sign changes between consecutive samples.
	ZeroCrossings int
}

// PeakDB returns the peak level in dBFS; silence is -Inf.
func (c Channel) PeakDB() float64 { return ampToDB(c.Peak) }

// RMSDB returns the RMS level in dBFS; silence is -Inf.
func (c Channel) RMSDB() float64 { return ampToDB(c.RMS) }

// CrestDB returns the peak to RMS ratio in dB, or 0 for silence.
func (c Channel) CrestDB() float64 {
	if c.RMS == 0 {
		return 0
	}

	return ampToDB(c.Peak / c.RMS)
}

func ampToDB(v float64) float64 {
	if v == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(math.Abs(v))
}

// Accumulator gathers channel statistics block by block, so a long render
// can be measured while it is produced.
type Accumulator struct {
	n             int
	sum           float64
	sumSq         float64
	peak          float64
	peakPos       int
	clipped       int
	zeroCrossings int
	last          float64
}

// Update adds a block of samples.
func (a *Accumulator) Update(samples []float64) {
	for _, x := range samples {
		a.sum += x
		a.sumSq += x * x

		if m := math.Abs(x); m > a.peak {
			a.peak = m
			a.peakPos = a.n
		}
		if math.Abs(x) >= ClipLevel {
			a.clipped++
		}
		if a.n > 0 && a.last*x < 0 {
			a.zeroCrossings++
		}

		a.last = x
		a.n++
	}
}

// Result returns the statistics so far.
func (a *Accumulator) Result() Channel {
	if a.n == 0 {
		return Channel{}
	}

	n := float64(a.n)

	return Channel{
		Frames:        a.n,
		DC:            a.sum / n,
		RMS:           math.Sqrt(a.sumSq / n),
		Peak:          a.peak,
		PeakPos:       a.peakPos,
		Clipped:       a.clipped,
		ZeroCrossings: a.zeroCrossings,
	}
}

// Reset clears the accumulator for reuse.
func (a *Accumulator) Reset() {
	*a = Accumulator{}
}

// Calculate returns the statistics of one channel.
func Calculate(samples []float64) Channel {
	var a Accumulator
	a.Update(samples)

	return a.Result()
}

// Report summarizes a multichannel signal.
type Report struct {
	SampleRate float64
	Channels   []Channel
	// Weighting is the curve applied for WeightedRMSDB.
	Weighting weighting.Type
	// WeightedRMSDB is the frequency-weighted RMS over all channels, in dB.
	WeightedRMSDB float64
}

// Seconds returns the measured duration.
func (r Report) Seconds() float64 {
	if len(r.Channels) == 0 || r.SampleRate == 0 {
		return 0
	}

	return float64(r.Channels[0].Frames) / r.SampleRate
}

// PeakDB returns the highest channel peak in dBFS.
func (r Report) PeakDB() float64 {
	peak := 0.0
	for _, c := range r.Channels {
		peak = math.Max(peak, c.Peak)
	}

	return ampToDB(peak)
}

// Clipped returns the clipped sample count over all channels.
func (r Report) Clipped() int {
	n := 0
	for _, c := range r.Channels {
		n += c.Clipped
	}

	return n
}

// Analyze measures buf. The weighted RMS is the power mean of every channel
// after filtering it with curve w.
func Analyze(buf *buffer.Buffer, sampleRate float64, w weighting.Type) (Report, error) {
	if buf == nil || buf.Channels() == 0 || buf.Frames() == 0 {
		return Report{}, fmt.Errorf("stats: empty signal: %w", daw.ErrInvalidParameter)
	}

	chain, err := weighting.New(w, sampleRate, buf.Channels())
	if err != nil {
		return Report{}, err
	}

	r := Report{
		SampleRate: sampleRate,
		Channels:   make([]Channel, buf.Channels()),
		Weighting:  w,
	}

	var power float64
	scratch := make([]float64, buf.Frames())
	for ch := range r.Channels {
		samples := buf.Channel(ch)
		r.Channels[ch] = Calculate(samples)

		copy(scratch, samples)
		power += weightedPower(chain, ch, scratch)
	}

	r.WeightedRMSDB = ampToDB(math.Sqrt(power / float64(buf.Channels())))

	return r, nil
}

func weightedPower(chain *biquad.Chain, ch int, samples []float64) float64 {
	chain.ProcessBlock(ch, samples)

	var sumSq float64
	for _, x := range samples {
		sumSq += x * x
	}

	return sumSq / float64(len(samples))
}
