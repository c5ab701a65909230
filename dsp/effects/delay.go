package effects

import (
	"math"

	"github.com/cwbudde/algo-daw/dsp/delay"
)

const (
	defaultDelayTimeSeconds = 0.25
	defaultDelayFeedback    = 0.35
	maxDelayTimeSeconds     = 2.0
	minDelayTimeSeconds     = 0.001
	maxDelayFeedback        = 0.95
)

// SyncDivision is a tempo-relative delay time.
type SyncDivision int

// Sync divisions. SyncOff uses the free-running time in seconds.
const (
	SyncOff SyncDivision = iota
	SyncQuarter
	SyncEighth
	SyncDottedEighth
	SyncSixteenth
	SyncHalf
	SyncBar
)

// SyncDivisionNames lists the divisions in enum order.
var SyncDivisionNames = []string{"off", "1/4", "1/8", "1/8d", "1/16", "1/2", "1bar"}

// Beats returns the length of the division in beats, or 0 for SyncOff.
func (d SyncDivision) Beats(beatsPerBar int) float64 {
	switch d {
	case SyncQuarter:
		return 1
	case SyncEighth:
		return 0.5
	case SyncDottedEighth:
		return 0.75
	case SyncSixteenth:
		return 0.25
	case SyncHalf:
		return 2
	case SyncBar:
		return float64(max(beatsPerBar, 1))
	default:
		return 0
	}
}

// SyncedTime resolves a division to seconds at the given tempo. The result
// is clamped to the delay's supported range.
func SyncedTime(d SyncDivision, tempoBPM float64, beatsPerBar int) float64 {
	if d == SyncOff || tempoBPM <= 0 {
		return defaultDelayTimeSeconds
	}

	seconds := d.Beats(beatsPerBar) * 60 / tempoBPM

	return math.Min(math.Max(seconds, minDelayTimeSeconds), maxDelayTimeSeconds)
}

// Delay is a stereo feedback delay. It outputs the delayed signal only; the
// dry/wet balance is applied by the caller.
type Delay struct {
	sampleRate   float64
	delaySeconds float64
	feedback     float64

	delaySamples int
	lines        [2]*delay.Line
}

// NewDelay creates a 250 ms delay with 0.35 feedback.
func NewDelay(sampleRate float64) (*Delay, error) {
	d := &Delay{
		delaySeconds: defaultDelayTimeSeconds,
		feedback:     defaultDelayFeedback,
	}
	if err := d.SetSampleRate(sampleRate); err != nil {
		return nil, err
	}

	return d, nil
}

// SetSampleRate reallocates the delay lines for a new sample rate.
func (d *Delay) SetSampleRate(sampleRate float64) error {
	if err := checkSampleRate(sampleRate); err != nil {
		return err
	}
	if sampleRate == d.sampleRate {
		return nil
	}

	d.sampleRate = sampleRate
	size := int(math.Ceil(maxDelayTimeSeconds*sampleRate)) + 1
	for ch := range d.lines {
		line, err := delay.New(size)
		if err != nil {
			return err
		}
		d.lines[ch] = line
	}
	d.updateDelay()

	return nil
}

// SetTime sets the delay time in seconds.
func (d *Delay) SetTime(seconds float64) error {
	if err := checkRange("delay time", seconds, minDelayTimeSeconds, maxDelayTimeSeconds); err != nil {
		return err
	}
	d.delaySeconds = seconds
	d.updateDelay()

	return nil
}

// SetFeedback sets the feedback amount in [0, 0.95].
func (d *Delay) SetFeedback(feedback float64) error {
	if err := checkRange("delay feedback", feedback, 0, maxDelayFeedback); err != nil {
		return err
	}
	d.feedback = feedback

	return nil
}

// Time returns the delay time in seconds.
func (d *Delay) Time() float64 { return d.delaySeconds }

// DelaySamples returns the delay time in samples.
func (d *Delay) DelaySamples() int { return d.delaySamples }

// Feedback returns the feedback amount.
func (d *Delay) Feedback() float64 { return d.feedback }

// Process replaces a stereo block with its delayed signal.
func (d *Delay) Process(left, right []float64) {
	d.processChannel(d.lines[0], left)
	d.processChannel(d.lines[1], right)
}

func (d *Delay) processChannel(line *delay.Line, buf []float64) {
	n := d.delaySamples
	fb := d.feedback
	for i, x := range buf {
		delayed := line.Read(n)
		line.Write(x + delayed*fb)
		buf[i] = delayed
	}
}

// Reset clears the delay lines.
func (d *Delay) Reset() {
	for _, line := range d.lines {
		line.Reset()
	}
}

func (d *Delay) updateDelay() {
	d.delaySamples = max(int(math.Round(d.delaySeconds*d.sampleRate)), 1)
}
