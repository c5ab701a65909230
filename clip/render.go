package clip

import (
	"math"

	"github.com/cwbudde/algo-daw/dsp/core"
	"github.com/cwbudde/algo-daw/dsp/interp"
)

// FrameRange returns the half-open absolute frame range [start, end) the
// clip covers at sampleRate.
func (c Clip) FrameRange(sampleRate float64) (start, end int64) {
	return core.SecondsToFrames(c.Start, sampleRate), core.SecondsToFrames(c.End(), sampleRate)
}

// Render adds the clip's contribution to the stereo window that starts at
// absolute frame frame0. inst is used by NoteSequence sources and ignored
// for audio. Frames outside the clip are left untouched.
func (c Clip) Render(left, right []float64, frame0 int64, sampleRate float64, inst Instrument) {
	n := int64(min(len(left), len(right)))
	clipStart, clipEnd := c.FrameRange(sampleRate)

	from := max(clipStart-frame0, 0)
	to := min(clipEnd-frame0, n)
	if from >= to {
		return
	}

	fadeIn, fadeOut := c.Fades()
	env := envelope{
		gain:     c.Gain,
		in:       fadeIn,
		out:      fadeOut,
		duration: c.Duration,
		flat:     fadeIn.Duration == 0 && fadeOut.Duration == 0,
	}

	switch src := c.Source.(type) {
	case *AudioSource:
		c.renderAudio(src, left, right, frame0, clipStart, from, to, sampleRate, env)
	case *NoteSequence:
		c.renderNotes(src, left, right, frame0, clipStart, from, to, sampleRate, inst, env)
	}
}

type envelope struct {
	gain     float64
	in, out  Fade
	duration float64
	flat     bool
}

// at returns the clip gain at local time t seconds after the clip start.
func (e envelope) at(t float64) float64 {
	if e.flat {
		return e.gain
	}

	g := e.gain
	if e.in.Duration > 0 && t < e.in.Duration {
		g *= e.in.Shape.Gain(t / e.in.Duration)
	}

	if e.out.Duration > 0 {
		if rem := e.duration - t; rem < e.out.Duration {
			g *= e.out.Shape.Gain(rem / e.out.Duration)
		}
	}

	return g
}

func (c Clip) renderAudio(
	src *AudioSource,
	left, right []float64,
	frame0, clipStart, from, to int64,
	sampleRate float64,
	env envelope,
) {
	srcL, srcR := src.Stereo()
	ratio := c.Rate * src.SampleRate() / sampleRate
	base := c.Offset * src.SampleRate()

	// Integer-aligned unity playback reads samples verbatim; offsets within
	// 1e-6 frames of an integer count as aligned.
	if kb := math.Round(base); ratio == 1 && math.Abs(base-kb) < 1e-6 {
		k0 := int64(kb) + (frame0 + from - clipStart)
		for i := from; i < to; i++ {
			k := k0 + (i - from)
			if k < 0 || k >= int64(len(srcL)) {
				continue
			}

			g := env.at(float64(frame0+i-clipStart) / sampleRate)
			if g == 1 {
				left[i] += srcL[k]
				right[i] += srcR[k]
			} else {
				left[i] += g * srcL[k]
				right[i] += g * srcR[k]
			}
		}

		return
	}

	for i := from; i < to; i++ {
		local := frame0 + i - clipStart
		pos := base + float64(local)*ratio
		g := env.at(float64(local) / sampleRate)
		if g == 0 {
			continue
		}

		left[i] += g * interp.HermiteAt(srcL, pos)
		right[i] += g * interp.HermiteAt(srcR, pos)
	}
}

func (c Clip) renderNotes(
	seq *NoteSequence,
	left, right []float64,
	frame0, clipStart, from, to int64,
	sampleRate float64,
	inst Instrument,
	env envelope,
) {
	// Source-time span of the window, to skip notes that cannot sound.
	winStart := c.Offset + float64(frame0+from-clipStart)/sampleRate*c.Rate
	winEnd := c.Offset + float64(frame0+to-clipStart)/sampleRate*c.Rate

	active := make([]Note, 0, len(seq.notes))
	for _, n := range seq.notes {
		if n.Start >= seq.length || n.Start > winEnd || n.Start+inst.voiceLength(n) < winStart {
			continue
		}
		active = append(active, n)
	}

	if len(active) == 0 {
		return
	}

	for i := from; i < to; i++ {
		local := float64(frame0+i-clipStart) / sampleRate
		t := c.Offset + local*c.Rate
		if t >= seq.length {
			continue
		}

		var sum float64
		for _, n := range active {
			sum += inst.noteSample(n, t)
		}

		v := env.at(local) * sum
		left[i] += v
		right[i] += v
	}
}
