package meter

import (
	"math"
	"sync/atomic"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-daw/dsp/core"
)

// Reading is a published meter snapshot. Levels are in dBFS; silence is -Inf.
type Reading struct {
	PeakDB  []float64
	HeldDB  []float64
	RMSDB   []float64
	Clipped bool
	Frame   int64
}

// Meter measures decaying peak-hold and sliding-window RMS levels on the
// render thread and publishes Readings for control-rate readers.
//
// Process must be called from a single goroutine; Latest is safe from any.
type Meter struct {
	cfg Config

	held         []float64 // linear held peak
	holdLeft     []int     // frames left before the held peak falls
	fallPerFrame float64   // linear multiplier per frame once falling

	blockPeak []float64

	window   [][]float64 // squared samples
	writeIdx int
	sums     []float64

	clipped       bool
	frames        int64
	sincePublish  int
	publishFrames int

	latest atomic.Pointer[Reading]
}

// New creates a meter.
func New(opts ...Option) *Meter {
	cfg := ApplyOptions(opts...)

	m := &Meter{cfg: cfg}
	windowFrames := max(int(math.Round(cfg.RMSWindow*cfg.SampleRate)), 1)

	m.held = make([]float64, cfg.Channels)
	m.holdLeft = make([]int, cfg.Channels)
	m.blockPeak = make([]float64, cfg.Channels)
	m.sums = make([]float64, cfg.Channels)
	m.window = make([][]float64, cfg.Channels)
	for ch := range m.window {
		m.window[ch] = make([]float64, windowFrames)
	}

	m.fallPerFrame = math.Pow(10, -cfg.PeakDecay/20/cfg.SampleRate)
	m.publishFrames = max(int(math.Round(cfg.PublishInterval*cfg.SampleRate)), 1)
	m.publish()

	return m
}

// Config returns the meter configuration.
func (m *Meter) Config() Config { return m.cfg }

// Process meters one block. channels must match the configured count; extra
// channels are ignored.
func (m *Meter) Process(channels ...[]float64) {
	if len(channels) == 0 {
		return
	}

	n := len(channels[0])
	for ch := 0; ch < len(m.held) && ch < len(channels); ch++ {
		m.processChannel(ch, channels[ch])
	}

	m.writeIdx = (m.writeIdx + n) % len(m.window[0])
	m.frames += int64(n)
	m.sincePublish += n
	if m.sincePublish >= m.publishFrames {
		m.sincePublish = 0
		m.publish()
	}
}

func (m *Meter) processChannel(ch int, block []float64) {
	if len(block) == 0 {
		return
	}

	peak := vecmath.MaxAbs(block)
	if peak > m.blockPeak[ch] {
		m.blockPeak[ch] = peak
	}
	if peak >= 1 {
		m.clipped = true
	}

	holdFrames := int(m.cfg.PeakHold * m.cfg.SampleRate)
	if peak >= m.held[ch] {
		m.held[ch] = peak
		m.holdLeft[ch] = holdFrames
	} else {
		n := len(block)
		if m.holdLeft[ch] >= n {
			m.holdLeft[ch] -= n
		} else {
			falling := n - m.holdLeft[ch]
			m.holdLeft[ch] = 0
			m.held[ch] = math.Max(m.held[ch]*math.Pow(m.fallPerFrame, float64(falling)), peak)
			if m.held[ch] < 1e-12 {
				m.held[ch] = 0
			}
		}
	}

	w := m.window[ch]
	idx := m.writeIdx
	sum := m.sums[ch]
	for _, x := range block {
		sq := x * x
		sum += sq - w[idx]
		w[idx] = sq
		idx++
		if idx == len(w) {
			idx = 0
		}
	}
	if idx == 0 || sum < 0 {
		// Re-sum on wrap to stop running-sum drift.
		sum = vecmath.Sum(w)
	}
	m.sums[ch] = sum
}

// RMS returns the current RMS level of a channel as a linear amplitude.
func (m *Meter) RMS(ch int) float64 {
	return math.Sqrt(math.Max(m.sums[ch], 0) / float64(len(m.window[ch])))
}

// Held returns the held peak of a channel as a linear amplitude.
func (m *Meter) Held(ch int) float64 {
	return m.held[ch]
}

// Latest returns the most recently published reading.
func (m *Meter) Latest() Reading {
	return *m.latest.Load()
}

// Reset clears all ballistics and publishes a silent reading.
func (m *Meter) Reset() {
	for ch := range m.held {
		m.held[ch] = 0
		m.holdLeft[ch] = 0
		m.blockPeak[ch] = 0
		m.sums[ch] = 0
		clear(m.window[ch])
	}
	m.writeIdx = 0
	m.clipped = false
	m.frames = 0
	m.sincePublish = 0
	m.publish()
}

func (m *Meter) publish() {
	r := &Reading{
		PeakDB:  make([]float64, len(m.held)),
		HeldDB:  make([]float64, len(m.held)),
		RMSDB:   make([]float64, len(m.held)),
		Clipped: m.clipped,
		Frame:   m.frames,
	}
	for ch := range m.held {
		r.PeakDB[ch] = core.LinearToDB(m.blockPeak[ch])
		r.HeldDB[ch] = core.LinearToDB(m.held[ch])
		r.RMSDB[ch] = core.LinearToDB(m.RMS(ch))
		m.blockPeak[ch] = 0
	}
	m.latest.Store(r)
}
