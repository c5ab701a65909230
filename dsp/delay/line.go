package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-daw/dsp/interp"
)

// Line is a circular delay line. Reads address the history relative to the
// next write: Read(1) is the most recently written sample.
type Line struct {
	buffer   []float64
	writePos int
}

// New returns a delay line holding size samples of history.
func New(size int) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay: size must be > 0: %d", size)
	}

	return &Line{buffer: make([]float64, size)}, nil
}

// Len returns the capacity in samples.
func (d *Line) Len() int {
	return len(d.buffer)
}

// Write appends one sample.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos == len(d.buffer) {
		d.writePos = 0
	}
}

// Read returns the sample written delay writes ago, 1 <= delay <= Len.
func (d *Line) Read(delay int) float64 {
	size := len(d.buffer)
	delay = min(max(delay, 1), size)

	pos := d.writePos - delay
	if pos < 0 {
		pos += size
	}

	return d.buffer[pos]
}

// ReadFractional reads a fractional delay with cubic Hermite interpolation.
func (d *Line) ReadFractional(delay float64) float64 {
	maxDelay := float64(len(d.buffer) - 2)
	delay = math.Min(math.Max(delay, 1), maxDelay)

	p := int(delay)
	t := delay - float64(p)
	if t == 0 {
		return d.Read(p)
	}

	return interp.Hermite4(t, d.Read(max(p-1, 1)), d.Read(p), d.Read(p+1), d.Read(p+2))
}

// Tick reads the sample delay writes ago and then writes x.
func (d *Line) Tick(x float64, delay int) float64 {
	y := d.Read(delay)
	d.Write(x)

	return y
}

// Reset clears the history.
func (d *Line) Reset() {
	clear(d.buffer)
	d.writePos = 0
}
