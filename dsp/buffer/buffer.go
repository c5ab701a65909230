package buffer

import vecmath "github.com/cwbudde/algo-vecmath"

// Buffer is a planar multi-channel block of float64 samples.
// Every channel has the same number of frames.
type Buffer struct {
	channels [][]float64
	frames   int

	// owner is the pool that handed the buffer out, nil for free-standing buffers.
	owner *Pool
	inUse bool
}

// New returns a zero-filled Buffer with the given shape.
func New(channels, frames int) *Buffer {
	if channels < 0 {
		channels = 0
	}
	if frames < 0 {
		frames = 0
	}

	backing := make([]float64, channels*frames)
	b := &Buffer{channels: make([][]float64, channels), frames: frames}
	for ch := range b.channels {
		b.channels[ch] = backing[ch*frames : (ch+1)*frames : (ch+1)*frames]
	}

	return b
}

// FromChannels wraps existing channel slices without copying. All slices
// are truncated to the length of the shortest one.
func FromChannels(channels ...[]float64) *Buffer {
	frames := -1
	for _, ch := range channels {
		if frames < 0 || len(ch) < frames {
			frames = len(ch)
		}
	}
	if frames < 0 {
		frames = 0
	}

	b := &Buffer{channels: make([][]float64, len(channels)), frames: frames}
	for i, ch := range channels {
		b.channels[i] = ch[:frames]
	}

	return b
}

// Channels returns the number of channels.
func (b *Buffer) Channels() int { return len(b.channels) }

// Frames returns the number of frames per channel.
func (b *Buffer) Frames() int { return b.frames }

// Len returns the total number of samples across all channels.
func (b *Buffer) Len() int { return len(b.channels) * b.frames }

// Channel returns the samples of channel ch.
func (b *Buffer) Channel(ch int) []float64 { return b.channels[ch] }

// Stereo returns the first two channels. A mono buffer returns its single
// channel twice.
func (b *Buffer) Stereo() (left, right []float64) {
	switch len(b.channels) {
	case 0:
		return nil, nil
	case 1:
		return b.channels[0], b.channels[0]
	default:
		return b.channels[0], b.channels[1]
	}
}

// Zero sets all samples to 0.
func (b *Buffer) Zero() {
	for _, ch := range b.channels {
		clear(ch)
	}
}

// ZeroRange sets frames in [start, end) to 0 on every channel.
// Indices are clamped to valid bounds.
func (b *Buffer) ZeroRange(start, end int) {
	if start < 0 {
		start = 0
	}
	if end > b.frames {
		end = b.frames
	}
	if start >= end {
		return
	}

	for _, ch := range b.channels {
		clear(ch[start:end])
	}
}

// Scale multiplies every sample by gain.
func (b *Buffer) Scale(gain float64) {
	if gain == 1 {
		return
	}

	for _, ch := range b.channels {
		vecmath.ScaleBlockInPlace(ch, gain)
	}
}

// AddFrom accumulates src into b, channel by channel, scaled by gain.
// Extra channels or frames on either side are ignored.
func (b *Buffer) AddFrom(src *Buffer, gain float64) {
	chans := min(len(b.channels), len(src.channels))
	n := min(b.frames, src.frames)
	for ch := 0; ch < chans; ch++ {
		dst := b.channels[ch][:n]
		s := src.channels[ch][:n]
		if gain == 1 {
			vecmath.AddBlockInPlace(dst, s)
			continue
		}
		for i, x := range s {
			dst[i] += x * gain
		}
	}
}

// CopyFrom overwrites b with the contents of src.
func (b *Buffer) CopyFrom(src *Buffer) {
	chans := min(len(b.channels), len(src.channels))
	for ch := 0; ch < chans; ch++ {
		copy(b.channels[ch], src.channels[ch])
	}
}

// Peak returns the largest absolute sample value across all channels.
func (b *Buffer) Peak() float64 {
	peak := 0.0
	for _, ch := range b.channels {
		if len(ch) == 0 {
			continue
		}
		if p := vecmath.MaxAbs(ch); p > peak {
			peak = p
		}
	}

	return peak
}

// Slice returns a view of frames [start, end) sharing storage with b.
func (b *Buffer) Slice(start, end int) *Buffer {
	if start < 0 {
		start = 0
	}
	if end > b.frames {
		end = b.frames
	}
	if end < start {
		end = start
	}

	v := &Buffer{channels: make([][]float64, len(b.channels)), frames: end - start}
	for i, ch := range b.channels {
		v.channels[i] = ch[start:end]
	}

	return v
}

// Copy returns a deep copy of the buffer that does not belong to any pool.
func (b *Buffer) Copy() *Buffer {
	c := New(len(b.channels), b.frames)
	c.CopyFrom(b)

	return c
}

// Interleaved writes the buffer as interleaved float32 frames into dst and
// returns the number of samples written.
func (b *Buffer) Interleaved(dst []float32) int {
	chans := len(b.channels)
	if chans == 0 {
		return 0
	}

	frames := min(b.frames, len(dst)/chans)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < chans; ch++ {
			dst[i*chans+ch] = float32(b.channels[ch][i])
		}
	}

	return frames * chans
}
