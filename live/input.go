package live

import (
	"sync"

	"github.com/cwbudde/algo-daw/dsp/buffer"
)

// SliceInput plays back a prepared buffer as live input, then silence.
type SliceInput struct {
	mu  sync.Mutex
	buf *buffer.Buffer
	pos int
}

// NewSliceInput wraps a mono or stereo buffer.
func NewSliceInput(buf *buffer.Buffer) *SliceInput {
	return &SliceInput{buf: buf}
}

// Read implements Input.
func (s *SliceInput) Read(left, right []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(left)
	clear(right)

	if s.buf == nil || s.buf.Channels() == 0 {
		return
	}

	srcL, srcR := s.buf.Stereo()
	n := copy(left, srcL[min(s.pos, len(srcL)):])
	copy(right, srcR[min(s.pos, len(srcR)):])
	s.pos += n
}

// Position returns the number of frames consumed.
func (s *SliceInput) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pos
}

// Rewind restarts playback from the first frame.
func (s *SliceInput) Rewind() {
	s.mu.Lock()
	s.pos = 0
	s.mu.Unlock()
}
