package buffer

import (
	"fmt"
	"sync"

	daw "github.com/cwbudde/algo-daw"
)

// DefaultCeiling is the default cap on samples owned by a Pool
// (64 Mi samples, 512 MiB of float64).
const DefaultCeiling = 64 << 20

type shape struct {
	channels, frames int
}

// PoolStats reports pool occupancy.
type PoolStats struct {
	Free      int
	InUse     int
	Allocated int // samples owned by the pool
	Ceiling   int // 0 when unbounded
}

// Pool recycles Buffers keyed by shape (channels x frames).
//
// A checked-out buffer is never handed out again until it is released.
// Released buffers are not cleared, so callers must not assume zeroed
// contents after Acquire. Pool is safe for concurrent use.
type Pool struct {
	mu        sync.Mutex
	free      map[shape][]*Buffer
	inUse     int
	allocated int
	ceiling   int
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithCeiling caps the total number of samples the pool may allocate.
func WithCeiling(samples int) PoolOption {
	return func(p *Pool) {
		if samples > 0 {
			p.ceiling = samples
		}
	}
}

// Unbounded removes the allocation ceiling.
func Unbounded() PoolOption {
	return func(p *Pool) { p.ceiling = 0 }
}

// NewPool returns a Pool ready for use.
func NewPool(opts ...PoolOption) *Pool {
	p := &Pool{
		free:    make(map[shape][]*Buffer),
		ceiling: DefaultCeiling,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	return p
}

// Acquire returns a buffer of the requested shape, reusing a released one
// when available. Contents are unspecified.
func (p *Pool) Acquire(channels, frames int) (*Buffer, error) {
	if channels <= 0 || frames <= 0 {
		return nil, fmt.Errorf("buffer: acquire %dx%d: %w", channels, frames, daw.ErrInvalidParameter)
	}

	key := shape{channels: channels, frames: frames}

	p.mu.Lock()
	defer p.mu.Unlock()

	if list := p.free[key]; len(list) > 0 {
		b := list[len(list)-1]
		list[len(list)-1] = nil
		p.free[key] = list[:len(list)-1]
		b.inUse = true
		p.inUse++

		return b, nil
	}

	size := channels * frames
	if p.ceiling > 0 && p.allocated+size > p.ceiling {
		return nil, fmt.Errorf("buffer: acquire %dx%d (%d of %d samples allocated): %w",
			channels, frames, p.allocated, p.ceiling, daw.ErrResourceExhausted)
	}

	b := New(channels, frames)
	b.owner = p
	b.inUse = true
	p.allocated += size
	p.inUse++

	return b, nil
}

// Release returns b to the pool. Releasing a buffer twice, or one the pool
// did not hand out, fails with ErrInvalidState.
func (p *Pool) Release(b *Buffer) error {
	if b == nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if b.owner != p {
		return fmt.Errorf("buffer: release foreign buffer: %w", daw.ErrInvalidState)
	}
	if !b.inUse {
		return fmt.Errorf("buffer: double release: %w", daw.ErrInvalidState)
	}

	b.inUse = false
	p.inUse--
	key := shape{channels: len(b.channels), frames: b.frames}
	p.free[key] = append(p.free[key], b)

	return nil
}

// Stats returns a snapshot of pool occupancy.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	free := 0
	for _, list := range p.free {
		free += len(list)
	}

	return PoolStats{Free: free, InUse: p.inUse, Allocated: p.allocated, Ceiling: p.ceiling}
}

// FreeCount returns the number of released buffers of the given shape.
func (p *Pool) FreeCount(channels, frames int) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.free[shape{channels: channels, frames: frames}])
}
