// Package otodriver plays the engine through the system audio device with
// oto.
//
// oto supports a single context per process, so a Driver owns its context
// for its whole life and creates a fresh player on every Start.
package otodriver

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/live"
)

// Driver is a live.Driver backed by an oto player.
type Driver struct {
	ctx        *oto.Context
	sampleRate float64

	mu     sync.Mutex
	player *oto.Player
	reader *blockReader
}

// Option configures New.
type Option func(*oto.NewContextOptions)

// WithBufferSize sets the device buffer duration.
func WithBufferSize(d time.Duration) Option {
	return func(o *oto.NewContextOptions) { o.BufferSize = d }
}

// New opens the audio device at sampleRate in stereo float32.
func New(sampleRate float64, opts ...Option) (*Driver, error) {
	o := &oto.NewContextOptions{
		SampleRate:   int(sampleRate),
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	}
	for _, opt := range opts {
		opt(o)
	}

	ctx, ready, err := oto.NewContext(o)
	if err != nil {
		return nil, fmt.Errorf("otodriver: cannot create oto context: %w: %w", err, daw.ErrIntegrationFailure)
	}
	<-ready

	return &Driver{ctx: ctx, sampleRate: float64(o.SampleRate)}, nil
}

// Start implements live.Driver.
func (d *Driver) Start(f live.Format, cb live.Callback) error {
	if err := f.Validate(); err != nil {
		return err
	}

	if f.SampleRate != d.sampleRate {
		return fmt.Errorf("otodriver: device runs at %g Hz, engine at %g Hz: %w",
			d.sampleRate, f.SampleRate, daw.ErrIntegrationFailure)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.player != nil {
		return fmt.Errorf("otodriver: already playing: %w", daw.ErrInvalidState)
	}

	d.reader = newBlockReader(f.BlockSize, cb)
	d.player = d.ctx.NewPlayer(d.reader)
	d.player.Play()

	return nil
}

// Stop implements live.Driver.
func (d *Driver) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.player == nil {
		return fmt.Errorf("otodriver: not playing: %w", daw.ErrInvalidState)
	}

	d.player.Pause()
	err := d.player.Close()
	d.player = nil
	d.reader = nil

	if err != nil {
		return fmt.Errorf("otodriver: cannot close oto player: %w", err)
	}

	return nil
}

// Err returns the device error, if any.
func (d *Driver) Err() error {
	return d.ctx.Err()
}

// blockReader adapts the block callback to the io.Reader oto pulls from.
type blockReader struct {
	cb          live.Callback
	left, right []float64
	encoded     []byte
	pending     []byte
}

func newBlockReader(blockSize int, cb live.Callback) *blockReader {
	return &blockReader{
		cb:      cb,
		left:    make([]float64, blockSize),
		right:   make([]float64, blockSize),
		encoded: make([]byte, 8*blockSize),
	}
}

// Read fills p with interleaved float32 little-endian frames, rendering
// new blocks as needed.
func (r *blockReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(r.pending) == 0 {
			r.render()
		}

		c := copy(p[n:], r.pending)
		r.pending = r.pending[c:]
		n += c
	}

	return n, nil
}

func (r *blockReader) render() {
	clear(r.left)
	clear(r.right)
	r.cb(r.left, r.right)

	for i := range r.left {
		binary.LittleEndian.PutUint32(r.encoded[8*i:], math.Float32bits(float32(r.left[i])))
		binary.LittleEndian.PutUint32(r.encoded[8*i+4:], math.Float32bits(float32(r.right[i])))
	}
	r.pending = r.encoded
}
