package live

import (
	"fmt"
	"sync"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/dsp/buffer"
)

// Manual is a Driver that renders only when asked. Tests use it to step the
// live path deterministically.
type Manual struct {
	mu      sync.Mutex
	format  Format
	cb      Callback
	running bool

	left, right []float64
	blocks      int64
}

// NewManual returns a stopped manual driver.
func NewManual() *Manual {
	return &Manual{}
}

// Start implements Driver.
func (m *Manual) Start(f Format, cb Callback) error {
	if err := f.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("live: manual driver already running: %w", daw.ErrInvalidState)
	}

	m.format = f
	m.cb = cb
	m.running = true
	m.left = make([]float64, f.BlockSize)
	m.right = make([]float64, f.BlockSize)

	return nil
}

// Stop implements Driver.
func (m *Manual) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return fmt.Errorf("live: manual driver not running: %w", daw.ErrInvalidState)
	}

	m.running = false
	m.cb = nil

	return nil
}

// Running reports whether the driver is started.
func (m *Manual) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.running
}

// Blocks returns the number of blocks rendered since creation.
func (m *Manual) Blocks() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.blocks
}

// Render runs the callback for n blocks and returns their concatenated
// output. Rendering stops early, returning what was rendered, if the driver
// is stopped from inside the callback.
func (m *Manual) Render(n int) (*buffer.Buffer, error) {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()

		return nil, fmt.Errorf("live: manual driver not running: %w", daw.ErrInvalidState)
	}
	bs := m.format.BlockSize
	m.mu.Unlock()

	out := buffer.New(2, n*bs)
	done := 0

	for ; done < n; done++ {
		m.mu.Lock()
		cb := m.cb
		l, r := m.left, m.right
		m.mu.Unlock()

		if cb == nil {
			break
		}

		clear(l)
		clear(r)
		cb(l, r)

		copy(out.Channel(0)[done*bs:], l)
		copy(out.Channel(1)[done*bs:], r)

		m.mu.Lock()
		m.blocks++
		m.mu.Unlock()
	}

	return out.Slice(0, done*bs), nil
}
