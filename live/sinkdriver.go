package live

import (
	"fmt"
	"sync"
	"time"

	daw "github.com/cwbudde/algo-daw"
)

// SinkDriver renders blocks on its own goroutine and writes them to a Sink
// as interleaved float32. A blocking sink paces the loop; otherwise set
// Pace to sleep one block period between writes.
type SinkDriver struct {
	sink Sink
	pace bool

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
	err  error
}

// SinkOption configures a SinkDriver.
type SinkOption func(*SinkDriver)

// WithPacing makes the driver sleep for one block period per block.
func WithPacing() SinkOption {
	return func(d *SinkDriver) { d.pace = true }
}

// NewSinkDriver returns a driver writing to sink.
func NewSinkDriver(sink Sink, opts ...SinkOption) *SinkDriver {
	d := &SinkDriver{sink: sink}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Start implements Driver.
func (d *SinkDriver) Start(f Format, cb Callback) error {
	if err := f.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stop != nil {
		return fmt.Errorf("live: sink driver already running: %w", daw.ErrInvalidState)
	}

	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	d.err = nil

	go d.loop(f, cb, d.stop, d.done)

	return nil
}

func (d *SinkDriver) loop(f Format, cb Callback, stop, done chan struct{}) {
	defer close(done)

	left := make([]float64, f.BlockSize)
	right := make([]float64, f.BlockSize)
	out := make([]float32, 2*f.BlockSize)
	period := time.Duration(float64(f.BlockSize) / f.SampleRate * float64(time.Second))

	var ticker *time.Ticker
	if d.pace {
		ticker = time.NewTicker(period)
		defer ticker.Stop()
	}

	for {
		select {
		case <-stop:
			return
		default:
		}

		clear(left)
		clear(right)
		cb(left, right)

		for i := range left {
			out[2*i] = float32(left[i])
			out[2*i+1] = float32(right[i])
		}

		if err := d.sink.WriteAudio(out); err != nil {
			d.mu.Lock()
			d.err = fmt.Errorf("live: sink write: %w: %w", err, daw.ErrIntegrationFailure)
			d.mu.Unlock()

			return
		}

		if ticker != nil {
			select {
			case <-ticker.C:
			case <-stop:
				return
			}
		}
	}
}

// Stop implements Driver. It waits for the render goroutine to exit and
// returns the first sink error, if any.
func (d *SinkDriver) Stop() error {
	d.mu.Lock()
	stop, done := d.stop, d.done
	d.stop, d.done = nil, nil
	d.mu.Unlock()

	if stop == nil {
		return fmt.Errorf("live: sink driver not running: %w", daw.ErrInvalidState)
	}

	close(stop)
	<-done

	d.mu.Lock()
	defer d.mu.Unlock()

	return d.err
}

// Err returns the sink error that ended the render loop, if any.
func (d *SinkDriver) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.err
}
