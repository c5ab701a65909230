// Package live provides the real-time execution contexts that drive the
// engine's block callback.
//
// A Driver calls the callback from its own goroutine, one fixed-size stereo
// block at a time. The callback must not block: it renders whatever the
// engine state is at the start of the block.
package live

import (
	"fmt"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/dsp/core"
)

// Format is the stream format a driver runs at.
type Format struct {
	SampleRate float64
	BlockSize  int
}

// Validate checks the format against the supported limits.
func (f Format) Validate() error {
	cfg := core.ProcessorConfig{SampleRate: f.SampleRate, BlockSize: f.BlockSize}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("live: %w: %w", err, daw.ErrIntegrationFailure)
	}

	return nil
}

// Callback renders one stereo block in place. Both slices have BlockSize
// frames and arrive zeroed.
type Callback func(left, right []float64)

// Driver runs a callback at the audio quantum until stopped.
type Driver interface {
	Start(f Format, cb Callback) error
	Stop() error
}

// Input supplies captured audio for recording. Read fills both slices
// completely; missing input is silence.
type Input interface {
	Read(left, right []float64)
}

// Sink receives interleaved stereo float32 blocks. WriteAudio may block to
// pace the caller.
type Sink interface {
	WriteAudio(buffer []float32) error
	Close() error
}
