package effectchain

// Effect is the per-slot processing and configuration contract.
//
// Configure may be called repeatedly on the same instance and must keep the
// DSP state (delay lines, envelopes, filter memories) when only parameters
// change. Process works in place on one stereo block.
type Effect interface {
	Configure(ctx Context, params Params) error
	Process(left, right []float64)
	Reset()
}

// Factory builds one Effect instance for a slot.
type Factory func(ctx Context) (Effect, error)
