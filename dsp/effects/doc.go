// Package effects provides the stereo processors behind the built-in track
// effects and the master bus: equalizer, compressor, brick-wall limiter,
// feedback delay and algorithmic reverb.
//
// Every processor works on a left/right pair of equally long blocks in
// place, is single-threaded, and validates parameter setters with errors
// that wrap daw.ErrInvalidParameter. Parameter changes keep internal state
// so that reconfiguring between blocks does not click.
package effects
