// Package daw is the root of the algo-daw audio signal-graph engine.
//
// The engine models tracks, clips and effect chains and mixes them into a
// stereo master output. Rendering runs either live, driven block by block by
// an audio driver, or offline as a deterministic batch that shares the data
// model but never the live execution context.
//
// Package layout:
//
//   - dsp/...        processing kernels (buffers, biquads, dynamics, delay, reverb)
//   - dsp/effectchain  effect registry, typed parameter schemas, per-track chains
//   - measure/meter  peak-hold and RMS metering
//   - clip, track    timeline data model
//   - mixer          render graph shared by live and offline rendering
//   - engine         transport, recording, offline rendering, events
//   - project        persisted project shape
//   - export         WAV encoding and output sinks
//
// This package only declares the error kinds shared by all of the above.
package daw
