// Package buffer provides the planar multi-channel sample buffer used across
// the render graph and a shape-keyed Pool that recycles buffers between
// blocks and renders.
//
// Pool does not clear released buffers; every consumer is expected to
// overwrite or zero what it acquires. A Pool may enforce a ceiling on the
// total number of samples it allocates, in which case Acquire reports
// daw.ErrResourceExhausted instead of growing further.
package buffer
