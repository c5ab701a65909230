// Package mixer turns a snapshot of track state into stereo audio.
//
// A [Graph] is built from an immutable [Snapshot] and renders absolute frame
// windows: each track renders its clips, runs its effect chain, feeds its
// sends and is summed into the [MasterBus] in declared track order. The
// live and offline render paths build their graphs from the same snapshot
// with the same code, so their output is identical for identical state and
// block size.
package mixer
