// Package meter provides master bus level metering: a decaying peak-hold
// and a sliding-window RMS per channel.
//
// Levels are computed on the render thread and published as immutable
// [Reading] values at a fixed cadence, so control-rate readers never touch
// audio state.
package meter
