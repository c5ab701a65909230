// Package engine ties tracks, the mixer graph and the live drivers together
// into a playable session.
//
// An Engine owns the authoritative track list, the project clock and the
// master settings. Every mutation validates a private copy and, once it
// succeeds, publishes an immutable snapshot. The live render goroutine picks
// up the newest snapshot at the start of a block, so control calls never
// wait on audio and audio never sees a half-applied edit.
//
// Offline renders build their own graph from the same snapshot. With the
// same block size and no loop they produce the same samples as live
// playback over the same stretch of timeline.
package engine
