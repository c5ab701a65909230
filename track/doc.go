// Package track holds per-track state: routing (volume, pan, mute, solo,
// sends), the ordered effect slots and the clips on the timeline.
//
// A Track is plain data guarded by its owner. Mutating methods validate
// before changing anything, so a failed call leaves the track unchanged.
package track
