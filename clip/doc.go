// Package clip models timeline regions that play a Source on a track.
//
// A Clip places part of a source on the absolute project timeline: Start is
// where it sounds, Offset is where reading begins inside the source, and
// Duration is how long it plays. Clip edits (Trim, Split, Move) return new
// values; sources are immutable and shared between clips.
//
// Render adds a clip's contribution to an absolute frame window. The
// result depends only on the window position, never on how the timeline was
// partitioned into blocks, which is what makes live and offline rendering
// agree sample for sample.
package clip
