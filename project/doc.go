// Package project defines the persisted shape of a session: clock, master
// settings and tracks with their clips and effects, as plain structured
// data with YAML and JSON tags.
//
// Audio material is not embedded. Audio clips reference a source by ID and
// optional path, and a SourceResolver supplies the samples on load.
package project
