package effectchain

// Context provides environmental information that effect runtimes need.
type Context struct {
	SampleRate float64
	// Tempo in BPM, used by tempo-synced effects.
	Tempo       float64
	BeatsPerBar int
}
