package mixer

import (
	"fmt"
	"math"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/dsp/core"
	"github.com/cwbudde/algo-daw/dsp/effects"
	"github.com/cwbudde/algo-daw/track"
)

// MasterSettings configures the master bus.
type MasterSettings struct {
	GainDB    float64
	CeilingDB float64
	ReleaseMs float64
}

// DefaultMasterSettings returns 0 dB gain and a -0.5 dBFS limiter ceiling
// with 50 ms release.
func DefaultMasterSettings() MasterSettings {
	return MasterSettings{
		CeilingDB: effects.DefaultLimiterCeilingDB,
		ReleaseMs: 50,
	}
}

// Validate checks the master settings.
func (m MasterSettings) Validate() error {
	switch {
	case math.IsNaN(m.GainDB) || math.IsInf(m.GainDB, 1):
		return fmt.Errorf("mixer: master gain %g dB: %w", m.GainDB, daw.ErrInvalidParameter)
	case !(m.CeilingDB >= -24 && m.CeilingDB <= 0):
		return fmt.Errorf("mixer: limiter ceiling %g dB outside [-24, 0]: %w", m.CeilingDB, daw.ErrInvalidParameter)
	case !(m.ReleaseMs >= 1 && m.ReleaseMs <= 2000):
		return fmt.Errorf("mixer: limiter release %g ms outside [1, 2000]: %w", m.ReleaseMs, daw.ErrInvalidParameter)
	}

	return nil
}

// Snapshot is the immutable state a Graph renders. Tracks must be private
// copies that nobody mutates after the snapshot is published.
type Snapshot struct {
	SampleRate  float64
	BlockSize   int
	Tempo       float64
	BeatsPerBar int

	Tracks []*track.Track
	Master MasterSettings
}

// Validate checks the processing format, the master settings and the send
// routing.
func (s Snapshot) Validate() error {
	cfg := core.ProcessorConfig{SampleRate: s.SampleRate, BlockSize: s.BlockSize}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("mixer: %w: %w", err, daw.ErrIntegrationFailure)
	}

	if err := s.Master.Validate(); err != nil {
		return err
	}

	_, err := ProcessingOrder(s.Tracks)

	return err
}

// ProcessingOrder returns track indices ordered so every track comes before
// the aux tracks it sends to (Kahn's algorithm; ties keep declared order).
// Sends to unknown or non-aux tracks and routing cycles are rejected.
func ProcessingOrder(tracks []*track.Track) ([]int, error) {
	index := make(map[string]int, len(tracks))
	for i, t := range tracks {
		if _, dup := index[t.ID]; dup {
			return nil, fmt.Errorf("mixer: duplicate track ID %q: %w", t.ID, daw.ErrInvalidParameter)
		}
		index[t.ID] = i
	}

	inDegree := make([]int, len(tracks))
	edges := make([][]int, len(tracks))

	for i, t := range tracks {
		for _, s := range t.Sends {
			j, ok := index[s.Target]
			if !ok {
				return nil, fmt.Errorf("mixer: send from %q to unknown track %q: %w", t.Name, s.Target, daw.ErrNotFound)
			}

			if tracks[j].Type != track.TypeAux {
				return nil, fmt.Errorf("mixer: send from %q targets %s track %q: %w",
					t.Name, tracks[j].Type, tracks[j].Name, daw.ErrInvalidParameter)
			}

			edges[i] = append(edges[i], j)
			inDegree[j]++
		}
	}

	ready := make([]int, 0, len(tracks))
	for i := range tracks {
		if inDegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]int, 0, len(tracks))
	for len(ready) > 0 {
		// pick the lowest declared index for a deterministic order
		k := 0
		for i := range ready {
			if ready[i] < ready[k] {
				k = i
			}
		}

		n := ready[k]
		ready = append(ready[:k], ready[k+1:]...)
		order = append(order, n)

		for _, m := range edges[n] {
			inDegree[m]--
			if inDegree[m] == 0 {
				ready = append(ready, m)
			}
		}
	}

	if len(order) != len(tracks) {
		return nil, fmt.Errorf("mixer: send routing contains a cycle: %w", daw.ErrInvalidParameter)
	}

	return order, nil
}

// Audible reports, per track index, whether the track contributes to the
// mix. A muted track is never audible. While any track is soloed only
// soloed tracks are audible, plus aux tracks fed (directly or through other
// aux tracks) by an audible track. Stored flags are not modified.
func Audible(tracks []*track.Track, order []int) []bool {
	anySolo := false
	for _, t := range tracks {
		if t.Solo {
			anySolo = true

			break
		}
	}

	index := make(map[string]int, len(tracks))
	for i, t := range tracks {
		index[t.ID] = i
	}

	audible := make([]bool, len(tracks))
	for i, t := range tracks {
		audible[i] = !t.Mute && (!anySolo || t.Solo)
	}

	if !anySolo {
		return audible
	}

	// Sources precede their targets in order, so one pass propagates.
	for _, i := range order {
		if !audible[i] {
			continue
		}

		for _, s := range tracks[i].Sends {
			j := index[s.Target]
			if !tracks[j].Mute {
				audible[j] = true
			}
		}
	}

	return audible
}
