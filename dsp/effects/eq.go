package effects

import (
	"github.com/cwbudde/algo-daw/dsp/filter/biquad"
	"github.com/cwbudde/algo-daw/dsp/filter/design"
)

// BandKind selects the filter shape of an equalizer band.
type BandKind int

// Band kinds.
const (
	BandPeak BandKind = iota
	BandLowShelf
	BandHighShelf
	BandHighPass
	BandLowPass
)

// Band describes one equalizer band. Gain is ignored for pass filters,
// which are enabled by Enabled and use Order (2 or 4) for their slope.
type Band struct {
	Kind    BandKind
	Freq    float64
	GainDB  float64
	Q       float64
	Order   int
	Enabled bool
}

// EQ is a stereo multi-band equalizer built from cascaded biquads.
// Bands at 0 dB and disabled pass filters contribute no section at all, so a
// flat EQ passes its input through bit for bit.
type EQ struct {
	sampleRate float64
	bands      []Band
	chain      *biquad.Chain
}

// DefaultBands returns the three-band layout (low shelf, mid peak, high
// shelf) with a disabled high-pass and low-pass, all flat.
func DefaultBands() []Band {
	return []Band{
		{Kind: BandHighPass, Freq: 30, Q: 0.7071, Order: 2},
		{Kind: BandLowShelf, Freq: 120, Q: 0.7071, Enabled: true},
		{Kind: BandPeak, Freq: 1000, Q: 1, Enabled: true},
		{Kind: BandHighShelf, Freq: 8000, Q: 0.7071, Enabled: true},
		{Kind: BandLowPass, Freq: 18000, Q: 0.7071, Order: 2},
	}
}

// NewEQ returns a flat equalizer with DefaultBands.
func NewEQ(sampleRate float64) (*EQ, error) {
	if err := checkSampleRate(sampleRate); err != nil {
		return nil, err
	}

	e := &EQ{
		sampleRate: sampleRate,
		bands:      DefaultBands(),
		chain:      biquad.NewChain(nil, biquad.WithChannels(2)),
	}

	return e, nil
}

// SetBands replaces the band layout and recomputes coefficients.
func (e *EQ) SetBands(bands []Band) error {
	for _, b := range bands {
		if err := checkRange("eq frequency", b.Freq, 10, 24000); err != nil {
			return err
		}
		if err := checkRange("eq gain", b.GainDB, -24, 24); err != nil {
			return err
		}
		if err := checkRange("eq q", b.Q, 0.1, 18); err != nil {
			return err
		}
	}

	e.bands = append(e.bands[:0], bands...)
	e.update()

	return nil
}

// SetSampleRate updates the sample rate and recomputes coefficients.
func (e *EQ) SetSampleRate(sampleRate float64) error {
	if err := checkSampleRate(sampleRate); err != nil {
		return err
	}
	e.sampleRate = sampleRate
	e.update()

	return nil
}

// Bands returns a copy of the band layout.
func (e *EQ) Bands() []Band {
	return append([]Band(nil), e.bands...)
}

// Sections returns the number of active biquad sections.
func (e *EQ) Sections() int {
	return e.chain.NumSections()
}

// MagnitudeDB returns the combined response at freq in dB.
func (e *EQ) MagnitudeDB(freq float64) float64 {
	return e.chain.MagnitudeDB(freq, e.sampleRate)
}

// Process filters a stereo block in place.
func (e *EQ) Process(left, right []float64) {
	if e.chain.NumSections() == 0 {
		return
	}

	e.chain.ProcessBlock(0, left)
	e.chain.ProcessBlock(1, right)
}

// Reset clears the filter state.
func (e *EQ) Reset() {
	e.chain.Reset()
}

func (e *EQ) update() {
	coeffs := make([]biquad.Coefficients, 0, len(e.bands))
	for _, b := range e.bands {
		if !b.Enabled {
			continue
		}

		switch b.Kind {
		case BandLowShelf:
			coeffs = append(coeffs, design.LowShelf(b.Freq, b.GainDB, b.Q, e.sampleRate))
		case BandHighShelf:
			coeffs = append(coeffs, design.HighShelf(b.Freq, b.GainDB, b.Q, e.sampleRate))
		case BandHighPass:
			coeffs = append(coeffs, design.ButterworthHP(b.Freq, max(b.Order, 2), e.sampleRate)...)
		case BandLowPass:
			coeffs = append(coeffs, design.ButterworthLP(b.Freq, max(b.Order, 2), e.sampleRate)...)
		default:
			coeffs = append(coeffs, design.Peak(b.Freq, b.GainDB, b.Q, e.sampleRate))
		}
	}

	e.chain.UpdateCoefficients(coeffs, 1)
}
