package biquad

// Chain is an ordered cascade of biquad sections processed in series,
// with an independent state per channel so one set of coefficients can
// filter a stereo pair.
type Chain struct {
	coeffs []Coefficients
	state  [][]Section // [channel][section]
	gain   float64
}

type chainConfig struct {
	gain     float64
	channels int
}

// ChainOption configures a Chain.
type ChainOption func(*chainConfig)

// WithGain sets an overall gain applied to the input before cascading.
// Default is 1.0 (unity gain).
func WithGain(g float64) ChainOption {
	return func(cfg *chainConfig) { cfg.gain = g }
}

// WithChannels sets the number of independent channel states. Default 1.
func WithChannels(n int) ChainOption {
	return func(cfg *chainConfig) {
		if n > 0 {
			cfg.channels = n
		}
	}
}

// NewChain creates a cascade from zero or more coefficient sets.
// Identity sections are dropped so a flat chain is an exact pass-through.
func NewChain(coeffs []Coefficients, opts ...ChainOption) *Chain {
	cfg := chainConfig{gain: 1, channels: 1}
	for _, o := range opts {
		o(&cfg)
	}

	c := &Chain{gain: cfg.gain, state: make([][]Section, cfg.channels)}
	c.UpdateCoefficients(coeffs, cfg.gain)

	return c
}

// ProcessBlock filters one channel's block in place through the cascade.
func (c *Chain) ProcessBlock(channel int, buf []float64) {
	if c.gain != 1 {
		for i, x := range buf {
			buf[i] = x * c.gain
		}
	}

	sections := c.state[channel]
	for i := range sections {
		sections[i].ProcessBlock(buf)
	}
}

// ProcessSample filters one sample of the given channel.
func (c *Chain) ProcessSample(channel int, x float64) float64 {
	x *= c.gain
	sections := c.state[channel]
	for i := range sections {
		x = sections[i].ProcessSample(x)
	}

	return x
}

// Reset clears all section states.
func (c *Chain) Reset() {
	for ch := range c.state {
		for i := range c.state[ch] {
			c.state[ch][i].Reset()
		}
	}
}

// NumSections returns the number of active (non-identity) sections.
func (c *Chain) NumSections() int {
	return len(c.coeffs)
}

// Channels returns the number of channel states.
func (c *Chain) Channels() int {
	return len(c.state)
}

// Gain returns the input gain applied before cascading.
func (c *Chain) Gain() float64 { return c.gain }

// UpdateCoefficients replaces the coefficients and gain. When the number of
// active sections is unchanged the delay-line state is kept, so parameter
// changes do not click.
func (c *Chain) UpdateCoefficients(coeffs []Coefficients, gain float64) {
	c.gain = gain

	active := make([]Coefficients, 0, len(coeffs))
	for _, k := range coeffs {
		if !k.IsIdentity() {
			active = append(active, k)
		}
	}

	keep := len(active) == len(c.coeffs)
	c.coeffs = active

	for ch := range c.state {
		if !keep || c.state[ch] == nil {
			c.state[ch] = make([]Section, len(active))
		}
		for i := range active {
			c.state[ch][i].Coefficients = active[i]
		}
	}
}

// Section returns the i-th active section of a channel.
func (c *Chain) Section(channel, i int) *Section {
	return &c.state[channel][i]
}
