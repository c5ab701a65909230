package effectchain

// stubEffect is a minimal Effect implementation for testing.
type stubEffect struct {
	configureErr   error
	configureCalls int
	processCalls   int
	resetCalls     int
	lastCtx        Context
	lastParams     Params
}

func (s *stubEffect) Configure(ctx Context, params Params) error {
	s.configureCalls++
	s.lastCtx = ctx
	s.lastParams = params

	return s.configureErr
}

func (s *stubEffect) Process(_, _ []float64) {
	s.processCalls++
}

func (s *stubEffect) Reset() {
	s.resetCalls++
}

// scaleEffect multiplies every sample by a fixed factor.
type scaleEffect struct {
	factor float64
}

func (g *scaleEffect) Configure(_ Context, params Params) error {
	g.factor = params.GetNum("factor", 1.0)

	return nil
}

func (g *scaleEffect) Process(left, right []float64) {
	for i := range left {
		left[i] *= g.factor
		right[i] *= g.factor
	}
}

func (g *scaleEffect) Reset() {}

// offsetEffect adds a constant to every sample, making order observable.
type offsetEffect struct {
	value float64
}

func (a *offsetEffect) Configure(_ Context, params Params) error {
	a.value = params.GetNum("value", 0)

	return nil
}

func (a *offsetEffect) Process(left, right []float64) {
	for i := range left {
		left[i] += a.value
		right[i] += a.value
	}
}

func (a *offsetEffect) Reset() {}

func testRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(Definition{
		Kind:       "scale",
		Schema:     Schema{{Name: "factor", Min: 0, Max: 10, Default: 1}},
		DefaultMix: 1,
		Factory:    func(_ Context) (Effect, error) { return &scaleEffect{}, nil },
	})
	r.MustRegister(Definition{
		Kind:       "offset",
		Schema:     Schema{{Name: "value", Min: -10, Max: 10}},
		DefaultMix: 1,
		Factory:    func(_ Context) (Effect, error) { return &offsetEffect{}, nil },
	})
	r.MustRegister(Definition{
		Kind:       "stub",
		DefaultMix: 1,
		Factory:    func(_ Context) (Effect, error) { return &stubEffect{}, nil },
	})

	return r
}

func mustSlot(r *Registry, kind string, params map[string]float64) Slot {
	s, err := r.NewSlot(kind)
	if err != nil {
		panic(err)
	}

	for k, v := range params {
		if err := s.SetParameter(k, v); err != nil {
			panic(err)
		}
	}

	return s
}

func stereo(vals ...float64) ([]float64, []float64) {
	l := append([]float64(nil), vals...)
	r := append([]float64(nil), vals...)

	return l, r
}
