package effectchain

import "math"

// Params holds the values handed to an effect runtime on Configure.
type Params struct {
	ID   string
	Kind string
	Num  map[string]float64
}

// GetNum safely extracts a numeric parameter, returning def if missing or invalid.
func (p Params) GetNum(key string, def float64) float64 {
	if p.Num == nil {
		return def
	}

	v, ok := p.Num[key]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}

	return v
}

// GetEnum extracts an enum parameter as an option index.
func (p Params) GetEnum(key string, def int) int {
	v := p.GetNum(key, float64(def))
	if v < 0 {
		return def
	}

	return int(v)
}
