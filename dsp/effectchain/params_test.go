package effectchain

import (
	"math"
	"testing"
)

func TestParamsGetNum(t *testing.T) {
	t.Parallel()

	p := Params{Num: map[string]float64{"a": 2, "nan": math.NaN(), "inf": math.Inf(1)}}

	tests := []struct {
		key  string
		want float64
	}{
		{key: "a", want: 2},
		{key: "missing", want: 9},
		{key: "nan", want: 9},
		{key: "inf", want: 9},
	}

	for _, tt := range tests {
		if got := p.GetNum(tt.key, 9); got != tt.want {
			t.Errorf("GetNum(%q): got %v want %v", tt.key, got, tt.want)
		}
	}

	if got := (Params{}).GetNum("a", 3); got != 3 {
		t.Errorf("nil map: got %v", got)
	}
	if got := p.GetEnum("a", 0); got != 2 {
		t.Errorf("GetEnum: got %v", got)
	}
}

func TestSchemaValidate(t *testing.T) {
	t.Parallel()

	if err := DelaySchema.Validate(map[string]float64{"timeMs": 100, "sync": 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := DelaySchema.Validate(map[string]float64{"bogus": 1}); err == nil {
		t.Fatal("expected unknown parameter error")
	}
	if err := DelaySchema.Validate(map[string]float64{"timeMs": 0}); err == nil {
		t.Fatal("expected range error")
	}
}
