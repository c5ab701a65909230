package signal

import (
	"errors"
	"math"
	"testing"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/dsp/core"
)

func TestSineLength(t *testing.T) {
	t.Parallel()

	g := NewGenerator(core.WithSampleRate(48000))
	s, err := g.Sine(1000, 1, 64)
	if err != nil {
		t.Fatalf("Sine() error = %v", err)
	}
	if len(s) != 64 {
		t.Fatalf("len = %d, want 64", len(s))
	}
}

func TestSineRejectsBadInput(t *testing.T) {
	t.Parallel()

	g := NewGenerator(core.WithSampleRate(48000))
	if _, err := g.Sine(1000, 1, 0); !errors.Is(err, daw.ErrInvalidParameter) {
		t.Fatalf("zero length: err = %v", err)
	}
	if _, err := g.Sine(30000, 1, 16); !errors.Is(err, daw.ErrInvalidParameter) {
		t.Fatalf("above Nyquist: err = %v", err)
	}
}

func TestWhiteNoiseDeterministic(t *testing.T) {
	t.Parallel()

	g1 := NewGeneratorWithOptions(nil, WithSeed(42))
	g2 := NewGeneratorWithOptions(nil, WithSeed(42))
	g3 := NewGeneratorWithOptions(nil, WithSeed(43))

	n1, err := g1.WhiteNoise(1, 16)
	if err != nil {
		t.Fatalf("WhiteNoise() error = %v", err)
	}
	n2, _ := g2.WhiteNoise(1, 16)
	n3, _ := g3.WhiteNoise(1, 16)

	same := true
	for i := range n1 {
		if n1[i] != n2[i] {
			t.Fatalf("noise mismatch at %d: %v != %v", i, n1[i], n2[i])
		}
		if math.Abs(n1[i]) > 1 {
			t.Fatalf("sample %d = %v outside amplitude", i, n1[i])
		}
		same = same && n1[i] == n3[i]
	}
	if same {
		t.Fatal("different seeds produced the same noise")
	}
}

func TestClick(t *testing.T) {
	t.Parallel()

	const sr = 48000
	g := NewGenerator(core.WithSampleRate(sr))

	// 120 BPM: one beat every 24000 frames, bursts of 1440 frames.
	x, err := g.Click(120, 4, 5, 1)
	if err != nil {
		t.Fatalf("Click() error = %v", err)
	}
	if len(x) != 5*24000 {
		t.Fatalf("len = %d, want %d", len(x), 5*24000)
	}

	peak := func(from, to int) float64 {
		p := 0.0
		for _, v := range x[from:to] {
			p = math.Max(p, math.Abs(v))
		}

		return p
	}

	accent := peak(0, 1440)
	beat := peak(24000, 24000+1440)
	if accent <= beat || beat == 0 {
		t.Fatalf("accent %v, beat %v: want accent louder than a nonzero beat", accent, beat)
	}
	if p := peak(1440, 24000); p != 0 {
		t.Fatalf("gap between clicks peaks at %v, want silence", p)
	}
	if next := peak(4*24000, 4*24000+1440); math.Abs(next-accent) > 1e-12 {
		t.Fatalf("second bar accent %v, want %v", next, accent)
	}

	if _, err := g.Click(0, 4, 1, 1); !errors.Is(err, daw.ErrInvalidParameter) {
		t.Fatalf("zero tempo: err = %v", err)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	out, err := Normalize([]float64{-0.5, 1.0, -0.25}, 0.5)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if out[1] != 0.5 || out[0] != -0.25 {
		t.Fatalf("out = %v, want peak 0.5", out)
	}

	silent, err := Normalize([]float64{0, 0}, 1)
	if err != nil || silent[0] != 0 || silent[1] != 0 {
		t.Fatalf("silent input: out = %v, err = %v", silent, err)
	}

	if _, err := Normalize(nil, 1); !errors.Is(err, daw.ErrInvalidParameter) {
		t.Fatalf("empty input: err = %v", err)
	}
}
