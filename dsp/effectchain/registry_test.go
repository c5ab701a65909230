package effectchain

import (
	"errors"
	"slices"
	"testing"

	daw "github.com/cwbudde/algo-daw"
)

func dummyFactory(_ Context) (Effect, error) {
	return &stubEffect{}, nil
}

func TestRegistryRegister(t *testing.T) {
	t.Parallel()

	t.Run("registers and looks up definition", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()

		err := r.Register(Definition{Kind: "chorus", Factory: dummyFactory, DefaultMix: 1})
		if err != nil {
			t.Fatalf("Register returned unexpected error: %v", err)
		}

		def, ok := r.Lookup("chorus")
		if !ok || def.Factory == nil {
			t.Fatal("Lookup did not return registered kind")
		}
	})

	t.Run("rejects empty effect kind", func(t *testing.T) {
		t.Parallel()

		err := NewRegistry().Register(Definition{Factory: dummyFactory})
		if err == nil {
			t.Fatal("expected error for empty effect kind")
		}
	})

	t.Run("rejects nil factory", func(t *testing.T) {
		t.Parallel()

		err := NewRegistry().Register(Definition{Kind: "chorus"})
		if err == nil {
			t.Fatal("expected error for nil factory")
		}
	})

	t.Run("rejects duplicate registration", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		_ = r.Register(Definition{Kind: "chorus", Factory: dummyFactory})

		err := r.Register(Definition{Kind: "chorus", Factory: dummyFactory})
		if !errors.Is(err, errDuplicateEffect) {
			t.Fatalf("expected duplicate error, got %v", err)
		}
	})

	t.Run("rejects default outside schema range", func(t *testing.T) {
		t.Parallel()

		err := NewRegistry().Register(Definition{
			Kind:    "bad",
			Factory: dummyFactory,
			Schema:  Schema{{Name: "x", Min: 0, Max: 1, Default: 2}},
		})
		if !errors.Is(err, daw.ErrInvalidParameter) {
			t.Fatalf("expected ErrInvalidParameter, got %v", err)
		}
	})

	t.Run("MustRegister panics on duplicate", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		r.MustRegister(Definition{Kind: "chorus", Factory: dummyFactory})

		defer func() {
			if recover() == nil {
				t.Fatal("expected panic")
			}
		}()
		r.MustRegister(Definition{Kind: "chorus", Factory: dummyFactory})
	})
}

func TestDefaultRegistryKinds(t *testing.T) {
	t.Parallel()

	got := DefaultRegistry().Kinds()
	want := []string{KindCompressor, KindDelay, KindEQ, KindGain, KindLimiter, KindReverb}
	if !slices.Equal(got, want) {
		t.Fatalf("kinds: got %v want %v", got, want)
	}
}

func TestDefaultRegistryBuildsEveryKind(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()
	ctx := Context{SampleRate: 48000, Tempo: 120, BeatsPerBar: 4}

	for _, kind := range reg.Kinds() {
		t.Run(kind, func(t *testing.T) {
			t.Parallel()

			slot, err := reg.NewSlot(kind)
			if err != nil {
				t.Fatalf("NewSlot: %v", err)
			}

			c := New(ctx, reg)
			if err := c.Sync([]Slot{slot}); err != nil {
				t.Fatalf("Sync: %v", err)
			}

			l, r := stereo(0.5, -0.25, 0.125, 0)
			c.Process(l, r)
			for i := range l {
				if l[i] != l[i] || r[i] != r[i] {
					t.Fatalf("NaN at %d", i)
				}
			}
		})
	}
}

func TestNewSlotUnknownKind(t *testing.T) {
	t.Parallel()

	_, err := DefaultRegistry().NewSlot("phaser")
	if !errors.Is(err, daw.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}
