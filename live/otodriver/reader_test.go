package otodriver

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlockReaderEncodesInterleavedFloat32(t *testing.T) {
	t.Parallel()

	blocks := 0
	r := newBlockReader(4, func(l, rr []float64) {
		blocks++
		for i := range l {
			l[i] = float64(blocks) / 4
			rr[i] = -float64(i) / 8
		}
	})

	// 10 frames spans three blocks of 4.
	p := make([]byte, 10*8)
	n, err := r.Read(p)
	require.NoError(t, err)
	require.Equal(t, len(p), n)
	require.Equal(t, 3, blocks)

	sample := func(i int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(p[4*i:]))
	}

	require.Equal(t, float32(0.25), sample(0))
	require.Equal(t, float32(0), sample(1))
	require.Equal(t, float32(-0.125), sample(3))
	require.Equal(t, float32(0.5), sample(8))
	require.Equal(t, float32(0.75), sample(16))

	// The rest of block three is delivered before a fourth render.
	rest := make([]byte, 2*8)
	_, err = r.Read(rest)
	require.NoError(t, err)
	require.Equal(t, 3, blocks)
}
