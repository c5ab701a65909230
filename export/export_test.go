package export

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/dsp/buffer"
	"github.com/cwbudde/algo-daw/dsp/dither"
	"github.com/cwbudde/algo-daw/internal/testutil"
)

func stereoTestBuffer() *buffer.Buffer {
	return buffer.FromChannels(
		testutil.DeterministicSine(440, 48000, 0.7, 2000),
		testutil.DeterministicNoise(9, 0.5, 2000),
	)
}

func TestWAVRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		enc Encoding
		eps float64
	}{
		{PCM16, 2.0 / 32768},
		{PCM24, 2.0 / 8388608},
		{PCM32, 1e-8},
		{Float32, 1e-7},
	}

	for _, tt := range tests {
		t.Run(tt.enc.String(), func(t *testing.T) {
			t.Parallel()

			src := stereoTestBuffer()
			data, err := EncodeWAVBytes(src, 48000, WithEncoding(tt.enc))
			require.NoError(t, err)

			got, sr, err := DecodeWAV(bytes.NewReader(data))
			require.NoError(t, err)
			require.Equal(t, 48000.0, sr)
			require.Equal(t, 2, got.Channels())
			require.Equal(t, src.Frames(), got.Frames())

			for ch := range 2 {
				testutil.RequireSliceNearlyEqual(t, got.Channel(ch), src.Channel(ch), tt.eps)
			}
		})
	}
}

func TestEncodeIsReproducible(t *testing.T) {
	t.Parallel()

	src := stereoTestBuffer()

	a, err := EncodeWAVBytes(src, 48000, WithDither(dither.KindTriangular, dither.Shaping9FC))
	require.NoError(t, err)
	b, err := EncodeWAVBytes(src, 48000, WithDither(dither.KindTriangular, dither.Shaping9FC))
	require.NoError(t, err)
	require.Equal(t, a, b)

	c, err := EncodeWAVBytes(src, 48000, WithDither(dither.KindTriangular, dither.Shaping9FC), WithSeed(99))
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}

func TestEncodeRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := EncodeWAVBytes(nil, 48000)
	require.ErrorIs(t, err, daw.ErrInvalidParameter)

	_, err = EncodeWAVBytes(stereoTestBuffer(), 44100.5)
	require.ErrorIs(t, err, daw.ErrInvalidParameter)

	_, err = EncodeWAVBytes(stereoTestBuffer(), 48000, WithEncoding(Encoding(7)))
	require.ErrorIs(t, err, daw.ErrInvalidParameter)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, _, err := DecodeWAV(bytes.NewReader([]byte("definitely not a riff file")))
	require.ErrorIs(t, err, daw.ErrIntegrationFailure)
}

func TestFileSinkAndWAVFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sink, err := NewFileSink(dir)
	require.NoError(t, err)

	loc, err := Publish(context.Background(), sink, "mixes/take1.wav", stereoTestBuffer(), 48000, WithEncoding(Float32), WithTitle("take 1"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "mixes", "take1.wav"), loc)

	got, sr, err := ReadWAVFile(loc)
	require.NoError(t, err)
	require.Equal(t, 48000.0, sr)
	require.Equal(t, 2000, got.Frames())

	_, err = sink.Put(context.Background(), "../escape.wav", nil, 0)
	require.ErrorIs(t, err, daw.ErrInvalidParameter)

	_, _, err = ReadWAVFile(filepath.Join(dir, "missing.wav"))
	require.ErrorIs(t, err, daw.ErrNotFound)
}

func TestWriteWAVFileMono(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mono.wav")
	src := buffer.FromChannels(testutil.DC(0.5, 100))
	require.NoError(t, WriteWAVFile(path, src, 44100, WithDither(dither.KindNone, dither.ShapingNone)))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(200))

	got, _, err := ReadWAVFile(path)
	require.NoError(t, err)
	require.Equal(t, 1, got.Channels())
	require.InDelta(t, 0.5, got.Channel(0)[50], 1.0/32768)
}

func TestMinioSinkConfig(t *testing.T) {
	t.Parallel()

	_, err := NewMinioSink(MinioConfig{Bucket: "renders"})
	require.ErrorIs(t, err, daw.ErrInvalidParameter)

	s, err := NewMinioSink(MinioConfig{Endpoint: "localhost:9000", Bucket: "renders", Prefix: "daw/"})
	require.NoError(t, err)
	require.Equal(t, "daw/mix.wav", s.ObjectName("mix.wav"))
}

func TestMemFileSeekPatchesEarlierBytes(t *testing.T) {
	t.Parallel()

	var m memFile
	_, err := m.Write([]byte("abcdef"))
	require.NoError(t, err)

	pos, err := m.Seek(2, io.SeekStart)
	require.NoError(t, err)
	require.Equal(t, int64(2), pos)

	_, err = m.Write([]byte("XY"))
	require.NoError(t, err)
	require.Equal(t, "abXYef", string(m.data))

	_, err = m.Seek(-10, io.SeekCurrent)
	require.ErrorIs(t, err, daw.ErrInvalidRange)
}
