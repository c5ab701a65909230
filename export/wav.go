package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/dsp/buffer"
	"github.com/cwbudde/algo-daw/dsp/dither"
)

const (
	wavFormatPCM   = 1
	wavFormatFloat = 3

	encodeChunkFrames = 4096
)

// Encoding is the sample format of a WAV file.
type Encoding int

// Encodings.
const (
	PCM16 Encoding = iota
	PCM24
	PCM32
	Float32
)

var encodingNames = []string{"pcm16", "pcm24", "pcm32", "float32"}

func (e Encoding) String() string {
	if e >= PCM16 && e <= Float32 {
		return encodingNames[e]
	}

	return fmt.Sprintf("Encoding(%d)", int(e))
}

// BitDepth returns the bits per sample.
func (e Encoding) BitDepth() int {
	switch e {
	case PCM16:
		return 16
	case PCM24:
		return 24
	default:
		return 32
	}
}

// ParseEncoding returns the encoding with the given name.
func ParseEncoding(name string) (Encoding, error) {
	for i, n := range encodingNames {
		if n == name {
			return Encoding(i), nil
		}
	}

	return 0, fmt.Errorf("export: unknown encoding %q: %w", name, daw.ErrInvalidParameter)
}

type wavConfig struct {
	encoding Encoding
	dither   dither.Kind
	shaping  dither.Shaping
	seed     uint64
	meta     *wav.Metadata
}

// Option configures EncodeWAV.
type Option func(*wavConfig)

// WithEncoding sets the sample format (default PCM16).
func WithEncoding(e Encoding) Option {
	return func(c *wavConfig) { c.encoding = e }
}

// WithDither sets the dither applied to integer encodings (default
// triangular, no shaping).
func WithDither(kind dither.Kind, shaping dither.Shaping) Option {
	return func(c *wavConfig) {
		c.dither = kind
		c.shaping = shaping
	}
}

// WithSeed seeds the dither noise.
func WithSeed(seed uint64) Option {
	return func(c *wavConfig) { c.seed = seed }
}

// WithTitle stores a title and the software name in the INFO chunk.
func WithTitle(title string) Option {
	return func(c *wavConfig) {
		c.meta = &wav.Metadata{Title: title, Software: "algo-daw"}
	}
}

// EncodeWAV writes buf as a WAV file to w.
func EncodeWAV(w io.WriteSeeker, buf *buffer.Buffer, sampleRate float64, opts ...Option) error {
	cfg := wavConfig{encoding: PCM16, dither: dither.KindTriangular}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.encoding < PCM16 || cfg.encoding > Float32 {
		return fmt.Errorf("export: encoding %d: %w", int(cfg.encoding), daw.ErrInvalidParameter)
	}

	if buf == nil || buf.Channels() == 0 {
		return fmt.Errorf("export: nothing to encode: %w", daw.ErrInvalidParameter)
	}

	if !(sampleRate > 0) || sampleRate != math.Trunc(sampleRate) {
		return fmt.Errorf("export: WAV needs an integral sample rate, got %g: %w", sampleRate, daw.ErrInvalidParameter)
	}

	channels := buf.Channels()
	bits := cfg.encoding.BitDepth()

	format := wavFormatPCM
	if cfg.encoding == Float32 {
		format = wavFormatFloat
	}

	enc := wav.NewEncoder(w, int(sampleRate), bits, channels, format)
	enc.Metadata = cfg.meta

	quantizers := make([]*dither.Quantizer, channels)
	if cfg.encoding != Float32 {
		for ch := range quantizers {
			q, err := dither.NewQuantizer(bits,
				dither.WithKind(cfg.dither),
				dither.WithShaping(cfg.shaping),
				dither.WithSeed(cfg.seed+uint64(ch)))
			if err != nil {
				return err
			}
			quantizers[ch] = q
		}
	}

	frames := buf.Frames()
	chunk := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: int(sampleRate)},
		Data:           make([]int, min(frames, encodeChunkFrames)*channels),
		SourceBitDepth: bits,
	}

	for start := 0; start < frames || start == 0; start += encodeChunkFrames {
		n := min(encodeChunkFrames, frames-start)
		chunk.Data = chunk.Data[:n*channels]

		for ch := range channels {
			src := buf.Channel(ch)[start : start+n]
			for i, x := range src {
				if q := quantizers[ch]; q != nil {
					chunk.Data[i*channels+ch] = q.Quantize(x)
				} else {
					// The encoder writes 32-bit words verbatim.
					chunk.Data[i*channels+ch] = int(int32(math.Float32bits(float32(x))))
				}
			}
		}

		if err := enc.Write(chunk); err != nil {
			return fmt.Errorf("export: write WAV data: %w", err)
		}

		if frames == 0 {
			break
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("export: finish WAV: %w", err)
	}

	return nil
}

// DecodeWAV reads a WAV file into a buffer of float samples and returns
// its sample rate.
func DecodeWAV(r io.ReadSeeker) (*buffer.Buffer, float64, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, 0, fmt.Errorf("export: not a valid WAV file: %w", daw.ErrIntegrationFailure)
	}

	pcm, err := d.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("export: read WAV data: %w: %w", err, daw.ErrIntegrationFailure)
	}

	channels := int(d.NumChans)
	if channels == 0 {
		return nil, 0, fmt.Errorf("export: WAV file has no channels: %w", daw.ErrIntegrationFailure)
	}

	decode, err := sampleDecoder(d.WavAudioFormat, int(d.BitDepth))
	if err != nil {
		return nil, 0, err
	}

	frames := len(pcm.Data) / channels
	out := buffer.New(channels, frames)
	for ch := range channels {
		dst := out.Channel(ch)
		for i := range dst {
			dst[i] = decode(pcm.Data[i*channels+ch])
		}
	}

	return out, float64(d.SampleRate), nil
}

func sampleDecoder(format uint16, bits int) (func(int) float64, error) {
	switch {
	case format == wavFormatFloat && bits == 32:
		return func(v int) float64 {
			return float64(math.Float32frombits(uint32(int32(v))))
		}, nil
	case format == wavFormatFloat:
		return nil, fmt.Errorf("export: %d-bit float WAV: %w", bits, daw.ErrIntegrationFailure)
	case bits == 8:
		// 8-bit WAV is unsigned.
		return func(v int) float64 { return float64(v-128) / 128 }, nil
	case bits == 16 || bits == 24 || bits == 32:
		scale := 1 / math.Exp2(float64(bits-1))

		return func(v int) float64 { return float64(v) * scale }, nil
	default:
		return nil, fmt.Errorf("export: %d-bit WAV: %w", bits, daw.ErrIntegrationFailure)
	}
}

// WriteWAVFile encodes buf into a new file at path.
func WriteWAVFile(path string, buf *buffer.Buffer, sampleRate float64, opts ...Option) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	defer func() {
		err = errors.Join(err, f.Close())
	}()

	return EncodeWAV(f, buf, sampleRate, opts...)
}

// ReadWAVFile decodes the WAV file at path.
func ReadWAVFile(path string) (*buffer.Buffer, float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("export: %w: %w", err, daw.ErrNotFound)
	}
	defer f.Close()

	return DecodeWAV(f)
}
