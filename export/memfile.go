package export

import (
	"fmt"
	"io"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/dsp/buffer"
)

// memFile is an in-memory io.WriteSeeker; the WAV encoder seeks back to
// patch chunk sizes.
type memFile struct {
	data []byte
	pos  int
}

func (m *memFile) Write(p []byte) (int, error) {
	if end := m.pos + len(p); end > len(m.data) {
		m.data = append(m.data, make([]byte, end-len(m.data))...)
	}
	n := copy(m.data[m.pos:], p)
	m.pos += n

	return n, nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = int64(m.pos)
	case io.SeekEnd:
		base = int64(len(m.data))
	default:
		return 0, fmt.Errorf("export: seek whence %d: %w", whence, daw.ErrInvalidParameter)
	}

	next := base + offset
	if next < 0 {
		return 0, fmt.Errorf("export: seek to %d: %w", next, daw.ErrInvalidRange)
	}
	m.pos = int(next)

	return next, nil
}

// EncodeWAVBytes returns buf encoded as a WAV file.
func EncodeWAVBytes(buf *buffer.Buffer, sampleRate float64, opts ...Option) ([]byte, error) {
	var m memFile
	if err := EncodeWAV(&m, buf, sampleRate, opts...); err != nil {
		return nil, err
	}

	return m.data, nil
}
