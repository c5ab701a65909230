package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	daw "github.com/cwbudde/algo-daw"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	} {
		got, err := ParseLevel(name)
		require.NoError(t, err, name)
		require.Equal(t, want, got, name)
	}

	_, err := ParseLevel("loud")
	require.ErrorIs(t, err, daw.ErrInvalidParameter)
}

func TestLevelFiltersConsole(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	logger, closeFn, err := newLogger(Config{Level: "warn", JSON: true}, &out)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")
	require.NoError(t, closeFn())

	require.NotContains(t, out.String(), "hidden")
	require.Contains(t, out.String(), `"msg":"shown"`)
}

func TestFileIsTeed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "daw.log")

	var out bytes.Buffer
	logger, closeFn, err := newLogger(Config{File: path, MaxSizeMB: 1}, &out)
	require.NoError(t, err)

	logger.Info("render finished")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"render finished"`)
	require.Contains(t, out.String(), "render finished")
}

func TestNewRejectsBadLevel(t *testing.T) {
	t.Parallel()

	_, _, err := New(Config{Level: "verbose"})
	require.ErrorIs(t, err, daw.ErrInvalidParameter)
}
