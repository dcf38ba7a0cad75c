package log

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, lvl)

	lvl, err = ParseLevel(" DEBUG ")
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	logger, err := New("info", path)
	require.NoError(t, err)

	logger.Info("hello", zap.String("kind", "region"))
	logger.Debug("hidden")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), "region")
	assert.NotContains(t, string(data), "hidden")
}

func TestNewRejectsBadLevel(t *testing.T) {
	logger, err := New("verbose")
	assert.Error(t, err)
	assert.Nil(t, logger)
}

func TestReporterLogsAndRemembers(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := NewReporter(zap.New(core))

	r.Report(nil)
	assert.Equal(t, 0, r.Count())
	assert.Nil(t, r.Last())

	r.Report(errors.New("first"))
	r.Report(errors.New("second"))
	assert.Equal(t, 2, r.Count())
	assert.EqualError(t, r.Last(), "second")
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "request failed", logs.All()[0].Message)

	r.Clear()
	assert.Nil(t, r.Last())
	assert.Equal(t, 2, r.Count())
}

func TestNewReporterNilLogger(t *testing.T) {
	r := NewReporter(nil)
	assert.NotPanics(t, func() { r.Report(errors.New("boom")) })
}
