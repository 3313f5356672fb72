package logging

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"info":    LevelInfo,
		"warn":    LevelWarn,
		"error":   LevelError,
		"unknown": LevelInfo,
		"":        LevelInfo,
	}
	for input, want := range cases {
		assert.Equal(t, want, ParseLevel(input), "input %q", input)
	}
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatText, ParseFormat("text"))
	assert.Equal(t, FormatText, ParseFormat("bogus"))
}

func TestNewDefaultWritesToStdout(t *testing.T) {
	logger := NewDefault()
	require.NotNil(t, logger)
	assert.NotPanics(t, func() {
		logger.Info("hello", "k", "v")
	})
}

func TestNewWritesToFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "reactordb-log-*.log")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	logger := New(Config{Level: "debug", Format: "json", Output: f.Name()})
	logger.Info("seeded view", "view", "activeUsers")

	data, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	assert.Contains(t, string(data), "seeded view")
	assert.Contains(t, string(data), "activeUsers")
}

func TestWithFieldsIsCumulative(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "reactordb-log-*.log")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	logger := New(Config{Level: "info", Format: "json", Output: f.Name()})
	scoped := logger.WithFields("collection", "users")
	scoped.Warn("slow diff", "elapsed_ms", 12)

	data, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"collection":"users"`)
	assert.Contains(t, string(data), `"elapsed_ms":12`)
}

func TestNopLoggerDiscardsSilently(t *testing.T) {
	logger := NewNop()
	assert.NotPanics(t, func() {
		logger.Debug("x")
		logger.Info("x")
		logger.Warn("x")
		logger.Error("x")
		logger.WithFields("a", 1).Info("y")
	})
}
