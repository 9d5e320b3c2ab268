package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviddao/zcon/internal/config"
)

func TestNewJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zcon.log")
	logger, closer, err := New(config.LoggerConfig{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)

	logger.Debug().Str("component", "test").Msg("hello")
	logger.Trace().Msg("dropped")
	require.NoError(t, closer())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "debug", rec["level"])
	assert.Equal(t, "hello", rec["message"])
	assert.Equal(t, "test", rec["component"])
	assert.Contains(t, rec, "time")
}

func TestNewConsoleFileHasNoColor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zcon.log")
	logger, closer, err := New(config.LoggerConfig{Level: "info", Format: "console", Output: path})
	require.NoError(t, err)

	logger.Info().Msg("plain")
	require.NoError(t, closer())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "plain")
	assert.NotContains(t, string(data), "\x1b[")
}

func TestNewBadOutput(t *testing.T) {
	_, _, err := New(config.LoggerConfig{Output: "/nonexistent/dir/zcon.log"})
	assert.Error(t, err)
}

func TestForTerminalUI(t *testing.T) {
	for _, out := range []string{"", "stderr", "STDOUT"} {
		assert.Equal(t, "discard", ForTerminalUI(config.LoggerConfig{Output: out}).Output, out)
	}
	assert.Equal(t, "/var/log/zcon.log", ForTerminalUI(config.LoggerConfig{Output: "/var/log/zcon.log"}).Output)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"bogus":   zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}
