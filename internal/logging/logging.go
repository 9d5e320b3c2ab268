// Package logging builds the zerolog logger used by every component.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/daviddao/zcon/internal/config"
)

// New creates a configured logger. The returned closer should be deferred
// to close file outputs.
func New(cfg config.LoggerConfig) (zerolog.Logger, func() error, error) {
	writer, closer, err := openOutput(cfg.Output)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log output: %w", err)
	}

	if strings.ToLower(cfg.Format) != "json" {
		writer = zerolog.ConsoleWriter{
			Out:        writer,
			TimeFormat: time.RFC3339,
			NoColor:    !isTerminal(cfg.Output),
		}
	}

	logger := zerolog.New(writer).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
	return logger, closer, nil
}

// ForTerminalUI adjusts cfg for a process that draws on the terminal:
// stdout and stderr outputs would corrupt the screen and are discarded.
func ForTerminalUI(cfg config.LoggerConfig) config.LoggerConfig {
	switch strings.ToLower(cfg.Output) {
	case "", "stderr", "stdout":
		cfg.Output = "discard"
	}
	return cfg
}

// ParseLevel converts a level name; unknown names mean info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

func openOutput(output string) (io.Writer, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(output) {
	case "stdout":
		return os.Stdout, noop, nil
	case "stderr", "":
		return os.Stderr, noop, nil
	case "discard":
		return io.Discard, noop, nil
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, nil, err
		}
		return f, f.Close, nil
	}
}

func isTerminal(output string) bool {
	switch strings.ToLower(output) {
	case "stdout":
		return isCharDevice(os.Stdout)
	case "stderr", "":
		return isCharDevice(os.Stderr)
	}
	return false
}

func isCharDevice(f *os.File) bool {
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
