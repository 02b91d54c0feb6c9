// Package logging builds the slog handler used by the besselx CLI.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/lmittmann/tint"
)

// ParseLevel maps a config level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// NewHandler returns a handler writing to w in the given format.
// Format "tint" is the colourised console handler; "text" and "json" are
// the stdlib handlers for piping into other tools.
func NewHandler(w io.Writer, format string, level slog.Level) (slog.Handler, error) {
	switch format {
	case "", "tint":
		return tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05",
		}), nil
	case "text":
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}), nil
	case "json":
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

// New builds a logger from config values. verbose forces debug level.
func New(w io.Writer, format, level string, verbose bool) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	h, err := NewHandler(w, format, lvl)
	if err != nil {
		return nil, err
	}
	return slog.New(h), nil
}
