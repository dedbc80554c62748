// Package logging builds the application's slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options configures logger construction.
type Options struct {
	Level  string // "debug", "info", "warn", "error"; default info
	JSON   bool   // JSON handler instead of text
	Output io.Writer
}

// New constructs a logger from the given options.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: parseLevel(opts.Level)}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}
	return slog.New(handler)
}

// FromEnv builds a logger configured by LOG_LEVEL and LOG_FORMAT.
func FromEnv() *slog.Logger {
	return New(Options{
		Level: os.Getenv("LOG_LEVEL"),
		JSON:  strings.EqualFold(os.Getenv("LOG_FORMAT"), "json"),
	})
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
