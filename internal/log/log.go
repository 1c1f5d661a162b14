// Package log provides the logger factory used across ragdesk.
//
// Components receive a *slog.Logger via their constructors and add context
// with logger.With(); there is no package-level or global logger.
package log

import (
	"io"
	"log/slog"
	"os"
)

// Config defines logger options.
type Config struct {
	// Level is the minimum level to emit. Default: slog.LevelInfo.
	Level slog.Level

	// JSON switches output to JSON records (used by the server).
	JSON bool
}

// New creates a logger writing to stderr.
func New(cfg Config) *slog.Logger {
	return NewWithWriter(os.Stderr, cfg)
}

// NewWithWriter creates a logger writing to w. Useful in tests to capture
// output in a buffer.
func NewWithWriter(w io.Writer, cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.JSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
