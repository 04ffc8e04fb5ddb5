package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger. "json" emits machine-parseable lines
// for production collectors; any other format (the "pretty" default) is the
// human-readable text form. Development builds log at debug level.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg != nil && !cfg.IsProduction() {
		opts.Level = slog.LevelDebug
	}
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
