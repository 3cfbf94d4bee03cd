package config

import (
	"context"
	"log/slog"
)

// loggerKey is used to store the logger in context. Living here, both
// the cli and commands packages can reach it without an import cycle.
type loggerKey struct{}

var currentConfig *Config

// GetCurrentConfig returns the configuration from the last LoadConfig
// call, or nil before any load.
func GetCurrentConfig() *Config {
	return currentConfig
}

// ResetConfig clears loader state. Used for testing.
func ResetConfig() {
	currentConfig = nil
	configFileUsed = ""
}

// WithLogger stores a logger in the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Discard as safe fallback.
	return slog.New(slog.DiscardHandler)
}
