// Package log configures the process-wide slog logger and names the
// structured fields shared across components.
package log

import (
	"log/slog"
	"os"
)

// Config holds logger configuration.
type Config struct {
	Level     slog.Level
	Component string
	Handler   slog.Handler
}

// DefaultConfig returns the settings the binaries start with.
func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelInfo,
		Component: "app",
	}
}

// New builds a component-tagged slog logger.
func New(config Config) *slog.Logger {
	handler := config.Handler
	if handler == nil {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: config.Level})
	}
	return slog.New(handler).With(FieldComponent, config.Component)
}

// SetDefault installs logger as the process default so every slog call in
// the codebase routes through it.
func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}
