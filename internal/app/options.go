package app

import (
	"log/slog"
	"time"

	"github.com/thenoetrevino/tasknote/internal/events"
)

// Option is a functional option for configuring App initialization
type Option func(*appConfig)

// appConfig holds the configuration for App initialization
type appConfig struct {
	eventClient   events.EventPublisher
	logger        *slog.Logger
	autosaveDelay time.Duration
	now           func() time.Time
}

// WithEventPublisher sets the event publisher for the application
func WithEventPublisher(ec events.EventPublisher) Option {
	return func(cfg *appConfig) {
		cfg.eventClient = ec
	}
}

// WithLogger sets the logger for the application
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *appConfig) {
		cfg.logger = logger
	}
}

// WithAutosaveDelay sets the quiet period used by editing sessions
func WithAutosaveDelay(d time.Duration) Option {
	return func(cfg *appConfig) {
		cfg.autosaveDelay = d
	}
}

// WithClock replaces time.Now for record timestamps
func WithClock(now func() time.Time) Option {
	return func(cfg *appConfig) {
		cfg.now = now
	}
}
