package app

import (
	"errors"
	"log/slog"
	"time"

	"github.com/thenoetrevino/tasknote/internal/autosave"
	"github.com/thenoetrevino/tasknote/internal/database"
	"github.com/thenoetrevino/tasknote/internal/events"
	"github.com/thenoetrevino/tasknote/internal/store"
)

// App holds the task store and the resources behind it.
// This is the main application container that manages their lifecycles.
type App struct {
	handle *database.Handle

	// Event system for live updates, nil when no daemon is reachable
	eventClient events.EventPublisher

	logger        *slog.Logger
	autosaveDelay time.Duration

	Store *store.Store
}

// New creates a new App over handle.
// This is the single entry point for creating the application container.
func New(handle *database.Handle, opts ...Option) *App {
	cfg := &appConfig{
		logger:        slog.Default(),
		autosaveDelay: autosave.DefaultDelay,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	storeOpts := []store.Option{store.WithLogger(cfg.logger)}
	if cfg.eventClient != nil {
		storeOpts = append(storeOpts, store.WithEventPublisher(cfg.eventClient))
	}
	if cfg.now != nil {
		storeOpts = append(storeOpts, store.WithClock(cfg.now))
	}

	return &App{
		handle:        handle,
		eventClient:   cfg.eventClient,
		logger:        cfg.logger,
		autosaveDelay: cfg.autosaveDelay,
		Store:         store.New(handle, storeOpts...),
	}
}

// NewSession starts an autosave session writing through the store
func (a *App) NewSession(opts ...autosave.Option) *autosave.Session {
	opts = append([]autosave.Option{autosave.WithLogger(a.logger)}, opts...)
	return autosave.NewSession(a.Store, a.autosaveDelay, opts...)
}

// Events returns the event publisher, or nil when running without a daemon
func (a *App) Events() events.EventPublisher {
	return a.eventClient
}

// Handle returns the underlying database handle
func (a *App) Handle() *database.Handle {
	return a.handle
}

// Logger returns the application logger
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Close releases the event connection and the database
func (a *App) Close() error {
	var errs []error
	if a.eventClient != nil {
		if err := a.eventClient.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.handle.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
