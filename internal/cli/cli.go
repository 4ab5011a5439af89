package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/thenoetrevino/tasknote/internal/app"
	"github.com/thenoetrevino/tasknote/internal/cli/styles"
	"github.com/thenoetrevino/tasknote/internal/config"
	"github.com/thenoetrevino/tasknote/internal/database"
	"github.com/thenoetrevino/tasknote/internal/events"
)

// CLI represents the CLI application context
type CLI struct {
	App    *app.App // Application container with the task store
	Config *config.Config

	// owned is false when App was injected by the caller, who closes it
	owned bool
}

// NewCLI opens the task database and an optional daemon connection
func NewCLI(ctx context.Context, cfg *config.Config) (*CLI, error) {
	handle := database.NewHandle(database.FileOpener(cfg.Database))

	// Fail fast on an unreadable or too-new database file
	if _, err := handle.DB(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	opts := []app.Option{
		app.WithLogger(slog.Default()),
		app.WithAutosaveDelay(cfg.AutosaveDelay()),
	}

	// Try to connect to daemon (optional - silent fallback)
	if client, err := events.NewClient(cfg.Socket); err == nil {
		if err := client.Connect(ctx); err == nil {
			opts = append(opts, app.WithEventPublisher(client))
		} else {
			slog.Debug("daemon not available", "error", events.ClassifyDaemonError(err))
			_ = client.Close()
		}
	}

	return &CLI{
		App:    app.New(handle, opts...),
		Config: cfg,
		owned:  true,
	}, nil
}

// GetCLIFromContext returns the CLI for a command. An App placed in ctx with
// WithApp is used as is; otherwise the config is loaded and a new CLI opened.
func GetCLIFromContext(ctx context.Context) (*CLI, error) {
	cfg, err := LoadConfig(ctx)
	if err != nil {
		return nil, err
	}

	if a := AppFromContext(ctx); a != nil {
		return &CLI{App: a, Config: cfg}, nil
	}

	return NewCLI(ctx, cfg)
}

// LoadConfig returns the config injected with WithConfig, or loads the
// config file. Styles are initialized from its color scheme.
func LoadConfig(ctx context.Context) (*config.Config, error) {
	cfg := ConfigFromContext(ctx)
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	styles.Init(cfg.ColorScheme)
	return cfg, nil
}

// Close cleans up CLI resources
func (c *CLI) Close() error {
	if !c.owned {
		return nil
	}
	return c.App.Close()
}
