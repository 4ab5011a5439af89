package cli

import (
	"context"

	"github.com/thenoetrevino/tasknote/internal/app"
	"github.com/thenoetrevino/tasknote/internal/config"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	appKey    contextKey = "app"
	configKey contextKey = "config"
)

// WithApp makes commands run against a and leave closing it to the caller
func WithApp(ctx context.Context, a *app.App) context.Context {
	return context.WithValue(ctx, appKey, a)
}

// AppFromContext returns the injected App, if any
func AppFromContext(ctx context.Context) *app.App {
	a, _ := ctx.Value(appKey).(*app.App)
	return a
}

// WithConfig makes commands use cfg instead of loading the config file
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// ConfigFromContext returns the injected config, if any
func ConfigFromContext(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(configKey).(*config.Config)
	return cfg
}
