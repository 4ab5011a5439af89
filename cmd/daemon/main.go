// Command tasknote-daemon runs the change-notification daemon on its own,
// for service managers that expect a dedicated binary.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/thenoetrevino/tasknote/internal/config"
	"github.com/thenoetrevino/tasknote/internal/daemon"
	"github.com/thenoetrevino/tasknote/internal/logging"
)

func main() {
	// Set up signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.New(os.Stderr, cfg.LogLevel))

	err = daemon.Run(ctx, daemon.RunOptions{
		SocketPath:  cfg.Socket,
		MetricsAddr: cfg.MetricsAddr,
	})
	if err != nil {
		slog.Error("daemon error", "error", err)
		os.Exit(1)
	}
}
