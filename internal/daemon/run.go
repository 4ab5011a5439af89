package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// RunOptions configures Run
type RunOptions struct {
	SocketPath string

	// MetricsAddr enables a Prometheus /metrics listener when non-empty
	MetricsAddr string
}

// Run starts a daemon on opts.SocketPath and blocks until ctx is cancelled
func Run(ctx context.Context, opts RunOptions) error {
	logger := slog.Default().With("component", "daemon")

	server, err := NewServer(opts.SocketPath)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	if opts.MetricsAddr != "" {
		go func() {
			if err := serveMetrics(ctx, opts.MetricsAddr, server.Metrics(), logger); err != nil {
				logger.Error("metrics endpoint failed", "error", err)
			}
		}()
	}

	logger.Info("tasknote daemon starting", "socket_path", opts.SocketPath, "pid", os.Getpid())

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("daemon error: %w", err)
	}

	logger.Info("tasknote daemon shutting down gracefully")
	return nil
}
