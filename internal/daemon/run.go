package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/thenoetrevino/tablero/internal/config"
	"github.com/thenoetrevino/tablero/internal/metrics"
)

// Run starts a daemon configured by cfg and blocks until ctx is canceled
func Run(ctx context.Context, cfg *config.Config) error {
	socketPath, err := cfg.SocketPath()
	if err != nil {
		return err
	}

	opts := []Option{WithClientBuffer(cfg.Daemon.ClientBuffer)}
	if cfg.Daemon.MetricsAddr != "" {
		reg, err := metrics.NewRegistry()
		if err != nil {
			return err
		}
		opts = append(opts, WithRegistry(reg))
	}

	server, err := NewServer(socketPath, opts...)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	if cfg.Daemon.MetricsAddr != "" {
		go func() {
			if err := server.ServeMetrics(ctx, cfg.Daemon.MetricsAddr); err != nil {
				slog.Error("metrics server stopped", "error", err)
			}
		}()
	}

	slog.Info("tablero daemon starting", "socket_path", socketPath, "pid", os.Getpid())

	// Blocks until shutdown
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("daemon error: %w", err)
	}

	slog.Info("tablero daemon shutting down gracefully")
	return nil
}
