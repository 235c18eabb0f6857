package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/thenoetrevino/tablero/internal/config"
	"github.com/thenoetrevino/tablero/internal/daemon"
	"github.com/thenoetrevino/tablero/internal/logging"
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
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// The daemon usually runs under systemd, which collects stderr
	logCfg := cfg.Logging
	logCfg.Output = "stderr"
	if err := logging.Init(logCfg); err != nil {
		slog.Error("failed to initialize logging", "error", err)
		os.Exit(1)
	}

	if err := daemon.Run(ctx, cfg); err != nil {
		slog.Error("daemon exited", "error", err)
		os.Exit(1)
	}
}
