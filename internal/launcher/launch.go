// Package launcher starts the interactive table
package launcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/thenoetrevino/tablero/internal/app"
	"github.com/thenoetrevino/tablero/internal/config"
	"github.com/thenoetrevino/tablero/internal/logging"
	"github.com/thenoetrevino/tablero/internal/metrics"
	"github.com/thenoetrevino/tablero/internal/tui"
)

// shutdownGrace bounds how long the program may take to exit after a signal
const shutdownGrace = 5 * time.Second

// Launch starts the TUI application
func Launch() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logging to file before anything else talks
	if err := logging.Init(cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	// Create root context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	var opts []app.Option
	if cfg.Table.MetricsAddr != "" {
		observer, err := serveMetrics(ctx, cfg.Table.MetricsAddr)
		if err != nil {
			return err
		}
		opts = append(opts, app.WithObserver(observer))
	}

	// Connects to the daemon for live updates when it is running
	application, err := app.Open(ctx, cfg, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			slog.Error("error closing application", "error", err)
		}
	}()
	if application.EventClient() == nil {
		slog.Info("continuing without live updates")
	}

	model := tui.InitialModel(ctx, cfg, application.RowService, application.EventClient(), application.ControllerOptions()...)
	// Flushes unsaved structural changes before the database closes
	defer model.Close()

	p := tea.NewProgram(model, tea.WithContext(ctx))

	// goroutine to monitor cancellation
	errChan := make(chan error, 1)
	go func() {
		_, err := p.Run()
		errChan <- err
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("error running program: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received, cleaning up")
		select {
		case <-errChan:
		case <-time.After(shutdownGrace):
			slog.Warn("program did not exit in time")
		}
	}

	return nil
}

// serveMetrics exposes collection metrics on addr for the lifetime of ctx
func serveMetrics(ctx context.Context, addr string) (*metrics.Collection, error) {
	reg, err := metrics.NewRegistry()
	if err != nil {
		return nil, err
	}
	collector, err := metrics.NewCollection(reg.Prometheus())
	if err != nil {
		return nil, err
	}

	go func() {
		if err := reg.Serve(ctx, addr); err != nil {
			slog.Error("metrics server stopped", "error", err)
		}
	}()
	return collector, nil
}
