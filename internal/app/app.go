// Package app wires configuration, storage and the event client into the
// services shared by the TUI, the CLI and the MCP server.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/thenoetrevino/tablero/internal/collection"
	"github.com/thenoetrevino/tablero/internal/config"
	"github.com/thenoetrevino/tablero/internal/database"
	"github.com/thenoetrevino/tablero/internal/events"
	rowservice "github.com/thenoetrevino/tablero/internal/services/row"
)

// App holds all application services and provides dependency injection.
type App struct {
	Config *config.Config

	// Service layer (business logic)
	RowService rowservice.Service

	db          *sql.DB
	eventClient events.EventPublisher
	observer    collection.Observer
	logger      *slog.Logger
}

// New creates an App on top of an open database. The App owns db and closes it.
func New(cfg *config.Config, db *sql.DB, opts ...Option) *App {
	if cfg == nil {
		cfg = config.Default()
	}

	ac := &appConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(ac)
	}

	a := &App{
		Config:      cfg,
		db:          db,
		eventClient: ac.eventClient,
		observer:    ac.observer,
		logger:      ac.logger,
	}
	a.RowService = rowservice.NewService(database.NewRowRepo(db), ac.eventClient, a.ControllerOptions()...)
	return a
}

// Open initializes the database named by cfg and connects to the daemon when it
// is running. Live updates are optional; a missing daemon only logs a warning.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	db, err := database.InitDB(ctx, cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if client := ConnectEvents(ctx, cfg); client != nil {
		opts = append([]Option{WithEventPublisher(client)}, opts...)
	}

	return New(cfg, db, opts...), nil
}

// ConnectEvents connects to the daemon socket from cfg. It returns nil when the
// daemon cannot be reached.
func ConnectEvents(ctx context.Context, cfg *config.Config) *events.Client {
	socketPath, err := cfg.SocketPath()
	if err != nil {
		slog.Warn("failed to resolve daemon socket", "error", err)
		return nil
	}

	client, err := events.NewClient(socketPath,
		events.WithDebounce(cfg.Events.Debounce),
		events.WithTable(events.DefaultTable),
	)
	if err != nil {
		daemonErr := events.ClassifyDaemonError(err)
		slog.Warn("failed to create daemon client", "message", daemonErr.Message, "hint", daemonErr.Hint)
		return nil
	}

	if err := client.Connect(ctx); err != nil {
		daemonErr := events.ClassifyDaemonError(err)
		slog.Debug("daemon not reachable, continuing without live updates", "message", daemonErr.Message, "hint", daemonErr.Hint)
		return nil
	}
	return client
}

// ControllerOptions maps the table configuration to controller options
func (a *App) ControllerOptions() []collection.Option {
	opts := ControllerOptions(a.Config.Table)
	if a.observer != nil {
		opts = append(opts, collection.WithObserver(a.observer))
	}
	return opts
}

// ControllerOptions maps a table configuration to controller options
func ControllerOptions(tc config.TableConfig) []collection.Option {
	return []collection.Option{
		collection.WithMaxLength(tc.MaxLength),
		collection.WithCreatorPosition(collection.ParseCreatorPosition(tc.CreatorPosition)),
		collection.WithIDGenerator(collection.GeneratorFor(tc.IDFormat)),
		collection.WithMatchKey(collection.ParseMatchKey(tc.MatchKey)),
	}
}

// EventClient returns the daemon connection, or nil when running without live updates
func (a *App) EventClient() events.EventPublisher {
	return a.eventClient
}

// DB returns the underlying database handle
func (a *App) DB() *sql.DB {
	return a.db
}

// Close releases the daemon connection and the database
func (a *App) Close() error {
	var errs []error
	if a.eventClient != nil {
		if err := a.eventClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing event client: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing database: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Error("error closing app", "error", err)
		return err
	}
	return nil
}
