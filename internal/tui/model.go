// Package tui is the terminal front end of the activity table: a bubbletea
// program that renders the rows, drives edits through a huh form and
// reorders rows with the keyboard.
package tui

import (
	"context"
	"errors"
	"log/slog"

	tea "charm.land/bubbletea/v2"
	"github.com/thenoetrevino/tablero/internal/collection"
	"github.com/thenoetrevino/tablero/internal/config"
	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/services/row"
	"github.com/thenoetrevino/tablero/internal/tui/state"
)

// Model represents the application state for the TUI
type Model struct {
	Ctx         context.Context
	Config      *config.Config
	Ctrl        *collection.Controller
	Rows        row.Service
	EventClient events.EventPublisher

	UIState           *state.UIState
	FormState         *state.FormState
	NotificationState *state.NotificationState

	styles    Styles
	persister *persister
	eventChan <-chan events.Event

	// pendingReload defers a daemon-triggered reload until no save is in flight
	pendingReload bool
}

// InitialModel creates the TUI model and loads the rows from the service.
// Saves go through a DelayCommitter over the service; structural changes are
// written back by a background persister. eventClient may be nil.
func InitialModel(ctx context.Context, cfg *config.Config, svc row.Service, eventClient events.EventPublisher, opts ...collection.Option) Model {
	opts = append(opts, collection.WithCommitter(collection.DelayCommitter{
		Delay: cfg.Table.SaveDelay,
		Next:  commitThrough(svc),
	}))
	ctrl := collection.New(opts...)

	m := Model{
		Ctx:               ctx,
		Config:            cfg,
		Ctrl:              ctrl,
		Rows:              svc,
		EventClient:       eventClient,
		UIState:           state.NewUIState(),
		FormState:         state.NewFormState(),
		NotificationState: state.NewNotificationState(),
		styles:            NewStyles(cfg.ColorScheme),
	}

	if err := ctrl.Load(svc.Load(ctx)); err != nil {
		slog.Error("failed to load rows", "error", err)
		m.NotificationState.Add(state.LevelError, "Failed to load rows")
	}

	m.persister = newPersister(ctrl, svc)
	m.persister.start(ctx)

	if eventClient != nil {
		ch, err := eventClient.Listen(ctx)
		if err != nil {
			slog.Warn("live updates unavailable", "error", err)
		} else {
			m.eventChan = ch
		}
	}

	return m
}

// commitThrough commits through the service. A row created in this session
// may not be stored yet; its fields reach storage with the Sync that follows
// the save, so a missing row is not a failure here.
func commitThrough(svc row.Service) collection.Committer {
	return collection.CommitFunc(func(ctx context.Context, rowID string, fields models.Fields) error {
		err := svc.Commit(ctx, rowID, fields)
		if errors.Is(err, models.ErrRowNotFound) {
			return nil
		}
		return err
	})
}

// Init initializes the Bubble Tea application
func (m Model) Init() tea.Cmd {
	return listenForEvents(m.Ctx, m.eventChan)
}

// Close stops the persister after flushing pending changes and tears down the controller
func (m Model) Close() {
	m.persister.stop()
	m.Ctrl.Close()
}

// rendered returns the rows that pass the active filter, in display order
func (m Model) rendered() []*models.Row {
	rows := m.Ctrl.Rows()
	out := make([]*models.Row, 0, len(rows))
	for _, r := range rows {
		if m.UIState.Visible(r) {
			out = append(out, r)
		}
	}
	return out
}

// selectedRow returns the selected rendered row, or nil
func (m Model) selectedRow() *models.Row {
	rows := m.rendered()
	sel := m.UIState.Selected()
	if sel < 0 || sel >= len(rows) {
		return nil
	}
	return rows[sel]
}

// rowOffset returns the backing offset of the first row with id, or -1
func (m Model) rowOffset(id string) int {
	return m.Ctrl.OffsetOfID(id)
}

// selectID moves the selection to the first rendered row with id
func (m Model) selectID(id string) {
	for i, r := range m.rendered() {
		if r.ID == id {
			m.UIState.SetSelected(i)
			return
		}
	}
}
