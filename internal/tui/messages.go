package tui

import (
	"context"

	tea "charm.land/bubbletea/v2"
	"github.com/thenoetrevino/tablero/internal/collection"
	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/services/row"
)

// saveDoneMsg reports the outcome of an asynchronous SaveEdit
type saveDoneMsg struct {
	RowID string
	Err   error
}

// rowsChangedMsg is sent when another process changed the rows
type rowsChangedMsg struct {
	Event events.Event
}

// reloadedMsg carries a fresh load result
type reloadedMsg struct {
	Result models.LoadResult
}

// saveCmd runs SaveEdit off the update loop
func saveCmd(ctx context.Context, ctrl *collection.Controller, id string, fields models.Fields) tea.Cmd {
	return func() tea.Msg {
		return saveDoneMsg{RowID: id, Err: ctrl.SaveEdit(ctx, id, fields)}
	}
}

// reloadCmd fetches the rows again
func reloadCmd(ctx context.Context, svc row.Service) tea.Cmd {
	return func() tea.Msg {
		return reloadedMsg{Result: svc.Load(ctx)}
	}
}

// listenForEvents waits for the next daemon event.
// Returns nil if there is no event channel.
func listenForEvents(ctx context.Context, ch <-chan events.Event) tea.Cmd {
	if ch == nil {
		return nil
	}

	return func() tea.Msg {
		select {
		case event, ok := <-ch:
			if !ok {
				// Channel closed, connection lost
				return nil
			}
			return rowsChangedMsg{Event: event}
		case <-ctx.Done():
			return nil
		}
	}
}
