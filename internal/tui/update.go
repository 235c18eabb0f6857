package tui

import (
	"errors"
	"fmt"
	"log/slog"

	tea "charm.land/bubbletea/v2"
	"github.com/thenoetrevino/tablero/internal/collection"
	"github.com/thenoetrevino/tablero/internal/tui/state"
)

// Update handles all messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.UIState.SetSize(msg.Width, msg.Height)
		return m, nil

	case saveDoneMsg:
		cmd := m.handleSaveDone(msg)
		return m, cmd

	case rowsChangedMsg:
		slog.Debug("rows changed elsewhere", "row_id", msg.Event.RowID, "source", msg.Event.Source)
		cmd := m.requestReload()
		return m, tea.Batch(listenForEvents(m.Ctx, m.eventChan), cmd)

	case reloadedMsg:
		m.handleReloaded(msg)
		return m, nil

	case tea.KeyPressMsg:
		cmd := m.handleKey(msg)
		return m, cmd
	}

	if m.UIState.Mode() == state.FormMode {
		cmd := m.updateForm(msg)
		return m, cmd
	}
	return m, nil
}

// handleKey dispatches key presses by mode
func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch m.UIState.Mode() {
	case state.FormMode:
		return m.handleFormKey(msg)
	case state.DragMode:
		return m.handleDragKey(msg)
	case state.DeleteConfirmMode:
		return m.handleDeleteConfirm(msg)
	case state.HelpMode:
		return m.handleHelpKey(msg)
	}
	return m.handleNormalKey(msg)
}

// handleSaveDone reports the outcome of a save and runs a deferred reload.
// A save that did not go through puts the user back in the form with the
// values they submitted.
func (m *Model) handleSaveDone(msg saveDoneMsg) tea.Cmd {
	var cmd tea.Cmd

	switch {
	case msg.Err == nil:
		m.FormState.Discard(msg.RowID)
		m.NotificationState.Add(state.LevelInfo, fmt.Sprintf("Saved row %s", msg.RowID))
	case errors.Is(msg.Err, collection.ErrRowNotFound):
		m.FormState.Discard(msg.RowID)
		m.NotificationState.Add(state.LevelWarning, fmt.Sprintf("Row %s was deleted while saving", msg.RowID))
	case errors.Is(msg.Err, collection.ErrClosed):
		return nil
	case errors.Is(msg.Err, collection.ErrStale):
		m.NotificationState.Add(state.LevelWarning, "Rows were reloaded while saving; review and save again")
		cmd = m.resumeEdit(msg.RowID)
	default:
		slog.Error("failed to save row", "row_id", msg.RowID, "error", msg.Err)
		m.NotificationState.Add(state.LevelError, fmt.Sprintf("Save failed: %v", msg.Err))
		cmd = m.resumeEdit(msg.RowID)
	}

	if m.pendingReload && !m.Ctrl.AnySaving() {
		m.pendingReload = false
		return tea.Batch(cmd, reloadCmd(m.Ctx, m.Rows))
	}
	return cmd
}

// resumeEdit reopens the form for a row whose save did not go through.
// While another form or dialog is open the held edit waits for the next edit of the row.
func (m *Model) resumeEdit(id string) tea.Cmd {
	if !m.Ctrl.IsEditing(id) {
		m.FormState.Discard(id)
		return nil
	}
	if m.UIState.Mode() != state.NormalMode {
		return nil
	}
	m.selectID(id)
	return m.openForm(id, false)
}

// requestReload reloads now, or after the last in-flight save completes
func (m *Model) requestReload() tea.Cmd {
	if m.Ctrl.AnySaving() {
		m.pendingReload = true
		return nil
	}
	return reloadCmd(m.Ctx, m.Rows)
}

// handleReloaded replaces the collection with a fresh load result
func (m *Model) handleReloaded(msg reloadedMsg) {
	if err := m.Ctrl.Load(msg.Result); err != nil {
		if !errors.Is(err, collection.ErrClosed) {
			m.NotificationState.Add(state.LevelError, "Failed to reload rows")
		}
		return
	}

	m.UIState.ClampSelection(len(m.rendered()))

	for _, id := range m.FormState.HeldIDs() {
		if !m.Ctrl.IsEditing(id) {
			m.FormState.Discard(id)
		}
	}

	if m.UIState.Mode() == state.FormMode && !m.Ctrl.IsEditing(m.FormState.RowID()) {
		m.closeForm()
		m.NotificationState.Add(state.LevelWarning, "The row being edited was removed")
	}
}
