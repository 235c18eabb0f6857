package tui

import (
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/thenoetrevino/tablero/internal/collection"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/tui/state"
)

// ============================================================================
// NORMAL MODE HANDLERS
// ============================================================================

// handleNormalKey dispatches key events in NormalMode to specific handlers.
func (m *Model) handleNormalKey(msg tea.KeyPressMsg) tea.Cmd {
	m.NotificationState.Clear()

	km := m.Config.KeyMappings
	switch msg.String() {
	case km.Quit, "ctrl+c":
		return tea.Quit
	case km.ShowHelp:
		m.UIState.SetMode(state.HelpMode)
	case km.PrevRow, "up":
		m.UIState.MoveSelection(-1, len(m.rendered()))
	case km.NextRow, "down":
		m.UIState.MoveSelection(1, len(m.rendered()))
	case km.AddRow:
		return m.handleAddRow()
	case km.EditRow, "enter":
		return m.handleEditRow()
	case km.DeleteRow:
		m.handleDeleteRow()
	case km.ViewRow:
		m.UIState.TogglePreview()
	case km.CopyID:
		m.handleCopyID()
	case km.GrabRow:
		m.handleGrabRow()
	case km.MoveRowUp:
		m.handleMoveRow(-1)
	case km.MoveRowDown:
		m.handleMoveRow(1)
	case km.CycleFilter:
		m.UIState.CycleFilter()
		m.UIState.ClampSelection(len(m.rendered()))
	case km.Reload:
		return m.requestReload()
	}
	return nil
}

// handleAddRow creates a row at the configured position and opens the form on it
func (m *Model) handleAddRow() tea.Cmd {
	created, err := m.Ctrl.Create(nil)
	switch {
	case errors.Is(err, collection.ErrMaxLengthReached):
		m.NotificationState.Add(state.LevelWarning, fmt.Sprintf("Row limit reached (%d)", m.Ctrl.MaxLength()))
		return nil
	case errors.Is(err, collection.ErrCreatorHidden):
		m.NotificationState.Add(state.LevelInfo, "Adding rows is disabled")
		return nil
	case err != nil:
		m.NotificationState.Add(state.LevelError, err.Error())
		return nil
	}

	// A new row has no state yet, so it must be visible under the filter
	m.UIState.SetFilter(models.StateAll)
	m.selectID(created.ID)
	return m.openForm(created.ID, true)
}

// handleEditRow puts the selected row in edit mode and opens the form
func (m *Model) handleEditRow() tea.Cmd {
	r := m.selectedRow()
	if r == nil {
		return nil
	}
	if m.Ctrl.IsSaving(r.ID) {
		m.NotificationState.Add(state.LevelWarning, "Save in progress")
		return nil
	}

	if err := m.Ctrl.StartEdit(r.ID); err != nil {
		if errors.Is(err, collection.ErrNotEditable) {
			m.NotificationState.Add(state.LevelWarning, "This row cannot be edited")
		} else {
			m.NotificationState.Add(state.LevelError, err.Error())
		}
		return nil
	}
	return m.openForm(r.ID, false)
}

// handleDeleteRow asks for confirmation before deleting the selected row
func (m *Model) handleDeleteRow() {
	r := m.selectedRow()
	if r == nil {
		return
	}
	m.UIState.ConfirmDelete(r.ID)
}

// handleCopyID copies the selected row id to the system clipboard
func (m *Model) handleCopyID() {
	r := m.selectedRow()
	if r == nil {
		return
	}
	if err := clipboard.WriteAll(r.ID); err != nil {
		m.NotificationState.Add(state.LevelError, "Clipboard unavailable")
		return
	}
	m.NotificationState.Add(state.LevelInfo, fmt.Sprintf("Copied %s", r.ID))
}

// handleMoveRow swaps the selected row with its rendered neighbor
func (m *Model) handleMoveRow(delta int) {
	rendered := m.rendered()
	from := m.UIState.Selected()
	to := from + delta
	if from < 0 || from >= len(rendered) || to < 0 || to >= len(rendered) {
		return
	}

	if err := m.Ctrl.ReorderRow(rendered[from], rendered[to]); err != nil {
		m.NotificationState.Add(state.LevelError, err.Error())
		return
	}
	m.UIState.SetSelected(to)
}

// ============================================================================
// DELETE CONFIRMATION
// ============================================================================

// handleDeleteConfirm deletes the pending row on y/enter and backs out on anything else
func (m *Model) handleDeleteConfirm(msg tea.KeyPressMsg) tea.Cmd {
	id := m.UIState.PendingDelete()
	m.UIState.ClearDelete()

	switch msg.String() {
	case "y", "Y", "enter":
	default:
		return nil
	}

	removed, err := m.Ctrl.Delete(id)
	switch {
	case err != nil:
		m.NotificationState.Add(state.LevelError, err.Error())
	case removed:
		m.FormState.Discard(id)
		m.NotificationState.Add(state.LevelInfo, fmt.Sprintf("Deleted row %s", id))
		m.UIState.ClampSelection(len(m.rendered()))
	}
	return nil
}

// ============================================================================
// HELP MODE
// ============================================================================

// handleHelpKey leaves the help screen.
func (m *Model) handleHelpKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case m.Config.KeyMappings.ShowHelp, m.Config.KeyMappings.Quit, "esc", "enter":
		m.UIState.SetMode(state.NormalMode)
	}
	return nil
}
