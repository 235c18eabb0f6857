package tui

import (
	tea "charm.land/bubbletea/v2"
	"github.com/thenoetrevino/tablero/internal/collection"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/tui/state"
)

// ============================================================================
// DRAG MODE
// ============================================================================

// The grabbed row follows the cursor and is dropped with enter or the grab key.
// It is held by identity, so rows reloaded from another process while the
// drag is open never change which row moves.

// handleGrabRow grabs the selected row
func (m *Model) handleGrabRow() {
	selected := m.selectedRow()
	if selected == nil {
		return
	}
	m.UIState.StartDrag(selected)
	m.NotificationState.Add(state.LevelInfo, "Moving row: j/k to choose a place, enter to drop, esc to cancel")
}

// handleDragKey moves the drop target or ends the drag
func (m *Model) handleDragKey(msg tea.KeyPressMsg) tea.Cmd {
	km := m.Config.KeyMappings
	n := len(m.rendered())

	switch msg.String() {
	case km.PrevRow, km.MoveRowUp, "up":
		m.UIState.MoveSelection(-1, n)
	case km.NextRow, km.MoveRowDown, "down":
		m.UIState.MoveSelection(1, n)
	case "enter", km.GrabRow:
		m.drop()
	case km.CancelEdit, "esc":
		if pos := m.Ctrl.Locate(m.rendered(), m.UIState.DragRow()); pos >= 0 {
			m.UIState.SetSelected(pos)
		}
		m.UIState.EndDrag()
		m.NotificationState.Clear()
	case "ctrl+c":
		return tea.Quit
	}
	return nil
}

// drop moves the grabbed row to the place of the row under the cursor
func (m *Model) drop() {
	grabbed := m.UIState.DragRow()
	rendered := m.rendered()
	to := m.UIState.Selected()
	m.UIState.EndDrag()
	m.NotificationState.Clear()

	if m.Ctrl.ResolveOffset(grabbed) < 0 {
		m.NotificationState.Add(state.LevelWarning, "The grabbed row was removed")
		return
	}
	if to < 0 || to >= len(rendered) {
		return
	}
	if err := m.Ctrl.ReorderRow(grabbed, rendered[to]); err != nil {
		m.NotificationState.Add(state.LevelError, err.Error())
	}
}

// dragPreview returns the rendered rows as they would look after dropping here
func (m Model) dragPreview(rendered []*models.Row) []*models.Row {
	if m.UIState.Mode() != state.DragMode {
		return rendered
	}
	from := m.Ctrl.Locate(rendered, m.UIState.DragRow())
	if from < 0 {
		return rendered
	}
	return collection.Move(rendered, from, m.UIState.Selected())
}
