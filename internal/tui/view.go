package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/tui/state"
)

const (
	dragHandle     = "⠿"
	descPreviewLen = 32
)

var tableHeaders = []string{"", "ID", "Title", "Description", "State", "Created", ""}

// View renders the current state of the application.
func (m Model) View() tea.View {
	var view tea.View
	view.AltScreen = true

	// Wait for terminal size to be initialized
	if m.UIState.Width() == 0 {
		view.Content = "Loading..."
		return view
	}

	switch m.UIState.Mode() {
	case state.FormMode:
		view.Content = m.place(m.viewForm())
	case state.DeleteConfirmMode:
		view.Content = m.place(m.viewDeleteConfirm())
	case state.HelpMode:
		view.Content = m.place(m.viewHelp())
	default:
		view.Content = m.viewTable()
	}
	return view
}

// place centers a modal on the screen
func (m Model) place(content string) string {
	return lipgloss.Place(m.UIState.Width(), m.UIState.Height(), lipgloss.Center, lipgloss.Center, content)
}

// viewTable renders the header, the rows, the optional preview and the status bar
func (m Model) viewTable() string {
	rendered := m.dragPreview(m.rendered())

	parts := []string{
		m.styles.Title.Render("Activities"),
		m.renderTable(rendered),
	}

	if m.UIState.PreviewOpen() {
		if r := m.selectedRowIn(rendered); r != nil {
			parts = append(parts, RenderDescription(r.Description, max(m.UIState.Width()-4, 20)))
		}
	}

	parts = append(parts, m.viewStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) selectedRowIn(rows []*models.Row) *models.Row {
	sel := m.UIState.Selected()
	if sel < 0 || sel >= len(rows) {
		return nil
	}
	return rows[sel]
}

// renderTable renders rows with lipgloss/table; row styles follow selection,
// drag and save state
func (m Model) renderTable(rows []*models.Row) string {
	data := make([][]string, len(rows))
	rowStyles := make([]lipgloss.Style, len(rows))

	for i, r := range rows {
		data[i] = []string{
			dragHandle,
			r.ID,
			r.Title,
			truncate(firstLine(r.Description), descPreviewLen),
			r.State.Label(),
			formatDate(r),
			m.rowStatus(r),
		}
		rowStyles[i] = m.rowStyle(i, r)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(m.styles.Border).
		Headers(tableHeaders...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return m.styles.Header
			}
			if row < 0 || row >= len(rows) {
				return m.styles.Cell
			}
			style := rowStyles[row]
			if col == 4 && row != m.UIState.Selected() {
				style = style.Foreground(m.styles.state(rows[row].State).GetForeground())
			}
			return style
		})

	if len(rows) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, t.String(), m.styles.Subtle.Render("  No rows"))
	}
	return t.String()
}

// rowStyle picks the style of the rendered row at i
func (m Model) rowStyle(i int, r *models.Row) lipgloss.Style {
	switch {
	case i == m.UIState.Selected() && m.UIState.Mode() == state.DragMode:
		return m.styles.Dragging
	case i == m.UIState.Selected():
		return m.styles.Selected
	case m.Ctrl.IsSaving(r.ID):
		return m.styles.Saving
	case m.Ctrl.IsEditing(r.ID):
		return m.styles.Editing
	}
	return m.styles.Cell
}

// rowStatus is the text of the trailing status column
func (m Model) rowStatus(r *models.Row) string {
	switch {
	case m.Ctrl.IsSaving(r.ID):
		return "saving..."
	case m.Ctrl.IsEditing(r.ID):
		return "editing"
	}
	return ""
}

// viewStatusBar renders row count, filter and the latest notification
func (m Model) viewStatusBar() string {
	limit := "∞"
	if n := m.Ctrl.MaxLength(); n > 0 {
		limit = fmt.Sprint(n)
	}

	status := m.styles.StatusBar.Render(fmt.Sprintf(
		"%d/%s rows · filter: %s · %s help",
		m.Ctrl.Len(), limit, m.UIState.Filter().Label(), m.Config.KeyMappings.ShowHelp,
	))

	if n, ok := m.NotificationState.Last(); ok {
		status = lipgloss.JoinHorizontal(lipgloss.Top, status, "  ", m.styles.notification(n.Level).Render(n.Message))
	}
	return status
}

// viewForm renders the row form inside a modal box
func (m Model) viewForm() string {
	form := m.FormState.Form()
	if form == nil {
		return ""
	}

	title := "Edit activity " + m.FormState.RowID()
	box := m.styles.FormBox
	if m.FormState.Creating() {
		title = "New activity " + m.FormState.RowID()
		box = m.styles.CreateBox
	}

	hint := m.styles.Subtle.Render(fmt.Sprintf("%s save · %s cancel",
		m.Config.KeyMappings.SaveForm, m.Config.KeyMappings.CancelEdit))

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Title.Render(title),
		"",
		form.View(),
		"",
		hint,
	)

	if n, ok := m.NotificationState.Last(); ok && n.Level == state.LevelError {
		content = lipgloss.JoinVertical(lipgloss.Left, content, m.styles.Error.Render(n.Message))
	}

	return box.Width(min(max(m.UIState.Width()*3/4, 40), 100)).Render(content)
}

// viewDeleteConfirm renders the delete confirmation
func (m Model) viewDeleteConfirm() string {
	id := m.UIState.PendingDelete()
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Title.Render("Delete row"),
		"",
		fmt.Sprintf("Delete every row with id %s?", id),
		"",
		m.styles.Subtle.Render("y/enter: delete · any other key: cancel"),
	)
	return m.styles.DeleteBox.Render(content)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}

func formatDate(r *models.Row) string {
	if r.CreatedAt.IsZero() {
		return ""
	}
	return r.CreatedAt.Format(models.DateLayout)
}
