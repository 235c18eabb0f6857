package tui

import (
	"fmt"
	"strings"
)

// viewHelp renders the key binding reference
func (m Model) viewHelp() string {
	km := m.Config.KeyMappings

	sections := []struct {
		title    string
		bindings [][2]string
	}{
		{"Rows", [][2]string{
			{km.AddRow, "add a row"},
			{km.EditRow, "edit the selected row"},
			{km.DeleteRow, "delete every row with the selected id"},
			{km.ViewRow, "toggle description preview"},
			{km.CopyID, "copy id to clipboard"},
		}},
		{"Ordering", [][2]string{
			{km.GrabRow, "grab row, then move and press enter to drop"},
			{km.MoveRowUp, "move row up"},
			{km.MoveRowDown, "move row down"},
		}},
		{"Forms", [][2]string{
			{km.SaveForm, "save"},
			{km.CancelEdit, "cancel edit"},
		}},
		{"Navigation", [][2]string{
			{km.PrevRow, "previous row"},
			{km.NextRow, "next row"},
			{km.CycleFilter, "cycle state filter"},
			{km.Reload, "reload rows"},
			{km.Quit, "quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Key bindings"))
	b.WriteString("\n")
	for _, s := range sections {
		b.WriteString("\n")
		b.WriteString(m.styles.Header.Render(s.title))
		b.WriteString("\n")
		for _, kb := range s.bindings {
			fmt.Fprintf(&b, "  %-8s %s\n", kb[0], kb[1])
		}
	}

	return m.styles.HelpBox.Render(strings.TrimRight(b.String(), "\n"))
}
