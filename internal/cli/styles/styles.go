// Package styles holds the lipgloss styles of the human readable CLI output
package styles

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/thenoetrevino/tablero/internal/config/colors"
	"github.com/thenoetrevino/tablero/internal/models"
)

var (
	// Card styles
	CardStyle lipgloss.Style
	CardWidth = 72

	// Text styles
	TitleStyle    lipgloss.Style
	SubtitleStyle lipgloss.Style
	LabelStyle    lipgloss.Style // For field labels like "State:", "Created:"
	ValueStyle    lipgloss.Style // For field values
	SectionStyle  lipgloss.Style // For section headers like "Description"

	// Table styles
	HeaderStyle lipgloss.Style
	CellStyle   lipgloss.Style
	BorderStyle lipgloss.Style

	// State badges
	OpenStyle   lipgloss.Style
	ClosedStyle lipgloss.Style

	// Status styles
	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
)

func init() {
	Init(*colors.Default())
}

// Init initializes all CLI styles with the given color scheme
func Init(cs colors.ColorScheme) {
	cs.ApplyDefaults()

	CardStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(cs.Accent)).
		Padding(1, 2).
		Width(CardWidth)

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(cs.Title))

	SubtitleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(cs.Subtle))

	LabelStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(cs.Accent))

	ValueStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(cs.Normal))

	SectionStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(cs.Accent)).
		Bold(true).
		MarginTop(1)

	HeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(cs.Accent)).Bold(true).Padding(0, 1)
	CellStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(cs.Normal)).Padding(0, 1)
	BorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(cs.Border))

	OpenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(cs.Open))
	ClosedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(cs.Closed))

	SuccessStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(cs.InfoFg))

	ErrorStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(cs.ErrorFg))

	WarningStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(cs.WarningFg))
}

// StateBadge renders the label of a state in its color
func StateBadge(s models.State) string {
	switch s {
	case models.StateOpen:
		return OpenStyle.Render(s.Label())
	case models.StateClosed:
		return ClosedStyle.Render(s.Label())
	}
	return ValueStyle.Render(s.Label())
}

// RenderRow renders a single row as a card
func RenderRow(r *models.Row) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(orPlaceholder(r.Title, "(untitled)")))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render("ID " + r.ID))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("State:"), StateBadge(r.State))
	fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("Created:"), ValueStyle.Render(formatDate(r)))
	fmt.Fprintf(&b, "%s %s", LabelStyle.Render("Index:"), ValueStyle.Render(strconv.Itoa(r.Index)))

	if r.Description != "" {
		b.WriteString("\n")
		b.WriteString(SectionStyle.Render("Description"))
		b.WriteString("\n")
		b.WriteString(ValueStyle.Render(r.Description))
	}

	return CardStyle.Render(b.String())
}

// RenderTable renders rows as a table numbered by position, starting at 1
func RenderTable(rows []*models.Row) string {
	if len(rows) == 0 {
		return SubtitleStyle.Render("No rows")
	}

	data := make([][]string, len(rows))
	for i, r := range rows {
		data[i] = []string{
			strconv.Itoa(i + 1),
			r.ID,
			orPlaceholder(r.Title, "-"),
			r.State.Label(),
			formatDate(r),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(BorderStyle).
		Headers("#", "ID", "Title", "State", "Created").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderStyle
			}
			if col == 3 && row >= 0 && row < len(rows) {
				switch rows[row].State {
				case models.StateOpen:
					return CellStyle.Foreground(OpenStyle.GetForeground())
				case models.StateClosed:
					return CellStyle.Foreground(ClosedStyle.GetForeground())
				}
			}
			return CellStyle
		})

	return t.String()
}

func formatDate(r *models.Row) string {
	if r.CreatedAt.IsZero() {
		return "-"
	}
	return r.CreatedAt.Format(models.DateLayout)
}

func orPlaceholder(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}
