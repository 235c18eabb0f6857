package tui

import (
	"charm.land/lipgloss/v2"
	"github.com/thenoetrevino/tablero/internal/config/colors"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/tui/state"
)

// Styles holds every style of the table view, built once from the color scheme
type Styles struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Cell     lipgloss.Style
	Selected lipgloss.Style
	Dragging lipgloss.Style
	Saving   lipgloss.Style
	Editing  lipgloss.Style
	Subtle   lipgloss.Style
	Border   lipgloss.Style

	Open   lipgloss.Style
	Closed lipgloss.Style

	// Modal boxes
	FormBox   lipgloss.Style
	CreateBox lipgloss.Style
	DeleteBox lipgloss.Style
	HelpBox   lipgloss.Style

	// Notification banners
	Info    lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	StatusBar lipgloss.Style
}

// NewStyles builds the styles for a color scheme
func NewStyles(cs colors.ColorScheme) Styles {
	cs.ApplyDefaults()

	box := func(color string) lipgloss.Style {
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(color)).
			Padding(1, 2)
	}
	banner := func(fg, bg string) lipgloss.Style {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color(fg)).
			Background(lipgloss.Color(bg)).
			Padding(0, 1)
	}

	return Styles{
		Title:    lipgloss.NewStyle().Foreground(lipgloss.Color(cs.Title)).Bold(true),
		Header:   lipgloss.NewStyle().Foreground(lipgloss.Color(cs.Accent)).Bold(true).Padding(0, 1),
		Cell:     lipgloss.NewStyle().Foreground(lipgloss.Color(cs.Normal)).Padding(0, 1),
		Selected: lipgloss.NewStyle().Foreground(lipgloss.Color(cs.Normal)).Background(lipgloss.Color(cs.SelectedBg)).Bold(true).Padding(0, 1),
		Dragging: lipgloss.NewStyle().Foreground(lipgloss.Color(cs.Dragging)).Background(lipgloss.Color(cs.SelectedBg)).Bold(true).Padding(0, 1),
		Saving:   lipgloss.NewStyle().Foreground(lipgloss.Color(cs.Saving)).Italic(true).Padding(0, 1),
		Editing:  lipgloss.NewStyle().Foreground(lipgloss.Color(cs.Edit)).Padding(0, 1),
		Subtle:   lipgloss.NewStyle().Foreground(lipgloss.Color(cs.Subtle)),
		Border:   lipgloss.NewStyle().Foreground(lipgloss.Color(cs.Border)),

		Open:   lipgloss.NewStyle().Foreground(lipgloss.Color(cs.Open)),
		Closed: lipgloss.NewStyle().Foreground(lipgloss.Color(cs.Closed)),

		FormBox:   box(cs.Edit),
		CreateBox: box(cs.Create),
		DeleteBox: box(cs.Delete),
		HelpBox:   box(cs.Accent),

		Info:    banner(cs.InfoFg, cs.InfoBg),
		Warning: banner(cs.WarningFg, cs.WarningBg),
		Error:   banner(cs.ErrorFg, cs.ErrorBg),

		StatusBar: lipgloss.NewStyle().Foreground(lipgloss.Color(cs.Subtle)),
	}
}

// state returns the badge style of a row state
func (s Styles) state(st models.State) lipgloss.Style {
	if st == models.StateClosed {
		return s.Closed
	}
	return s.Open
}

// notification returns the banner style of a level
func (s Styles) notification(level state.NotificationLevel) lipgloss.Style {
	switch level {
	case state.LevelWarning:
		return s.Warning
	case state.LevelError:
		return s.Error
	}
	return s.Info
}
