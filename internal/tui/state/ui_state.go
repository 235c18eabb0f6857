package state

import "github.com/thenoetrevino/tablero/internal/models"

// Mode represents the current interaction mode of the TUI.
// Each mode determines which keyboard shortcuts are active and what UI is displayed.
type Mode int

const (
	NormalMode        Mode = iota // Default navigation mode
	FormMode                      // Creating or editing a row with huh
	DragMode                      // A row is grabbed and follows the cursor
	DeleteConfirmMode             // Confirming row deletion
	HelpMode                      // Displaying help screen
)

// filterCycle is the order CycleFilter walks through
var filterCycle = []models.State{models.StateAll, models.StateOpen, models.StateClosed}

// UIState manages the user interface state.
// This includes row selection, the state filter, terminal dimensions,
// and the current interaction mode.
type UIState struct {
	// selected is the index of the selected row in the rendered (filtered) rows
	selected int

	width  int
	height int

	mode Mode

	// filter limits the rendered rows to one state; StateAll shows every row
	filter models.State

	// preview shows the description of the selected row rendered as markdown
	preview bool

	// dragRow is the grabbed row; it is found again by identity on every use
	dragRow *models.Row

	// pendingDelete is the id awaiting delete confirmation
	pendingDelete string
}

// NewUIState creates a new UIState with default values.
func NewUIState() *UIState {
	return &UIState{
		mode:   NormalMode,
		filter: models.StateAll,
	}
}

// Selected returns the index of the selected rendered row.
func (s *UIState) Selected() int {
	return s.selected
}

// SetSelected updates the selected row index.
func (s *UIState) SetSelected(index int) {
	s.selected = index
}

// MoveSelection moves the selection by delta, staying within [0, n).
// It reports whether the selection changed.
func (s *UIState) MoveSelection(delta, n int) bool {
	next := s.selected + delta
	if next < 0 || next >= n {
		return false
	}
	s.selected = next
	return true
}

// ClampSelection keeps the selection inside a list of n rows.
func (s *UIState) ClampSelection(n int) {
	if s.selected >= n {
		s.selected = n - 1
	}
	if s.selected < 0 {
		s.selected = 0
	}
}

// Width returns the current terminal width.
func (s *UIState) Width() int {
	return s.width
}

// Height returns the current terminal height.
func (s *UIState) Height() int {
	return s.height
}

// SetSize updates the terminal dimensions.
func (s *UIState) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// Mode returns the current interaction mode.
func (s *UIState) Mode() Mode {
	return s.mode
}

// SetMode updates the current interaction mode.
func (s *UIState) SetMode(mode Mode) {
	s.mode = mode
}

// Filter returns the active state filter.
func (s *UIState) Filter() models.State {
	return s.filter
}

// SetFilter sets the active state filter.
func (s *UIState) SetFilter(filter models.State) {
	s.filter = filter
}

// CycleFilter advances to the next state filter and returns it.
func (s *UIState) CycleFilter() models.State {
	next := filterCycle[0]
	for i, f := range filterCycle {
		if f == s.filter {
			next = filterCycle[(i+1)%len(filterCycle)]
			break
		}
	}
	s.filter = next
	return next
}

// Visible reports whether a row passes the active filter.
func (s *UIState) Visible(r *models.Row) bool {
	return s.filter == models.StateAll || s.filter == "" || r.State == s.filter
}

// PreviewOpen reports whether the description preview is shown.
func (s *UIState) PreviewOpen() bool {
	return s.preview
}

// TogglePreview shows or hides the description preview.
func (s *UIState) TogglePreview() {
	s.preview = !s.preview
}

// DragRow returns the grabbed row, nil when nothing is grabbed.
func (s *UIState) DragRow() *models.Row {
	return s.dragRow
}

// StartDrag grabs row.
func (s *UIState) StartDrag(row *models.Row) {
	s.dragRow = row
	s.mode = DragMode
}

// EndDrag releases the grabbed row and returns to normal mode.
func (s *UIState) EndDrag() {
	s.dragRow = nil
	s.mode = NormalMode
}

// PendingDelete returns the id awaiting delete confirmation.
func (s *UIState) PendingDelete() string {
	return s.pendingDelete
}

// ConfirmDelete asks for confirmation before deleting id.
func (s *UIState) ConfirmDelete(id string) {
	s.pendingDelete = id
	s.mode = DeleteConfirmMode
}

// ClearDelete leaves delete confirmation.
func (s *UIState) ClearDelete() {
	s.pendingDelete = ""
	s.mode = NormalMode
}
