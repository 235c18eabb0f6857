package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/huh/v2"
	"github.com/thenoetrevino/tablero/internal/collection"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/tui/huhforms"
	"github.com/thenoetrevino/tablero/internal/tui/state"
)

// ============================================================================
// FORM MODE
// ============================================================================

const descriptionLines = 4

// openForm builds the huh form for a row that is already in edit mode.
// A held edit from a save that did not go through is reopened as typed.
// Rules are evaluated at the row's current position against the live form values.
func (m *Model) openForm(id string, creating bool) tea.Cmd {
	offset := m.rowOffset(id)
	if offset < 0 {
		m.FormState.Discard(id)
		return nil
	}

	var values *state.FormValues
	if held, ok := m.FormState.Release(id); ok {
		values = m.FormState.Reopen(id, held)
		creating = held.Creating
	} else {
		values = m.FormState.Open(id, creating, state.ValuesFrom(m.Ctrl.Rows()[offset]))
	}

	form := huhforms.CreateRowForm(id, values, m.rulesFor(id), descriptionLines).
		WithTheme(huhforms.CreateTableroTheme(m.Config.ColorScheme, creating))
	m.FormState.SetForm(form)
	m.UIState.SetMode(state.FormMode)

	return form.Init()
}

// rulesFor returns the rule lookup for the row with id. The row's offset is
// looked up on every call, so a reload that shifts the row is honored.
func (m *Model) rulesFor(id string) huhforms.RulesFunc {
	ctrl := m.Ctrl
	return func(column string, current *models.Row) (bool, models.Rules) {
		offset := ctrl.OffsetOfID(id)
		return ctrl.Editable(column, offset, current), ctrl.RulesFor(column, offset, current)
	}
}

// handleFormKey intercepts save and cancel; everything else goes to huh
func (m *Model) handleFormKey(msg tea.KeyPressMsg) tea.Cmd {
	km := m.Config.KeyMappings
	switch msg.String() {
	case km.SaveForm:
		return m.submitForm()
	case km.CancelEdit, "esc":
		return m.cancelForm()
	}
	return m.updateForm(msg)
}

// updateForm forwards a message to the form and reacts to completion
func (m *Model) updateForm(msg tea.Msg) tea.Cmd {
	form := m.FormState.Form()
	if form == nil {
		m.UIState.SetMode(state.NormalMode)
		return nil
	}

	model, cmd := form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		m.FormState.SetForm(f)
		form = f
	}

	switch form.State {
	case huh.StateCompleted:
		return tea.Batch(cmd, m.submitForm())
	case huh.StateAborted:
		return tea.Batch(cmd, m.cancelForm())
	}
	return cmd
}

// submitForm validates the form values and starts an asynchronous save.
// Invalid values keep the form open.
func (m *Model) submitForm() tea.Cmd {
	id := m.FormState.RowID()
	offset := m.rowOffset(id)
	if offset < 0 {
		m.closeForm()
		m.NotificationState.Add(state.LevelWarning, "The row being edited was removed")
		return nil
	}

	fields, err := formFields(m.rulesFor(id), id, m.FormState)
	if err != nil {
		m.NotificationState.Clear()
		m.NotificationState.Add(state.LevelError, err.Error())
		return nil
	}

	m.FormState.Hold()
	m.closeForm()
	m.NotificationState.Clear()
	m.NotificationState.Add(state.LevelInfo, "Saving...")
	return saveCmd(m.Ctx, m.Ctrl, id, fields)
}

// cancelForm leaves edit mode; a created row that was never saved is removed
func (m *Model) cancelForm() tea.Cmd {
	id := m.FormState.RowID()
	m.closeForm()
	m.FormState.Discard(id)

	if err := m.Ctrl.CancelEdit(id); err != nil && !errors.Is(err, collection.ErrClosed) {
		m.NotificationState.Add(state.LevelError, err.Error())
		return nil
	}
	m.UIState.ClampSelection(len(m.rendered()))
	return nil
}

func (m *Model) closeForm() {
	m.FormState.Reset()
	m.UIState.SetMode(state.NormalMode)
}

// formFields turns the form values into the fields to commit. Only editable,
// enabled columns are submitted; an edit sends the columns that changed, a
// created row sends every column that holds a value.
func formFields(rules huhforms.RulesFunc, id string, fs *state.FormState) (models.Fields, error) {
	values := *fs.Values()
	initial := fs.Initial()
	current := values.Row(id)

	include := func(column, value, before string) bool {
		editable, r := rules(column, current)
		if !editable || r.Disabled {
			return false
		}
		if fs.Creating() {
			return value != ""
		}
		return value != before
	}

	var fields models.Fields

	_, titleRules := rules(models.ColumnTitle, current)
	if editable, _ := rules(models.ColumnTitle, current); editable {
		if err := huhforms.ValidateTitle(func() bool { return titleRules.Required })(values.Title); err != nil {
			return fields, err
		}
	}
	if include(models.ColumnTitle, values.Title, initial.Title) {
		fields.Title = &values.Title
	}

	if include(models.ColumnDescription, values.Description, initial.Description) {
		fields.Description = &values.Description
	}

	if include(models.ColumnState, values.State, initial.State) {
		if err := huhforms.ValidateState(values.State); err != nil {
			return fields, err
		}
		st := models.State(values.State)
		fields.State = &st
	}

	createdAt := strings.TrimSpace(values.CreatedAt)
	if include(models.ColumnCreatedAt, createdAt, initial.CreatedAt) && createdAt != "" {
		t, err := time.Parse(models.DateLayout, createdAt)
		if err != nil {
			return fields, fmt.Errorf("%s: %w", models.ColumnCreatedAt, huhforms.ErrInvalidDate)
		}
		fields.CreatedAt = &t
	}

	return fields, nil
}
