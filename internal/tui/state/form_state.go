package state

import (
	"time"

	"charm.land/huh/v2"
	"github.com/thenoetrevino/tablero/internal/models"
)

// FormValues holds the values bound to the row form fields.
type FormValues struct {
	Title       string
	Description string
	State       string
	CreatedAt   string // models.DateLayout, empty means unset
}

// ValuesFrom copies the editable columns of r into form values.
func ValuesFrom(r *models.Row) FormValues {
	v := FormValues{
		Title:       r.Title,
		Description: r.Description,
		State:       string(r.State),
	}
	if !r.CreatedAt.IsZero() {
		v.CreatedAt = r.CreatedAt.Format(models.DateLayout)
	}
	return v
}

// Row returns a row carrying the form values, used to evaluate rules
// against what the form currently holds.
func (v FormValues) Row(id string) *models.Row {
	r := &models.Row{
		ID:          id,
		Title:       v.Title,
		Description: v.Description,
		State:       models.State(v.State),
	}
	if t, err := time.Parse(models.DateLayout, v.CreatedAt); err == nil {
		r.CreatedAt = t
	}
	return r
}

// HeldEdit is a submitted form kept until its save settles, so a failed
// save can reopen the form with what the user typed.
type HeldEdit struct {
	Creating bool
	Values   FormValues
	Initial  FormValues
}

// FormState manages the row form.
type FormState struct {
	form     *huh.Form
	rowID    string
	creating bool
	values   *FormValues
	initial  FormValues

	// held survives Reset; keyed by row id
	held map[string]HeldEdit
}

// NewFormState creates an empty FormState.
func NewFormState() *FormState {
	return &FormState{values: &FormValues{}, held: map[string]HeldEdit{}}
}

// Open starts a form session for rowID with the given values.
// The returned pointer is what the huh fields bind to.
func (s *FormState) Open(rowID string, creating bool, values FormValues) *FormValues {
	s.rowID = rowID
	s.creating = creating
	s.initial = values
	s.values = &values
	return s.values
}

// Reopen starts a form session from a held edit. The form shows the held
// values while changes are still measured against the values first opened.
func (s *FormState) Reopen(rowID string, held HeldEdit) *FormValues {
	s.Open(rowID, held.Creating, held.Values)
	s.initial = held.Initial
	return s.values
}

// Hold keeps the current session's values for its row until Release or Discard.
func (s *FormState) Hold() {
	if s.rowID == "" {
		return
	}
	s.held[s.rowID] = HeldEdit{Creating: s.creating, Values: *s.values, Initial: s.initial}
}

// Release removes and returns the held edit for rowID.
func (s *FormState) Release(rowID string) (HeldEdit, bool) {
	held, ok := s.held[rowID]
	delete(s.held, rowID)
	return held, ok
}

// Discard drops the held edit for rowID, if any.
func (s *FormState) Discard(rowID string) {
	delete(s.held, rowID)
}

// HeldIDs returns the ids of rows with a held edit.
func (s *FormState) HeldIDs() []string {
	ids := make([]string, 0, len(s.held))
	for id := range s.held {
		ids = append(ids, id)
	}
	return ids
}

// SetForm stores the huh form instance.
func (s *FormState) SetForm(form *huh.Form) {
	s.form = form
}

// Form returns the huh form instance, nil when no form is open.
func (s *FormState) Form() *huh.Form {
	return s.form
}

// RowID returns the id of the row being edited.
func (s *FormState) RowID() string {
	return s.rowID
}

// Creating reports whether the form edits a freshly created row.
func (s *FormState) Creating() bool {
	return s.creating
}

// Values returns the current form values.
func (s *FormState) Values() *FormValues {
	return s.values
}

// Initial returns the values the form was opened with.
func (s *FormState) Initial() FormValues {
	return s.initial
}

// Reset clears the form session.
func (s *FormState) Reset() {
	s.form = nil
	s.rowID = ""
	s.creating = false
	s.values = &FormValues{}
	s.initial = FormValues{}
}
