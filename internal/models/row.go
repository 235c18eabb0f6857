package models

import "time"

// Row represents a single activity entry in the table
type Row struct {
	ID          string    `json:"id"`    // Opaque identifier, used as the reconciliation key
	Index       int       `json:"index"` // Logical position at creation time
	Title       string    `json:"title"`
	Description string    `json:"description"`
	State       State     `json:"state"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Children    []*Row    `json:"children,omitempty"` // Nested rows, never reordered
}

// Clone returns a deep copy of the row including its children
func (r *Row) Clone() *Row {
	if r == nil {
		return nil
	}
	c := *r
	if r.Children != nil {
		c.Children = make([]*Row, len(r.Children))
		for i, child := range r.Children {
			c.Children[i] = child.Clone()
		}
	}
	return &c
}

// Apply merges the non-nil values of f into the row
func (r *Row) Apply(f Fields) {
	if f.Title != nil {
		r.Title = *f.Title
	}
	if f.Description != nil {
		r.Description = *f.Description
	}
	if f.State != nil {
		r.State = *f.State
	}
	if f.CreatedAt != nil {
		r.CreatedAt = *f.CreatedAt
	}
}

// Fields carries the column values produced by an edit.
// Fields with pointers are optional - nil means don't update
type Fields struct {
	Title       *string
	Description *string
	State       *State
	CreatedAt   *time.Time
}

// Columns returns the names of the columns that carry a value
func (f Fields) Columns() []string {
	var cols []string
	if f.Title != nil {
		cols = append(cols, ColumnTitle)
	}
	if f.Description != nil {
		cols = append(cols, ColumnDescription)
	}
	if f.State != nil {
		cols = append(cols, ColumnState)
	}
	if f.CreatedAt != nil {
		cols = append(cols, ColumnCreatedAt)
	}
	return cols
}

// IsEmpty reports whether no column carries a value
func (f Fields) IsEmpty() bool {
	return len(f.Columns()) == 0
}

// LoadResult is the shape returned by the initial fetch
type LoadResult struct {
	Data    []*Row `json:"data"`
	Total   int    `json:"total"`
	Success bool   `json:"success"`
}

// Rules are the per-cell form rules for one column of one row
type Rules struct {
	Required bool
	Disabled bool
}
