package models

// ============================================================================
// COLUMN NAMES
// ============================================================================

// Column identifiers used by rule providers and forms
const (
	ColumnSort        = "sort"
	ColumnTitle       = "title"
	ColumnState       = "state"
	ColumnDescription = "description"
	ColumnCreatedAt   = "created_at"
	ColumnOption      = "option"
)

// EditableColumns lists the columns a form can change, in display order
var EditableColumns = []string{ColumnTitle, ColumnState, ColumnDescription, ColumnCreatedAt}

// ============================================================================
// TABLE DEFAULTS
// ============================================================================

// DefaultMaxLength is the default upper bound on the number of rows
const DefaultMaxLength = 5

// MaxTitleLength is the longest title accepted by the service layer
const MaxTitleLength = 255

// DateLayout is the layout used to display and parse the created_at column
const DateLayout = "2006-01-02"
