package collection

import "github.com/thenoetrevino/tablero/internal/models"

// RuleProvider supplies per-cell form rules and editability.
// rowIndex is the row's current display position; row carries the values
// the form currently holds for that row.
type RuleProvider interface {
	RulesFor(column string, rowIndex int, row *models.Row) models.Rules
	Editable(column string, rowIndex int, row *models.Row) bool
}

// BoringTitle is the title that disables the description column under DefaultRules
const BoringTitle = "boring"

// DefaultRules are the rules the activity table ships with:
//   - title is required from the fourth row on and cannot be edited on the first row
//   - description is disabled when the title reads BoringTitle or past the tenth row
type DefaultRules struct{}

// RulesFor returns the required/disabled flags for one cell
func (DefaultRules) RulesFor(column string, rowIndex int, row *models.Row) models.Rules {
	switch column {
	case models.ColumnTitle:
		return models.Rules{Required: rowIndex > 2}
	case models.ColumnDescription:
		if row != nil && row.Title == BoringTitle {
			return models.Rules{Disabled: true}
		}
		return models.Rules{Disabled: rowIndex > 9}
	}
	return models.Rules{}
}

// Editable reports whether the column can be changed for the row at rowIndex
func (DefaultRules) Editable(column string, rowIndex int, _ *models.Row) bool {
	switch column {
	case models.ColumnSort, models.ColumnOption:
		return false
	case models.ColumnTitle:
		return rowIndex != 0
	}
	return true
}

// OpenRules allows every column on every row and requires nothing
type OpenRules struct{}

// RulesFor always returns the zero Rules
func (OpenRules) RulesFor(string, int, *models.Row) models.Rules { return models.Rules{} }

// Editable reports true for every data column
func (OpenRules) Editable(column string, _ int, _ *models.Row) bool {
	return column != models.ColumnSort && column != models.ColumnOption
}

// rowEditable reports whether at least one data column of the row is editable
func rowEditable(rules RuleProvider, rowIndex int, row *models.Row) bool {
	for _, col := range models.EditableColumns {
		if rules.Editable(col, rowIndex, row) {
			return true
		}
	}
	return false
}
