package models

import "time"

// DefaultRows returns the rows the table is seeded with on first start.
// The last two rows intentionally share an id.
func DefaultRows() []*Row {
	first := time.Date(2020, 5, 26, 9, 42, 56, 0, time.UTC)
	second := time.Date(2020, 5, 26, 8, 19, 22, 0, time.UTC)

	return []*Row{
		{
			ID:          "624748504",
			Index:       0,
			Title:       "Activity one",
			Description: "This activity is great fun",
			State:       StateOpen,
			CreatedAt:   first,
			UpdatedAt:   first,
		},
		{
			ID:          "624691229",
			Index:       1,
			Title:       "Activity two",
			Description: "This activity is great fun",
			State:       StateClosed,
			CreatedAt:   second,
			UpdatedAt:   second,
		},
		{
			ID:          "624691229",
			Index:       2,
			Title:       "Activity three",
			Description: "This activity is great fun",
			State:       StateClosed,
			CreatedAt:   second,
			UpdatedAt:   second,
		},
	}
}
