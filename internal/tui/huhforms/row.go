package huhforms

import (
	"charm.land/huh/v2"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/tui/state"
)

// RulesFunc evaluates the rules of one column against the values the form
// currently holds. editable=false renders the column read-only.
type RulesFunc func(column string, current *models.Row) (editable bool, rules models.Rules)

// StateOptions returns the select options of the state column
func StateOptions() []huh.Option[string] {
	options := make([]huh.Option[string], 0, len(models.States))
	for _, s := range models.States {
		options = append(options, huh.NewOption(s.Label(), string(s)))
	}
	return options
}

// CreateRowForm creates a huh form editing the data columns of one row.
// Fields bind to values, so the form updates them in place. Required and
// disabled rules are evaluated against the live values: typing the boring
// title hides the description group.
func CreateRowForm(rowID string, values *state.FormValues, rules RulesFunc, descriptionLines int) *huh.Form {
	current := func() *models.Row { return values.Row(rowID) }
	ruleOf := func(column string) models.Rules {
		_, r := rules(column, current())
		return r
	}
	editable := func(column string) bool {
		ok, _ := rules(column, current())
		return ok
	}

	var groups []*huh.Group

	if editable(models.ColumnTitle) {
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Key(models.ColumnTitle).
				Title("Title").
				Placeholder("Enter activity title...").
				CharLimit(models.MaxTitleLength).
				Validate(ValidateTitle(func() bool { return ruleOf(models.ColumnTitle).Required })).
				Value(&values.Title),
		))
	} else {
		groups = append(groups, huh.NewGroup(
			huh.NewNote().
				Title("Title").
				Description(values.Title+" (read-only)"),
		))
	}

	if editable(models.ColumnDescription) {
		groups = append(groups, huh.NewGroup(
			huh.NewText().
				Key(models.ColumnDescription).
				Title("Description").
				Placeholder("Markdown is rendered in the preview").
				CharLimit(5000).
				Lines(descriptionLines).
				Value(&values.Description),
		).WithHideFunc(func() bool {
			return ruleOf(models.ColumnDescription).Disabled
		}))
	}

	var tail []huh.Field
	if editable(models.ColumnState) {
		tail = append(tail,
			huh.NewSelect[string]().
				Key(models.ColumnState).
				Title("State").
				Options(StateOptions()...).
				Value(&values.State),
		)
	}
	if editable(models.ColumnCreatedAt) {
		tail = append(tail,
			huh.NewInput().
				Key(models.ColumnCreatedAt).
				Title("Created").
				Placeholder(models.DateLayout).
				Validate(ValidateDate).
				Value(&values.CreatedAt),
		)
	}
	if len(tail) > 0 {
		groups = append(groups, huh.NewGroup(tail...))
	}

	form := huh.NewForm(groups...)
	return form.WithKeyMap(CreateKeyMap()).WithShowHelp(false)
}
