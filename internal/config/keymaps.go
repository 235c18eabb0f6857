package config

// KeyMappings defines all configurable key bindings
type KeyMappings struct {
	// Rows
	AddRow     string `yaml:"add_row"`
	EditRow    string `yaml:"edit_row"`
	DeleteRow  string `yaml:"delete_row"`
	CancelEdit string `yaml:"cancel_edit"`
	ViewRow    string `yaml:"view_row"`
	CopyID     string `yaml:"copy_id"`

	// Reordering
	GrabRow     string `yaml:"grab_row"`
	MoveRowUp   string `yaml:"move_row_up"`
	MoveRowDown string `yaml:"move_row_down"`

	// Forms
	SaveForm string `yaml:"save_form"`

	// Navigation
	PrevRow     string `yaml:"prev_row"`
	NextRow     string `yaml:"next_row"`
	CycleFilter string `yaml:"cycle_filter"`
	Reload      string `yaml:"reload"`

	// Other
	ShowHelp string `yaml:"show_help"`
	Quit     string `yaml:"quit"`
}

// DefaultKeyMappings returns the default key mappings
func DefaultKeyMappings() KeyMappings {
	return KeyMappings{
		AddRow:     "a",
		EditRow:    "e",
		DeleteRow:  "d",
		CancelEdit: "esc",
		ViewRow:    "space",
		CopyID:     "y",

		GrabRow:     "g",
		MoveRowUp:   "K",
		MoveRowDown: "J",

		SaveForm: "ctrl+s",

		PrevRow:     "k",
		NextRow:     "j",
		CycleFilter: "f",
		Reload:      "r",

		ShowHelp: "?",
		Quit:     "q",
	}
}

// applyDefaults fills in missing key mappings with defaults
func (k *KeyMappings) applyDefaults() {
	defaults := DefaultKeyMappings()

	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}

	fill(&k.AddRow, defaults.AddRow)
	fill(&k.EditRow, defaults.EditRow)
	fill(&k.DeleteRow, defaults.DeleteRow)
	fill(&k.CancelEdit, defaults.CancelEdit)
	fill(&k.ViewRow, defaults.ViewRow)
	fill(&k.CopyID, defaults.CopyID)
	fill(&k.GrabRow, defaults.GrabRow)
	fill(&k.MoveRowUp, defaults.MoveRowUp)
	fill(&k.MoveRowDown, defaults.MoveRowDown)
	fill(&k.SaveForm, defaults.SaveForm)
	fill(&k.PrevRow, defaults.PrevRow)
	fill(&k.NextRow, defaults.NextRow)
	fill(&k.CycleFilter, defaults.CycleFilter)
	fill(&k.Reload, defaults.Reload)
	fill(&k.ShowHelp, defaults.ShowHelp)
	fill(&k.Quit, defaults.Quit)
}
