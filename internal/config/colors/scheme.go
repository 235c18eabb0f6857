// Package colors holds the color presets of the table view
package colors

// ColorScheme defines all configurable color values
type ColorScheme struct {
	// Preset name ("default" or "monochrome")
	Preset string `yaml:"preset"`

	// Primary accent color (selected row, header, status bar)
	Accent string `yaml:"accent"`

	// Semantic colors
	Create string `yaml:"create"` // new row form
	Edit   string `yaml:"edit"`   // edit form
	Delete string `yaml:"delete"` // delete confirmation

	// Table colors
	Border     string `yaml:"border"`
	SelectedBg string `yaml:"selected_bg"`
	Dragging   string `yaml:"dragging"` // row currently grabbed for reordering
	Saving     string `yaml:"saving"`   // row whose save is pending

	// State badges
	Open   string `yaml:"open"`
	Closed string `yaml:"closed"`

	// Text colors
	Title  string `yaml:"title"`
	Subtle string `yaml:"subtle"`
	Normal string `yaml:"normal"`

	// Notification colors (foreground/background pairs)
	InfoFg    string `yaml:"info_fg"`
	InfoBg    string `yaml:"info_bg"`
	WarningFg string `yaml:"warning_fg"`
	WarningBg string `yaml:"warning_bg"`
	ErrorFg   string `yaml:"error_fg"`
	ErrorBg   string `yaml:"error_bg"`
}

// GetPreset returns a preset color scheme by name
func GetPreset(name string) *ColorScheme {
	if name == "monochrome" {
		return Monochrome()
	}
	return Default()
}

// ApplyDefaults fills in missing color values from the named preset
func (c *ColorScheme) ApplyDefaults() {
	preset := GetPreset(c.Preset)
	c.each(preset, func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	})
}

// MergeFrom overrides values with the non-empty values of other
func (c *ColorScheme) MergeFrom(other ColorScheme) {
	if other.Preset != "" {
		c.Preset = other.Preset
	}
	c.each(&other, func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	})
}

// each calls fn with every color field of c and the matching field of other
func (c *ColorScheme) each(other *ColorScheme, fn func(dst *string, src string)) {
	fn(&c.Accent, other.Accent)
	fn(&c.Create, other.Create)
	fn(&c.Edit, other.Edit)
	fn(&c.Delete, other.Delete)
	fn(&c.Border, other.Border)
	fn(&c.SelectedBg, other.SelectedBg)
	fn(&c.Dragging, other.Dragging)
	fn(&c.Saving, other.Saving)
	fn(&c.Open, other.Open)
	fn(&c.Closed, other.Closed)
	fn(&c.Title, other.Title)
	fn(&c.Subtle, other.Subtle)
	fn(&c.Normal, other.Normal)
	fn(&c.InfoFg, other.InfoFg)
	fn(&c.InfoBg, other.InfoBg)
	fn(&c.WarningFg, other.WarningFg)
	fn(&c.WarningBg, other.WarningBg)
	fn(&c.ErrorFg, other.ErrorFg)
	fn(&c.ErrorBg, other.ErrorBg)
}
