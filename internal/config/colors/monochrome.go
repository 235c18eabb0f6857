package colors

// Monochrome returns a black and white color scheme
func Monochrome() *ColorScheme {
	return &ColorScheme{
		Preset: "monochrome",

		Accent: "#FFFFFF",

		Create: "#FFFFFF",
		Edit:   "#FFFFFF",
		Delete: "#FFFFFF",

		Border:     "#808080",
		SelectedBg: "#303030",
		Dragging:   "#FFFFFF",
		Saving:     "#808080",

		Open:   "#FFFFFF",
		Closed: "#808080",

		Title:  "#FFFFFF",
		Subtle: "#808080",
		Normal: "#D0D0D0",

		InfoFg:    "#FFFFFF",
		InfoBg:    "#303030",
		WarningFg: "#FFFFFF",
		WarningBg: "#505050",
		ErrorFg:   "#FFFFFF",
		ErrorBg:   "#000000",
	}
}
