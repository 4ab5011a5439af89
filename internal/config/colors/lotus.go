package colors

// Lotus returns the Kanagawa Lotus color scheme (light theme with cream/paper background)
func Lotus() *ColorScheme {
	return &ColorScheme{
		Preset: "lotus",

		Accent: "#624C83", // lotusViolet4

		Open: "#4D699B", // lotusBlue4
		Done: "#6F894E", // lotusGreen

		Border: "#C7D7E0", // lotusWhite4
		Link:   "#597B75", // lotusAqua

		Title:  "#4D699B",
		Subtle: "#8A8980", // lotusGray3
		Normal: "#545464", // lotusInk1

		InfoFg:    "#5A7785", // lotusTeal3
		WarningFg: "#E98A00", // lotusOrange2
		ErrorFg:   "#C84053", // lotusRed
	}
}
