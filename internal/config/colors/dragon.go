package colors

// Dragon returns the Kanagawa Dragon color scheme (dark theme with warm earth tones)
func Dragon() *ColorScheme {
	return &ColorScheme{
		Preset: "dragon",

		Accent: "#8992A7", // dragonViolet

		Open: "#8BA4B0", // dragonBlue2
		Done: "#8A9A7B", // dragonGreen2

		Border: "#393836", // dragonBlack4
		Link:   "#8EA4A2", // dragonAqua

		Title:  "#8BA4B0",
		Subtle: "#737C73", // dragonAsh
		Normal: "#C5C9C5", // dragonWhite

		InfoFg:    "#658594",
		WarningFg: "#FF9E3B",
		ErrorFg:   "#C4746E", // dragonRed
	}
}
