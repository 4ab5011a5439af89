package colors

// Wave returns the Kanagawa Wave color scheme (dark theme with blue/purple accents)
func Wave() *ColorScheme {
	return &ColorScheme{
		Preset: "wave",

		Accent: "#957FB8", // oniViolet

		Open: "#7E9CD8", // crystalBlue
		Done: "#98BB6C", // springGreen

		Border: "#54546D", // sumiInk4
		Link:   "#7AA89F", // waveAqua2

		Title:  "#7E9CD8",
		Subtle: "#727169", // fujiGray
		Normal: "#DCD7BA", // fujiWhite

		InfoFg:    "#658594", // dragonBlue
		WarningFg: "#FF9E3B", // roninYellow
		ErrorFg:   "#E82424", // samuraiRed
	}
}
