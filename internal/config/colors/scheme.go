package colors

// ColorScheme defines all configurable color values
type ColorScheme struct {
	// Preset name (e.g., "default", "monochrome")
	Preset string `yaml:"preset" validate:"omitempty,oneof=default monochrome wave dragon lotus"`

	// Primary accent color (used for headers and task ids)
	Accent string `yaml:"accent" validate:"omitempty,hexcolor"`

	// Status chips
	Open string `yaml:"open" validate:"omitempty,hexcolor"`
	Done string `yaml:"done" validate:"omitempty,hexcolor"`

	// Card border and link text
	Border string `yaml:"border" validate:"omitempty,hexcolor"`
	Link   string `yaml:"link" validate:"omitempty,hexcolor"`

	// Text colors
	Title  string `yaml:"title" validate:"omitempty,hexcolor"`
	Subtle string `yaml:"subtle" validate:"omitempty,hexcolor"` // Muted/placeholder text
	Normal string `yaml:"normal" validate:"omitempty,hexcolor"`

	// Message colors
	InfoFg    string `yaml:"info_fg" validate:"omitempty,hexcolor"`
	WarningFg string `yaml:"warning_fg" validate:"omitempty,hexcolor"`
	ErrorFg   string `yaml:"error_fg" validate:"omitempty,hexcolor"`
}

// Presets lists the preset names GetPreset understands
var Presets = []string{"default", "monochrome", "wave", "dragon", "lotus"}

// GetPreset returns a preset color scheme by name, falling back to Default
func GetPreset(name string) *ColorScheme {
	switch name {
	case "monochrome":
		return Monochrome()
	case "wave":
		return Wave()
	case "dragon":
		return Dragon()
	case "lotus":
		return Lotus()
	default:
		return Default()
	}
}

// each visits every color field paired with the same field of other
func (c *ColorScheme) each(other *ColorScheme, fn func(dst *string, src string)) {
	fn(&c.Accent, other.Accent)
	fn(&c.Open, other.Open)
	fn(&c.Done, other.Done)
	fn(&c.Border, other.Border)
	fn(&c.Link, other.Link)
	fn(&c.Title, other.Title)
	fn(&c.Subtle, other.Subtle)
	fn(&c.Normal, other.Normal)
	fn(&c.InfoFg, other.InfoFg)
	fn(&c.WarningFg, other.WarningFg)
	fn(&c.ErrorFg, other.ErrorFg)
}

// ApplyDefaults fills in missing color values from the named preset
func (c *ColorScheme) ApplyDefaults() {
	preset := GetPreset(c.Preset)
	if c.Preset == "" {
		c.Preset = preset.Preset
	}
	c.each(preset, func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	})
}

// MergeFrom overrides colors with every non-empty value of other
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
