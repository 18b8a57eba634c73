package models

// Stylesheets bundled with the renderer, one per theme combination.
const (
	StylesheetDefault      = "style.css"
	StylesheetNight        = "night.css"
	StylesheetNightInvert  = "night_invert.css"
	StylesheetAmoled       = "amoled.css"
	StylesheetAmoledInvert = "amoled_invert.css"
)

// Theme carries the display flags provided by the theme configuration.
type Theme struct {
	Amoled bool `yaml:"amoled"`
	Night  bool `yaml:"night"`
	Invert bool `yaml:"invert"`
}

// Stylesheet picks the stylesheet for the theme. Amoled wins over night;
// invert only matters when one of them is active.
func (t Theme) Stylesheet() string {
	switch {
	case t.Amoled && t.Invert:
		return StylesheetAmoledInvert
	case t.Amoled:
		return StylesheetAmoled
	case t.Night && t.Invert:
		return StylesheetNightInvert
	case t.Night:
		return StylesheetNight
	default:
		return StylesheetDefault
	}
}
