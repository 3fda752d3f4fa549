// Package theme holds the page's dark/light palette: the chart style config
// derived from it, where the choice is persisted, and the toggle that flips
// it and re-renders every chart.
package theme

import (
	"errors"
	"fmt"

	"github.com/junkd0g/vgcharts/internal/vegalite"
)

// Theme is the page palette.
type Theme string

const (
	Dark  Theme = "dark"
	Light Theme = "light"
)

// ErrInvalidTheme is returned when parsing strictly.
var ErrInvalidTheme = errors.New("invalid theme")

// FromStored maps a persisted value to a theme. Only "light" selects the light
// palette; anything else, including an absent value, is dark.
func FromStored(v string) Theme {
	if v == string(Light) {
		return Light
	}
	return Dark
}

// Parse accepts exactly "dark" or "light".
func Parse(v string) (Theme, error) {
	switch Theme(v) {
	case Dark, Light:
		return Theme(v), nil
	}
	return "", fmt.Errorf("%w: %q (must be dark or light)", ErrInvalidTheme, v)
}

// Flip returns the other theme.
func (t Theme) Flip() Theme {
	if t == Light {
		return Dark
	}
	return Light
}

// Pressed is the toggle button's aria-pressed state for the theme.
func (t Theme) Pressed() bool { return t == Light }

func (t Theme) String() string { return string(t) }

type palette struct {
	label, title, grid, domain string
}

var palettes = map[Theme]palette{
	Light: {
		label:  "#566079",
		title:  "#111522",
		grid:   "rgba(17,21,34,0.12)",
		domain: "rgba(17,21,34,0.18)",
	},
	Dark: {
		label:  "#a7b0c0",
		title:  "#e7eaf0",
		grid:   "rgba(255,255,255,0.08)",
		domain: "rgba(255,255,255,0.14)",
	},
}

// ConfigFor returns the chart style config for t. The background is left
// transparent so the page background shows through.
func ConfigFor(t Theme) *vegalite.Config {
	p := palettes[FromStored(string(t))]
	return &vegalite.Config{
		Background: nil,
		Axis: vegalite.AxisConfig{
			LabelColor:  p.label,
			TitleColor:  p.title,
			GridColor:   p.grid,
			DomainColor: p.domain,
			TickColor:   p.domain,
		},
		Legend: vegalite.LegendConfig{
			LabelColor: p.label,
			TitleColor: p.title,
		},
		Title: vegalite.TitleConfig{
			Color:    p.title,
			FontSize: 14,
		},
	}
}
