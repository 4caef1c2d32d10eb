// Package styles holds the lipgloss styles used for terminal output.
//
// Styles are defined by semantic name in the embedded styles.yaml, with
// adaptive colors for light and dark terminals.
package styles

import (
	_ "embed"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// ColorDef is an adaptive color
type ColorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// StyleDef describes one named style
type StyleDef struct {
	Bold         bool   `yaml:"bold,omitempty"`
	Italic       bool   `yaml:"italic,omitempty"`
	Foreground   string `yaml:"foreground,omitempty"`
	Width        int    `yaml:"width,omitempty"`
	MarginBottom int    `yaml:"marginBottom,omitempty"`
}

// Config is the content of styles.yaml
type Config struct {
	Colors map[string]ColorDef `yaml:"colors"`
	Styles map[string]StyleDef `yaml:"styles"`
}

//go:embed styles.yaml
var embedded []byte

var registry = map[string]lipgloss.Style{}

func init() {
	if err := Load(embedded); err != nil {
		panic(fmt.Sprintf("invalid embedded styles: %v", err))
	}
}

// Load replaces the registry with the styles defined in data
func Load(data []byte) error {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse styles: %w", err)
	}

	colors := make(map[string]lipgloss.AdaptiveColor, len(cfg.Colors))
	for name, def := range cfg.Colors {
		colors[name] = lipgloss.AdaptiveColor{Light: def.Light, Dark: def.Dark}
	}

	styles := make(map[string]lipgloss.Style, len(cfg.Styles))
	for name, def := range cfg.Styles {
		style := lipgloss.NewStyle().Bold(def.Bold).Italic(def.Italic)
		if def.Foreground != "" {
			c, ok := colors[def.Foreground]
			if !ok {
				return fmt.Errorf("style %s uses unknown color %s", name, def.Foreground)
			}
			style = style.Foreground(c)
		}
		if def.Width > 0 {
			style = style.Width(def.Width)
		}
		if def.MarginBottom > 0 {
			style = style.MarginBottom(def.MarginBottom)
		}
		styles[name] = style
	}
	registry = styles
	return nil
}

// Get returns the named style, or an unstyled one
func Get(name string) lipgloss.Style {
	if s, ok := registry[name]; ok {
		return s
	}
	return lipgloss.NewStyle()
}

// Render applies the named style to s
func Render(name, s string) string {
	return Get(name).Render(s)
}
