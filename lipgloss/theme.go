// Package lipgloss provides theme implementations using the Lipgloss styling library.
package lipgloss

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/tasmanium/reportview"
)

// Compile-time interface verification.
var _ reportview.Theme = (*Theme)(nil)

// Theme implements reportview.Theme with Lipgloss-compatible colors.
type Theme struct {
	styles  reportview.Styles
	palette reportview.Palette
}

// Styles returns the color styles for this theme.
func (t *Theme) Styles() reportview.Styles {
	return t.styles
}

// Palette returns the semantic color palette for this theme.
func (t *Theme) Palette() reportview.Palette {
	return t.palette
}

// DefaultTheme returns the default theme (dark background optimized).
func DefaultTheme() *Theme {
	return DarkTheme()
}

// ThemeByName returns the theme called "dark" or "light".
func ThemeByName(name string) (*Theme, error) {
	switch name {
	case "", "dark":
		return DarkTheme(), nil
	case "light":
		return LightTheme(), nil
	}
	return nil, fmt.Errorf("unknown theme %q", name)
}

// Style converts a color pair into a lipgloss style rendered by r.
// A nil renderer uses the default renderer.
func Style(r *lipgloss.Renderer, cp reportview.ColorPair) lipgloss.Style {
	var s lipgloss.Style
	if r != nil {
		s = r.NewStyle()
	} else {
		s = lipgloss.NewStyle()
	}
	if cp.Foreground != "" {
		s = s.Foreground(lipgloss.Color(cp.Foreground))
	}
	if cp.Background != "" {
		s = s.Background(lipgloss.Color(cp.Background))
	}
	return s
}

// DarkTheme returns a theme optimized for dark terminal backgrounds.
func DarkTheme() *Theme {
	return &Theme{
		styles: reportview.Styles{
			Passed: reportview.ColorPair{
				Foreground: "#a6e3a1", // Green
			},
			Failed: reportview.ColorPair{
				Foreground: "#f38ba8", // Red
			},
			Skipped: reportview.ColorPair{
				Foreground: "#f9e2af", // Yellow
			},
			Selected: reportview.ColorPair{
				Foreground: "#1e1e2e",
				Background: "#89b4fa", // Blue bar
			},
			Header: reportview.ColorPair{
				Foreground: "#cdd6f4",
				Background: "#313244", // Dark surface
			},
			Toolbar: reportview.ColorPair{
				Foreground: "#a6adc8",
			},
			ToolbarOn: reportview.ColorPair{
				Foreground: "#1e1e2e",
				Background: "#cba6f7", // Mauve
			},
			Muted: reportview.ColorPair{
				Foreground: "#6c7086",
			},
			ModalBorder: reportview.ColorPair{
				Foreground: "#89b4fa",
			},
			Error: reportview.ColorPair{
				Foreground: "#1e1e2e",
				Background: "#f38ba8",
			},
		},
		palette: reportview.Palette{
			// Base colors (Catppuccin Mocha)
			Background: "#1e1e2e",
			Foreground: "#cdd6f4",

			// Syntax highlighting colors
			Keyword:     "#cba6f7",
			String:      "#a6e3a1",
			Number:      "#fab387",
			Comment:     "#6c7086",
			Operator:    "#89dceb",
			Function:    "#89b4fa",
			Type:        "#f9e2af",
			Constant:    "#fab387",
			Punctuation: "#9399b2",

			// UI colors
			UIBackground: "#313244",
			UIForeground: "#a6adc8",
			UIAccent:     "#89b4fa",
		},
	}
}

// LightTheme returns a theme optimized for light terminal backgrounds.
func LightTheme() *Theme {
	return &Theme{
		styles: reportview.Styles{
			Passed: reportview.ColorPair{
				Foreground: "#40a02b", // Green
			},
			Failed: reportview.ColorPair{
				Foreground: "#d20f39", // Red
			},
			Skipped: reportview.ColorPair{
				Foreground: "#df8e1d", // Yellow
			},
			Selected: reportview.ColorPair{
				Foreground: "#ffffff",
				Background: "#1e66f5", // Blue bar
			},
			Header: reportview.ColorPair{
				Foreground: "#4c4f69",
				Background: "#e6e9ef", // Light surface
			},
			Toolbar: reportview.ColorPair{
				Foreground: "#6c6f85",
			},
			ToolbarOn: reportview.ColorPair{
				Foreground: "#ffffff",
				Background: "#8839ef", // Mauve
			},
			Muted: reportview.ColorPair{
				Foreground: "#9ca0b0",
			},
			ModalBorder: reportview.ColorPair{
				Foreground: "#1e66f5",
			},
			Error: reportview.ColorPair{
				Foreground: "#ffffff",
				Background: "#d20f39",
			},
		},
		palette: reportview.Palette{
			// Base colors (Catppuccin Latte)
			Background: "#eff1f5",
			Foreground: "#4c4f69",

			// Syntax highlighting colors
			Keyword:     "#8839ef",
			String:      "#40a02b",
			Number:      "#fe640b",
			Comment:     "#9ca0b0",
			Operator:    "#04a5e5",
			Function:    "#1e66f5",
			Type:        "#df8e1d",
			Constant:    "#fe640b",
			Punctuation: "#6c6f85",

			// UI colors
			UIBackground: "#e6e9ef",
			UIForeground: "#6c6f85",
			UIAccent:     "#1e66f5",
		},
	}
}
