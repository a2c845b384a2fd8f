// Package ui provides the visual styling for the RegRadar chat interface,
// with light/dark mode support detected from the terminal environment.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Light mode palette
	LightBackground = lipgloss.Color("#f6f7f8")
	LightForeground = lipgloss.Color("#1a2332")
	LightPrimary    = lipgloss.Color("#1a2332")
	LightAccent     = lipgloss.Color("#2e7dd1")
	LightMuted      = lipgloss.Color("#9aa3ad")
	LightBorder     = lipgloss.Color("#dde1e6")

	// Dark mode palette
	DarkBackground = lipgloss.Color("#10151d")
	DarkForeground = lipgloss.Color("#eceff2")
	DarkPrimary    = lipgloss.Color("#5aa2e8")
	DarkAccent     = lipgloss.Color("#5aa2e8")
	DarkMuted      = lipgloss.Color("#57616e")
	DarkBorder     = lipgloss.Color("#2c3644")

	// Semantic colors, same in both modes
	Destructive = lipgloss.Color("#e05252")
	Success     = lipgloss.Color("#53b56b")
	Warning     = lipgloss.Color("#e8b339")
)

// Theme holds the active color scheme.
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme.
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
		IsDark:     false,
	}
}

// DarkTheme returns the dark mode theme.
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		IsDark:     true,
	}
}

// DetectTheme picks a theme from terminal hints, defaulting to dark.
func DetectTheme() Theme {
	if os.Getenv("REGRADAR_LIGHT_MODE") == "1" {
		return LightTheme()
	}

	// COLORFGBG is "foreground;background"; low background indexes are
	// dark terminal backgrounds.
	if colorTerm := os.Getenv("COLORFGBG"); colorTerm != "" {
		parts := strings.Split(colorTerm, ";")
		if len(parts) == 2 {
			if bgIdx, err := strconv.Atoi(parts[1]); err == nil {
				if bgIdx >= 7 && bgIdx != 8 {
					return LightTheme()
				}
			}
		}
	}

	return DarkTheme()
}

// Styles holds the styled components used by the chat view.
type Styles struct {
	Theme Theme

	Header  lipgloss.Style
	Footer  lipgloss.Style
	Content lipgloss.Style

	Title     lipgloss.Style
	Muted     lipgloss.Style
	Bold      lipgloss.Style
	UserInput lipgloss.Style

	Status  lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style

	Prompt  lipgloss.Style
	Spinner lipgloss.Style
}

// NewStyles creates a Styles instance for the given theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 2),

		Content: lipgloss.NewStyle().
			Padding(1, 2),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		UserInput: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Status: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Italic(true),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Success: lipgloss.NewStyle().
			Foreground(Success),

		Prompt: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),
	}
}
