package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is a named palette. Panel colors come in pairs: the resting color
// and the one used while the panel has focus.
type Theme struct {
	Name string

	Background string
	Surface    string // header and command bar
	Panel      string
	PanelFocus string
	Border     string
	BorderLit  string

	SelectionBg   string
	SelectionText string

	Text   string
	Muted  string
	Faint  string
	Accent string // focus, keys, minute bars
	Good   string // streaks, confirmations
	Warn   string // titles, signed-out notices
	Bad    string // errors, destructive prompts
	Info   string // loading
}

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Text    lipgloss.Style
	Muted   lipgloss.Style
	Faint   lipgloss.Style
	Accent  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Danger  lipgloss.Style
	Info    lipgloss.Style

	Title      lipgloss.Style
	Header     lipgloss.Style
	Selected   lipgloss.Style
	MinutesBar lipgloss.Style
}

// Styles returns styles that leave the background alone.
func (t Theme) Styles() Styles {
	return t.stylesOn(lipgloss.NoColor{})
}

// StylesOn returns styles that paint bg behind every glyph, for rows drawn
// on a colored bar.
func (t Theme) StylesOn(bg string) Styles {
	return t.stylesOn(lipgloss.Color(bg))
}

func (t Theme) stylesOn(bg lipgloss.TerminalColor) Styles {
	fg := func(color string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Background(bg)
	}
	return Styles{
		Text:    fg(t.Text),
		Muted:   fg(t.Muted),
		Faint:   fg(t.Faint),
		Accent:  fg(t.Accent),
		Success: fg(t.Good).Bold(true),
		Warning: fg(t.Warn),
		Danger:  fg(t.Bad).Bold(true),
		Info:    fg(t.Info),

		Title:      fg(t.Warn).Bold(true),
		MinutesBar: fg(t.Accent),
		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),
		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),
	}
}

// themes lists the built-in palettes in cycle order.
var themes = []Theme{
	{
		// https://github.com/EdenEast/nightfox.nvim
		Name:          "Nightfox",
		Background:    "#131a24",
		Surface:       "#192330",
		Panel:         "#212e3f",
		PanelFocus:    "#29394f",
		Border:        "#39506d",
		BorderLit:     "#719cd6",
		SelectionBg:   "#2b3b51",
		SelectionText: "#cdcecf",
		Text:          "#cdcecf",
		Muted:         "#738091",
		Faint:         "#71839b",
		Accent:        "#719cd6",
		Good:          "#81b29a",
		Warn:          "#dbc074",
		Bad:           "#c94f6d",
		Info:          "#63cdcf",
	},
	{
		// https://github.com/rebelot/kanagawa.nvim
		Name:          "Kanagawa",
		Background:    "#16161D",
		Surface:       "#1F1F28",
		Panel:         "#2A2A37",
		PanelFocus:    "#363646",
		Border:        "#54546D",
		BorderLit:     "#7E9CD8",
		SelectionBg:   "#2D4F67",
		SelectionText: "#DCD7BA",
		Text:          "#DCD7BA",
		Muted:         "#C8C093",
		Faint:         "#727169",
		Accent:        "#7E9CD8",
		Good:          "#98BB6C",
		Warn:          "#E6C384",
		Bad:           "#E46876",
		Info:          "#7FB4CA",
	},
	{
		// Tailwind slate/sky
		Name:          "Slate",
		Background:    "#020617",
		Surface:       "#0f172a",
		Panel:         "#1e293b",
		PanelFocus:    "#283548",
		Border:        "#334155",
		BorderLit:     "#38bdf8",
		SelectionBg:   "#0284c7",
		SelectionText: "#f8fafc",
		Text:          "#f1f5f9",
		Muted:         "#94a3b8",
		Faint:         "#64748b",
		Accent:        "#38bdf8",
		Good:          "#22c55e",
		Warn:          "#f59e0b",
		Bad:           "#ef4444",
		Info:          "#06b6d4",
	},
}

// GetTheme returns a theme by name, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range themes {
		if t.Name == name {
			return t
		}
	}
	return themes[0]
}

// NextTheme returns the theme after current, wrapping around. Unknown names
// start the cycle over.
func NextTheme(current string) string {
	for i, t := range themes {
		if t.Name == current {
			return themes[(i+1)%len(themes)].Name
		}
	}
	return themes[0].Name
}

// ThemeNames returns the built-in theme names in cycle order.
func ThemeNames() []string {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
