package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// surface paints text onto a solid background. Every piece of a row must
// carry the color itself: an unstyled space between two styled segments
// shows the terminal background through the bar.
type surface struct {
	bg lipgloss.Color
}

func onSurface(color string) surface {
	return surface{bg: lipgloss.Color(color)}
}

// paint renders text with style on the surface color.
func (s surface) paint(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	return style.Background(s.bg).Render(text)
}

// join concatenates already painted parts with a painted separator.
func (s surface) join(parts []string, sep string) string {
	return strings.Join(parts, lipgloss.NewStyle().Background(s.bg).Render(sep))
}

// hint renders a "key:desc" command bar entry.
func (s surface) hint(key, desc string, keyStyle, descStyle lipgloss.Style) string {
	return s.paint(key, keyStyle) + s.paint(":", descStyle) + s.paint(desc, descStyle)
}

// fill pads or cuts one rendered line to exactly width cells.
func (s surface) fill(content string, width int) string {
	return lipgloss.NewStyle().Background(s.bg).Width(width).MaxWidth(width).MaxHeight(1).Render(content)
}
