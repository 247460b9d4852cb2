package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderTitledBox draws a bordered panel with the title embedded in the top
// border. Content is padded or cut to fill height.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	borderColorStr, bgColorStr := m.theme.Border, m.theme.Panel
	if focused {
		borderColorStr, bgColorStr = m.theme.BorderLit, m.theme.PanelFocus
	}
	panel := onSurface(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 0)
	titleLen := lipgloss.Width(title)
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	topBorder := panel.paint("┌", borderStyle) +
		panel.paint(strings.Repeat("─", leftPad), borderStyle) +
		panel.paint(" "+title+" ", titleStyle) +
		panel.paint(strings.Repeat("─", rightPad), borderStyle) +
		panel.paint("┐", borderStyle)

	bottomBorder := panel.paint("└", borderStyle) +
		panel.paint(strings.Repeat("─", innerWidth), borderStyle) +
		panel.paint("┘", borderStyle)

	contentLines := strings.Split(content, "\n")
	boxHeight := max(height-2, 1)
	lines := make([]string, 0, boxHeight)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		lines = append(lines,
			panel.paint("│", borderStyle)+
				panel.fill(" "+line, innerWidth)+
				panel.paint("│", borderStyle))
	}

	return topBorder + "\n" + strings.Join(lines, "\n") + "\n" + bottomBorder
}
