package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the top bar: name, connection state, status message.
func (m Model) renderHeader() string {
	styles := m.theme.StylesOn(m.theme.Surface)
	bar := onSurface(m.theme.Surface)

	parts := []string{bar.paint("practice", styles.Title)}

	snap := m.snapshot
	switch {
	case snap.IsOffline():
		parts = append(parts,
			bar.paint(classifyConnectionError(snap.LastError), styles.Danger),
			bar.paint("Retrying...", styles.Warning.Bold(true)))
	case snap.LoggedIn():
		parts = append(parts, bar.paint(snap.Profile.Email, styles.Muted))
	default:
		parts = append(parts, bar.paint("signed out", styles.Warning))
	}

	if m.busy != "" {
		parts = append(parts, bar.paint(m.busy+"…", styles.Info))
	}
	if status := m.statusLine(); status != "" {
		style := styles.Success
		if m.statusIsError {
			style = styles.Danger
		}
		parts = append(parts, bar.paint(truncate(status, max(m.width-40, 10)), style))
	}
	if !snap.LastUpdated.IsZero() {
		parts = append(parts, bar.paint(snap.LastUpdated.Format("15:04:05"), styles.Faint))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(bar.join(parts, "  "))
}

// classifyConnectionError condenses a load error into a short label.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"):
		return "TIMEOUT"
	case strings.HasPrefix(msg, "401"):
		return "SIGNED OUT"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the key hints for the focused panel.
func (m Model) renderCommandBar() string {
	styles := m.theme.StylesOn(m.theme.Surface)
	bar := onSurface(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch {
	case !m.snapshot.LoggedIn():
		commands = []cmd{{"c", "Copy login URL"}, {"r", "Retry"}, {"q", "Quit"}}
	case m.focus == focusAddPiece:
		commands = []cmd{{"enter", "Add"}, {"up/down", "Field"}, {"tab", "Next"}, {"esc", "Pieces"}}
	case m.focus == focusSession:
		commands = []cmd{{"enter", "Log"}, {"ctrl+n/p", "Piece"}, {"up/down", "Field"}, {"tab", "Next"}, {"esc", "Pieces"}}
	default:
		commands = []cmd{{"j/k", "Navigate"}, {"enter", "Log"}, {"d", "Delete"}, {"tab", "Add piece"}, {"r", "Reload"}, {"?", "More"}}
	}

	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments, bar.hint(c.key, c.desc, styles.Accent, styles.Muted))
	}
	segments = append(segments, bar.hint("T", m.theme.Name, styles.Accent, styles.Faint))

	return styles.Header.Width(m.width).Render(bar.join(segments, "  "))
}
