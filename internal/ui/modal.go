package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pianopractice/practice-tracker/internal/practice"
)

// Modal is the interface for modal dialogs.
// Update returns the updated modal, a command, and whether the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// confirmDeleteMsg is emitted when the user confirms a deletion.
type confirmDeleteMsg struct {
	id int64
}

// confirmDeleteModal asks before a piece is deleted. Deletion is
// irreversible, so anything but an explicit yes cancels.
type confirmDeleteModal struct {
	piece practice.Piece
}

func newConfirmDeleteModal(p practice.Piece) confirmDeleteModal {
	return confirmDeleteModal{piece: p}
}

func (c confirmDeleteModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	if key.Matches(keyMsg, keys.ConfirmYes) {
		id := c.piece.ID
		return c, func() tea.Msg { return confirmDeleteMsg{id: id} }, true
	}
	return c, nil, true
}

func (c confirmDeleteModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	body := styles.Danger.Render("Delete piece?") + "\n\n" +
		styles.Text.Render(truncate(c.piece.Label(), 40)) + "\n\n" +
		styles.Muted.Render("This cannot be undone.") + "\n\n" +
		styles.Accent.Render("y") + styles.Muted.Render(" delete   ") +
		styles.Accent.Render("n") + styles.Muted.Render(" cancel")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Bad)).
		Padding(1, 2).
		Width(46).
		Render(body)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)))
}
