package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pianopractice/practice-tracker/internal/practice"
)

// renderPieceList draws one line per piece with the cursor row highlighted.
// The composer suffix only appears when the piece has one.
func renderPieceList(pieces []practice.Piece, cursor int, styles Styles, width int, focused bool) string {
	if len(pieces) == 0 {
		return styles.Muted.Render("No pieces yet. Add one with tab.")
	}
	lines := make([]string, 0, len(pieces))
	for i, p := range pieces {
		label := truncate(p.Label(), max(width-2, 4))
		if i == cursor && focused {
			lines = append(lines, styles.Selected.Render(padRight("› "+label, width)))
			continue
		}
		prefix := "  "
		if i == cursor {
			prefix = "› "
		}
		lines = append(lines, styles.Text.Render(prefix+label))
	}
	return strings.Join(lines, "\n")
}

// clampCursor keeps a list cursor inside [0, n).
func clampCursor(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}

// PieceForm holds the add-piece inputs. Its contents mirror the
// coordinator's title and composer draft.
type PieceForm struct {
	title    textinput.Model
	composer textinput.Model
	active   int
	err      string
}

// NewPieceForm returns an empty form.
func NewPieceForm() PieceForm {
	title := textinput.New()
	title.Prompt = ""
	title.Placeholder = "Title (required)"
	title.CharLimit = 200
	composer := textinput.New()
	composer.Prompt = ""
	composer.Placeholder = "Composer (optional)"
	composer.CharLimit = 200
	return PieceForm{title: title, composer: composer}
}

// Values returns the raw title and composer text.
func (f PieceForm) Values() (string, string) {
	return f.title.Value(), f.composer.Value()
}

// SetValues restores a draft.
func (f *PieceForm) SetValues(title, composer string) {
	f.title.SetValue(title)
	f.composer.SetValue(composer)
}

// Reset clears both inputs and returns focus to the title.
func (f *PieceForm) Reset() {
	f.SetValues("", "")
	f.err = ""
	if f.composer.Focused() {
		f.composer.Blur()
		f.active = 0
		f.title.Focus()
	}
}

func (f *PieceForm) SetError(msg string) {
	f.err = msg
}

func (f *PieceForm) Focus() tea.Cmd {
	if f.active == 1 {
		return f.composer.Focus()
	}
	return f.title.Focus()
}

func (f *PieceForm) Blur() {
	f.title.Blur()
	f.composer.Blur()
}

// Update handles a key while the form has focus. submit reports that the
// user pressed enter.
func (f PieceForm) Update(msg tea.KeyMsg, keys keyMap) (PieceForm, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, keys.Submit):
		return f, nil, true
	case key.Matches(msg, keys.NextField), key.Matches(msg, keys.PrevField):
		f.Blur()
		f.active = 1 - f.active
		cmd := f.Focus()
		return f, cmd, false
	}
	var cmd tea.Cmd
	if f.active == 1 {
		f.composer, cmd = f.composer.Update(msg)
	} else {
		f.title, cmd = f.title.Update(msg)
	}
	return f, cmd, false
}

// View renders the two inputs and any inline error.
func (f PieceForm) View(styles Styles, focused bool) string {
	label := func(text string, idx int) string {
		if focused && f.active == idx {
			return styles.Accent.Render(padRight(text, 10))
		}
		return styles.Muted.Render(padRight(text, 10))
	}
	var b strings.Builder
	b.WriteString(label("Title", 0) + f.title.View() + "\n")
	b.WriteString(label("Composer", 1) + f.composer.View())
	if f.err != "" {
		b.WriteString("\n" + styles.Danger.Render(f.err))
	}
	return b.String()
}
