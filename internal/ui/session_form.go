package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pianopractice/practice-tracker/internal/practice"
)

// DefaultSessionMinutes pre-fills the minutes field.
const DefaultSessionMinutes = 30

const (
	fieldDate = iota
	fieldMinutes
	fieldFocus
	fieldNotes
	sessionFieldCount
)

var sessionFieldLabels = [sessionFieldCount]string{"Date", "Minutes", "Focus", "Notes"}

// SessionForm is the local draft for logging a practice session. The piece
// must come from the coordinator's list; the form never fetches pieces.
type SessionForm struct {
	pieceID int64
	inputs  [sessionFieldCount]textinput.Model
	active  int
	err     string
}

// NewSessionForm returns a form dated today with the default minutes.
func NewSessionForm() SessionForm {
	var f SessionForm
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		f.inputs[i] = in
	}
	f.inputs[fieldDate].CharLimit = len(practice.DateLayout)
	f.inputs[fieldDate].Placeholder = practice.DateLayout
	f.inputs[fieldDate].SetValue(practice.Today())
	f.inputs[fieldMinutes].CharLimit = 3
	f.inputs[fieldMinutes].SetValue(strconv.Itoa(DefaultSessionMinutes))
	f.inputs[fieldFocus].CharLimit = practice.MaxFocusLength
	f.inputs[fieldFocus].Placeholder = "e.g. left hand, bars 12-20"
	f.inputs[fieldNotes].CharLimit = practice.MaxNotesLength
	return f
}

// PieceID is the selected piece, zero when none.
func (f SessionForm) PieceID() int64 {
	return f.pieceID
}

// SelectPiece chooses the piece to log against.
func (f *SessionForm) SelectPiece(id int64) {
	f.pieceID = id
	f.err = ""
}

// Reconcile drops the selection when the piece left the list.
func (f *SessionForm) Reconcile(pieces []practice.Piece) {
	if f.pieceID == 0 {
		return
	}
	for _, p := range pieces {
		if p.ID == f.pieceID {
			return
		}
	}
	f.pieceID = 0
}

// CyclePiece moves the selection by delta through pieces, wrapping around.
func (f *SessionForm) CyclePiece(pieces []practice.Piece, delta int) {
	if len(pieces) == 0 {
		f.pieceID = 0
		return
	}
	idx := -1
	for i, p := range pieces {
		if p.ID == f.pieceID {
			idx = i
			break
		}
	}
	switch {
	case idx < 0 && delta < 0:
		idx = len(pieces) - 1
	case idx < 0:
		idx = 0
	default:
		idx = ((idx+delta)%len(pieces) + len(pieces)) % len(pieces)
	}
	f.pieceID = pieces[idx].ID
	f.err = ""
}

// SetValue fills one field; used by tests and the piece shortcut.
func (f *SessionForm) SetValue(field int, value string) {
	if field >= 0 && field < sessionFieldCount {
		f.inputs[field].SetValue(value)
	}
}

// Value returns the raw text of one field.
func (f SessionForm) Value(field int) string {
	if field < 0 || field >= sessionFieldCount {
		return ""
	}
	return f.inputs[field].Value()
}

// Draft validates the form and builds the request. Invalid drafts never
// reach the network.
func (f SessionForm) Draft() (practice.SessionInput, error) {
	if f.pieceID == 0 {
		return practice.SessionInput{}, fmt.Errorf("%w: select a piece", practice.ErrValidation)
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(f.inputs[fieldMinutes].Value()))
	if err != nil {
		return practice.SessionInput{}, fmt.Errorf("%w: minutes must be a number", practice.ErrValidation)
	}
	in := practice.NewSessionInput(
		f.pieceID,
		f.inputs[fieldDate].Value(),
		minutes,
		f.inputs[fieldFocus].Value(),
		f.inputs[fieldNotes].Value(),
	)
	if err := in.Validate(); err != nil {
		return practice.SessionInput{}, err
	}
	return in, nil
}

// SetError shows an inline message under the form.
func (f *SessionForm) SetError(err error) {
	if err == nil {
		f.err = ""
		return
	}
	f.err = inlineError(err)
}

// Reset clears minutes, focus and notes after a successful submit. The piece
// and date are kept so several sessions can be logged in a row.
func (f *SessionForm) Reset() {
	f.inputs[fieldMinutes].SetValue(strconv.Itoa(DefaultSessionMinutes))
	f.inputs[fieldFocus].SetValue("")
	f.inputs[fieldNotes].SetValue("")
	f.err = ""
}

// Focus activates the current field.
func (f *SessionForm) Focus() tea.Cmd {
	return f.inputs[f.active].Focus()
}

// Blur deactivates every field.
func (f *SessionForm) Blur() {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
}

func (f *SessionForm) move(delta int) tea.Cmd {
	f.inputs[f.active].Blur()
	f.active = ((f.active+delta)%sessionFieldCount + sessionFieldCount) % sessionFieldCount
	return f.inputs[f.active].Focus()
}

// Update handles a key while the form has focus. submit reports that the
// user asked to submit.
func (f SessionForm) Update(msg tea.KeyMsg, keys keyMap, pieces []practice.Piece) (SessionForm, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, keys.Submit):
		return f, nil, true
	case key.Matches(msg, keys.NextField):
		cmd := f.move(1)
		return f, cmd, false
	case key.Matches(msg, keys.PrevField):
		cmd := f.move(-1)
		return f, cmd, false
	case key.Matches(msg, keys.NextPiece):
		f.CyclePiece(pieces, 1)
		return f, nil, false
	case key.Matches(msg, keys.PrevPiece):
		f.CyclePiece(pieces, -1)
		return f, nil, false
	}
	var cmd tea.Cmd
	f.inputs[f.active], cmd = f.inputs[f.active].Update(msg)
	return f, cmd, false
}

// View renders the form. pieces resolves the selected title.
func (f SessionForm) View(pieces []practice.Piece, styles Styles, focused bool) string {
	var b strings.Builder

	pieceLabel := styles.Faint.Render("none (ctrl+n to choose)")
	for _, p := range pieces {
		if p.ID == f.pieceID {
			pieceLabel = styles.Accent.Render(p.Label())
			break
		}
	}
	b.WriteString(styles.Muted.Render(padRight("Piece", 9)))
	b.WriteString(pieceLabel)
	b.WriteString("\n")

	for i, in := range f.inputs {
		label := padRight(sessionFieldLabels[i], 9)
		if focused && i == f.active {
			b.WriteString(styles.Accent.Render(label))
		} else {
			b.WriteString(styles.Muted.Render(label))
		}
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	if f.err != "" {
		b.WriteString(styles.Danger.Render(f.err))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
