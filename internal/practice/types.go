package practice

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for practice dates.
const DateLayout = "2006-01-02"

// Session bounds enforced by the server and mirrored client-side.
const (
	MinSessionMinutes = 1
	MaxSessionMinutes = 600
	MaxFocusLength    = 120
	MaxNotesLength    = 1000
)

// ErrValidation marks input rejected before any request is made.
var ErrValidation = errors.New("invalid input")

// Profile mirrors the payload returned by /api/me.
type Profile struct {
	Email             string  `json:"email"`
	DisplayName       *string `json:"display_name"`
	PictureURL        *string `json:"picture_url,omitempty"`
	JoinedOn          *string `json:"joined_on,omitempty"`
	TotalPieces       int     `json:"total_pieces"`
	TotalSessions     int     `json:"total_sessions"`
	TotalMinutes      int     `json:"total_minutes"`
	LastPracticeDate  *string `json:"last_practice_date,omitempty"`
	CurrentStreakDays int     `json:"current_streak_days"`
	LongestStreakDays int     `json:"longest_streak_days"`
}

// Name returns the display name, or "" when the server has none.
func (p Profile) Name() string {
	return deref(p.DisplayName)
}

// Greeting renders "Welcome" with the display name appended when known.
func (p Profile) Greeting() string {
	if name := p.Name(); name != "" {
		return "Welcome, " + name
	}
	return "Welcome"
}

// Piece is a musical work the user practices.
type Piece struct {
	ID         int64   `json:"id"`
	Title      string  `json:"title"`
	Composer   *string `json:"composer"`
	Difficulty *string `json:"difficulty,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

// ComposerName returns the composer, or "" when absent.
func (p Piece) ComposerName() string {
	return deref(p.Composer)
}

// Label renders the title with a " — composer" suffix when a composer is set.
func (p Piece) Label() string {
	if c := p.ComposerName(); c != "" {
		return p.Title + " — " + c
	}
	return p.Title
}

// PieceInput is the body of POST /api/pieces.
type PieceInput struct {
	Title    string  `json:"title"`
	Composer *string `json:"composer"`
}

// NewPieceInput trims both fields and maps an empty composer to null.
func NewPieceInput(title, composer string) PieceInput {
	return PieceInput{
		Title:    strings.TrimSpace(title),
		Composer: optional(composer),
	}
}

// Validate requires a non-empty title.
func (in PieceInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	return nil
}

// Session is a single logged practice event.
type Session struct {
	ID           int64   `json:"id"`
	PieceID      int64   `json:"piece_id"`
	PracticeDate string  `json:"practice_date"`
	Minutes      int     `json:"minutes"`
	Focus        *string `json:"focus"`
	Notes        *string `json:"notes"`
}

// ParsedDate returns the practice date, or the zero time when malformed.
func (s Session) ParsedDate() time.Time {
	t, err := time.Parse(DateLayout, s.PracticeDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

// SessionInput is the body of POST /api/sessions.
type SessionInput struct {
	PieceID      int64   `json:"piece_id"`
	PracticeDate string  `json:"practice_date"`
	Minutes      int     `json:"minutes"`
	Focus        *string `json:"focus"`
	Notes        *string `json:"notes"`
}

// NewSessionInput builds a request body, mapping empty focus/notes to null.
func NewSessionInput(pieceID int64, date string, minutes int, focus, notes string) SessionInput {
	return SessionInput{
		PieceID:      pieceID,
		PracticeDate: strings.TrimSpace(date),
		Minutes:      minutes,
		Focus:        optional(focus),
		Notes:        optional(notes),
	}
}

// Validate applies the same constraints the server enforces.
func (in SessionInput) Validate() error {
	if in.PieceID <= 0 {
		return fmt.Errorf("%w: select a piece", ErrValidation)
	}
	if _, err := time.Parse(DateLayout, in.PracticeDate); err != nil {
		return fmt.Errorf("%w: practice date must be YYYY-MM-DD", ErrValidation)
	}
	if in.Minutes < MinSessionMinutes || in.Minutes > MaxSessionMinutes {
		return fmt.Errorf("%w: minutes must be between %d and %d", ErrValidation, MinSessionMinutes, MaxSessionMinutes)
	}
	if len([]rune(deref(in.Focus))) > MaxFocusLength {
		return fmt.Errorf("%w: focus is limited to %d characters", ErrValidation, MaxFocusLength)
	}
	if len([]rune(deref(in.Notes))) > MaxNotesLength {
		return fmt.Errorf("%w: notes are limited to %d characters", ErrValidation, MaxNotesLength)
	}
	return nil
}

// Stats mirrors /api/stats/overview.
type Stats struct {
	TotalMinutesLast7Days int     `json:"total_minutes_last_7_days"`
	TopPieceLast7Days     *string `json:"top_piece_last_7_days"`
	CurrentStreakDays     int     `json:"current_streak_days"`
}

// TopPiece returns the top piece title or "—" when there is none.
func (s Stats) TopPiece() string {
	if t := deref(s.TopPieceLast7Days); t != "" {
		return t
	}
	return "—"
}

// DayMinutes is one entry of /api/stats/by-day.
type DayMinutes struct {
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
}

// Today returns the local date in wire format.
func Today() string {
	return time.Now().Format(DateLayout)
}

// String returns a pointer to s, or nil when s is blank.
func String(s string) *string {
	return optional(s)
}

func optional(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
