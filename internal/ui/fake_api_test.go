package ui

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pianopractice/practice-tracker/internal/practice"
	"github.com/pianopractice/practice-tracker/internal/state"
)

// countingAPI is an in-memory practice.API that counts calls.
type countingAPI struct {
	mu sync.Mutex

	profile  *practice.Profile
	pieces   []practice.Piece
	stats    practice.Stats
	loadErr  error
	statsErr error
	daysErr  error
	nextID   int64

	statsCalls   int
	deleteCalls  []int64
	sessionPosts []practice.SessionInput
}

func newCountingAPI() *countingAPI {
	return &countingAPI{
		profile: &practice.Profile{Email: "ada@example.com", DisplayName: practice.String("Ada"), CurrentStreakDays: 3},
		pieces: []practice.Piece{
			{ID: 2, Title: "Gymnopédie No. 1", Composer: practice.String("Satie")},
			{ID: 1, Title: "Minuet in G"},
		},
		stats:  practice.Stats{TotalMinutesLast7Days: 90, TopPieceLast7Days: practice.String("Minuet in G"), CurrentStreakDays: 3},
		nextID: 7,
	}
}

func (f *countingAPI) FetchProfile(context.Context) (*practice.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	p := *f.profile
	return &p, nil
}

func (f *countingAPI) FetchPieces(context.Context) ([]practice.Piece, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return append([]practice.Piece(nil), f.pieces...), nil
}

func (f *countingAPI) CreatePiece(_ context.Context, in practice.PieceInput) (*practice.Piece, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := practice.Piece{ID: f.nextID, Title: in.Title, Composer: in.Composer}
	f.nextID++
	f.pieces = append([]practice.Piece{p}, f.pieces...)
	return &p, nil
}

func (f *countingAPI) DeletePiece(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, id)
	out := f.pieces[:0]
	for _, p := range f.pieces {
		if p.ID != id {
			out = append(out, p)
		}
	}
	f.pieces = out
	return nil
}

func (f *countingAPI) CreateSession(_ context.Context, in practice.SessionInput) (*practice.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessionPosts = append(f.sessionPosts, in)
	return &practice.Session{ID: int64(len(f.sessionPosts)), PieceID: in.PieceID, PracticeDate: in.PracticeDate, Minutes: in.Minutes}, nil
}

func (f *countingAPI) FetchSessions(context.Context, practice.SessionQuery) ([]practice.Session, error) {
	return nil, nil
}

func (f *countingAPI) FetchStats(context.Context) (*practice.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statsCalls++
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	s := f.stats
	return &s, nil
}

func (f *countingAPI) FetchMinutesByDay(context.Context, int) ([]practice.DayMinutes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.daysErr != nil {
		return nil, f.daysErr
	}
	return []practice.DayMinutes{{Date: "2026-10-17", Minutes: 30}, {Date: "2026-10-18", Minutes: 60}}, nil
}

func (f *countingAPI) StatsCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statsCalls
}

// newTestModel builds a sized model over api with clipboard writes captured.
func newTestModel(api *countingAPI, copied *string) Model {
	coord := state.NewCoordinator(api, nil, nil)
	m := New(Options{
		Coordinator: coord,
		API:         api,
		LoginURL:    "http://127.0.0.1:8000/login",
		PollTick:    time.Hour,
		Clipboard: func(s string) error {
			if copied != nil {
				*copied = s
			}
			return nil
		},
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 50})
	return next.(Model)
}

// runCmd executes cmd and any batched children, dropping commands that do
// not finish promptly (ticks).
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, runCmd(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(200 * time.Millisecond):
		return nil
	}
}

// settle feeds cmd's messages back into the model until nothing is left.
func settle(m Model, cmd tea.Cmd) Model {
	queue := []tea.Cmd{cmd}
	for i := 0; i < 50 && len(queue) > 0; i++ {
		c := queue[0]
		queue = queue[1:]
		for _, msg := range runCmd(c) {
			next, nextCmd := m.Update(msg)
			m = next.(Model)
			if nextCmd != nil {
				queue = append(queue, nextCmd)
			}
		}
	}
	return m
}

// press sends one key and settles the resulting commands.
func press(m Model, k tea.KeyMsg) Model {
	next, cmd := m.Update(k)
	return settle(next.(Model), cmd)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m = press(m, runes(string(r)))
	}
	return m
}
