// Package fakeapi is an in-memory practice tracker backend. It serves the
// same JSON endpoints as the real server for a single user and is used by
// tests and by the demo command.
package fakeapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/pianopractice/practice-tracker/internal/logging"
	"github.com/pianopractice/practice-tracker/internal/practice"
)

const (
	defaultEmail   = "pianist@example.com"
	defaultByDays  = 14
	detailNotFound = "Piece not found or not owned by user"
)

// Options configure a Server.
type Options struct {
	CookieName  string // empty uses practice.DefaultCookieName
	Cookie      string // empty generates a random session value
	Email       string
	DisplayName string
	Now         func() time.Time
	Logger      *slog.Logger
}

// Server holds one user's pieces and sessions.
type Server struct {
	mu sync.Mutex

	cookieName  string
	cookie      string
	email       string
	displayName *string
	joined      time.Time
	now         func() time.Time
	logger      *slog.Logger
	down        bool

	pieces        []practice.Piece // newest first
	sessions      []practice.Session
	nextPieceID   int64
	nextSessionID int64

	router *mux.Router
}

// New builds a server with an empty library.
func New(opts Options) *Server {
	s := &Server{
		cookieName:    opts.CookieName,
		cookie:        strings.TrimSpace(opts.Cookie),
		email:         opts.Email,
		displayName:   practice.String(opts.DisplayName),
		now:           opts.Now,
		logger:        opts.Logger,
		nextPieceID:   1,
		nextSessionID: 1,
	}
	if s.cookieName == "" {
		s.cookieName = practice.DefaultCookieName
	}
	if s.cookie == "" {
		s.cookie = uuid.NewString()
	}
	if s.email == "" {
		s.email = defaultEmail
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	s.joined = s.now()
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Cookie returns the session value the server accepts.
func (s *Server) Cookie() string {
	return s.cookie
}

// CookieName returns the session cookie name.
func (s *Server) CookieName() string {
	return s.cookieName
}

// SetDown makes every /api request fail with 503 until cleared.
func (s *Server) SetDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down = down
}

// SeedPiece adds a piece directly, bypassing HTTP.
func (s *Server) SeedPiece(title, composer string) practice.Piece {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addPieceLocked(pieceIn{Title: title, Composer: practice.String(composer)})
}

// SeedSession logs a session directly, bypassing HTTP.
func (s *Server) SeedSession(in practice.SessionInput) (practice.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if detail := validateSession(in); detail != "" {
		return practice.Session{}, fmt.Errorf("seed session: %s", detail)
	}
	if s.pieceIndexLocked(in.PieceID) < 0 {
		return practice.Session{}, fmt.Errorf("seed session: piece %d not found", in.PieceID)
	}
	return s.addSessionLocked(in), nil
}

// Pieces returns a copy of the library, newest first.
func (s *Server) Pieces() []practice.Piece {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]practice.Piece(nil), s.pieces...)
}

// Sessions returns a copy of every logged session in insertion order.
func (s *Server) Sessions() []practice.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]practice.Session(nil), s.sessions...)
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/login", s.handleLogin).Methods("GET")
	r.HandleFunc("/logout", s.handleLogout).Methods("GET")
	r.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.requireSession)
	api.HandleFunc("/me", s.handleMe).Methods("GET")
	api.HandleFunc("/pieces", s.handleListPieces).Methods("GET")
	api.HandleFunc("/pieces", s.handleCreatePiece).Methods("POST")
	api.HandleFunc("/pieces/{id:[0-9]+}", s.handleDeletePiece).Methods("DELETE")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/stats/overview", s.handleOverview).Methods("GET")
	api.HandleFunc("/stats/by-day", s.handleByDay).Methods("GET")
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("fake api request",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", r.Header.Get("X-Request-ID"))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		down := s.down
		s.mu.Unlock()
		if down {
			writeDetail(w, http.StatusServiceUnavailable, "Service unavailable")
			return
		}
		c, err := r.Cookie(s.cookieName)
		if err != nil || c.Value == "" {
			writeDetail(w, http.StatusUnauthorized, "Missing auth cookie")
			return
		}
		if c.Value != s.cookie {
			writeDetail(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleLogin stands in for the identity provider round trip: it sets the
// cookie and shows its value so it can be pasted into the terminal client.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: s.cookieName, Value: s.cookie, Path: "/", HttpOnly: true})
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintf(w, "Signed in as %s.\nSession cookie %s=%s\n", s.email, s.cookieName, s.cookie)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: s.cookieName, Value: "", Path: "/", MaxAge: -1})
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintln(w, "Signed out.")
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.today()
	joined := s.joined.Format(practice.DateLayout)
	profile := practice.Profile{
		Email:         s.email,
		DisplayName:   s.displayName,
		JoinedOn:      &joined,
		TotalPieces:   len(s.pieces),
		TotalSessions: len(s.sessions),
	}
	days := make(map[time.Time]bool)
	for _, sess := range s.sessions {
		profile.TotalMinutes += sess.Minutes
		days[sess.ParsedDate()] = true
	}
	if last := lastDay(days); !last.IsZero() {
		formatted := last.Format(practice.DateLayout)
		profile.LastPracticeDate = &formatted
	}
	profile.CurrentStreakDays = currentStreak(days, today)
	profile.LongestStreakDays = longestStreak(days)
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleListPieces(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]practice.Piece{}, s.pieces...)
	writeJSON(w, http.StatusOK, out)
}

type pieceIn struct {
	Title      string  `json:"title"`
	Composer   *string `json:"composer"`
	Difficulty *string `json:"difficulty"`
	Notes      *string `json:"notes"`
}

func (s *Server) handleCreatePiece(w http.ResponseWriter, r *http.Request) {
	var in pieceIn
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	if in.Title == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "title: String should have at least 1 character")
		return
	}
	s.mu.Lock()
	piece := s.addPieceLocked(in)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, piece)
}

func (s *Server) handleDeletePiece(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid piece id")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.pieceIndexLocked(id)
	if idx < 0 {
		writeDetail(w, http.StatusNotFound, "Not Found")
		return
	}
	s.pieces = append(s.pieces[:idx], s.pieces[idx+1:]...)
	kept := s.sessions[:0]
	for _, sess := range s.sessions {
		if sess.PieceID != id {
			kept = append(kept, sess)
		}
	}
	s.sessions = kept
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		pieceID  int64
		from, to time.Time
		err      error
	)
	if raw := q.Get("piece_id"); raw != "" {
		if pieceID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "piece_id: invalid integer")
			return
		}
	}
	if raw := q.Get("date_from"); raw != "" {
		if from, err = time.Parse(practice.DateLayout, raw); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "date_from: invalid date")
			return
		}
	}
	if raw := q.Get("date_to"); raw != "" {
		if to, err = time.Parse(practice.DateLayout, raw); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "date_to: invalid date")
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if q.Get("piece_id") != "" && s.pieceIndexLocked(pieceID) < 0 {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	}
	out := []practice.Session{}
	for _, sess := range s.sessions {
		day := sess.ParsedDate()
		switch {
		case q.Get("piece_id") != "" && sess.PieceID != pieceID:
			continue
		case !from.IsZero() && day.Before(from):
			continue
		case !to.IsZero() && day.After(to):
			continue
		}
		out = append(out, sess)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PracticeDate != out[j].PracticeDate {
			return out[i].PracticeDate > out[j].PracticeDate
		}
		return out[i].ID > out[j].ID
	})
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var in practice.SessionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	if detail := validateSession(in); detail != "" {
		writeDetail(w, http.StatusUnprocessableEntity, detail)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pieceIndexLocked(in.PieceID) < 0 {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s.addSessionLocked(in))
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.today()
	start := today.AddDate(0, 0, -6)
	titles := make(map[int64]string, len(s.pieces))
	for _, p := range s.pieces {
		titles[p.ID] = p.Title
	}

	var stats practice.Stats
	byTitle := make(map[string]int)
	days := make(map[time.Time]bool)
	for _, sess := range s.sessions {
		day := sess.ParsedDate()
		if !day.After(today) {
			days[day] = true
		}
		if day.Before(start) {
			continue
		}
		stats.TotalMinutesLast7Days += sess.Minutes
		if title, ok := titles[sess.PieceID]; ok {
			byTitle[title] += sess.Minutes
		}
	}
	if top := topTitle(byTitle); top != "" {
		stats.TopPieceLast7Days = &top
	}
	stats.CurrentStreakDays = currentStreak(days, today)
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleByDay(w http.ResponseWriter, r *http.Request) {
	days := defaultByDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "days: invalid integer")
			return
		}
		days = n
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	start := s.today().AddDate(0, 0, -(days - 1))
	totals := make(map[string]int)
	for _, sess := range s.sessions {
		if sess.ParsedDate().Before(start) {
			continue
		}
		totals[sess.PracticeDate] += sess.Minutes
	}
	out := make([]practice.DayMinutes, 0, len(totals))
	for date, minutes := range totals {
		out = append(out, practice.DayMinutes{Date: date, Minutes: minutes})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) addPieceLocked(in pieceIn) practice.Piece {
	piece := practice.Piece{
		ID:         s.nextPieceID,
		Title:      in.Title,
		Composer:   in.Composer,
		Difficulty: in.Difficulty,
		Notes:      in.Notes,
	}
	s.nextPieceID++
	s.pieces = append([]practice.Piece{piece}, s.pieces...)
	return piece
}

func (s *Server) addSessionLocked(in practice.SessionInput) practice.Session {
	sess := practice.Session{
		ID:           s.nextSessionID,
		PieceID:      in.PieceID,
		PracticeDate: in.PracticeDate,
		Minutes:      in.Minutes,
		Focus:        in.Focus,
		Notes:        in.Notes,
	}
	s.nextSessionID++
	s.sessions = append(s.sessions, sess)
	return sess
}

func (s *Server) pieceIndexLocked(id int64) int {
	for i, p := range s.pieces {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// today is the server's local calendar date at midnight UTC, which keeps
// day arithmetic free of DST shifts.
func (s *Server) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func validateSession(in practice.SessionInput) string {
	if _, err := time.Parse(practice.DateLayout, in.PracticeDate); err != nil {
		return "practice_date: invalid date"
	}
	if in.Minutes < practice.MinSessionMinutes || in.Minutes > practice.MaxSessionMinutes {
		return fmt.Sprintf("minutes: must be between %d and %d", practice.MinSessionMinutes, practice.MaxSessionMinutes)
	}
	if in.Focus != nil && utf8.RuneCountInString(*in.Focus) > practice.MaxFocusLength {
		return fmt.Sprintf("focus: at most %d characters", practice.MaxFocusLength)
	}
	if in.Notes != nil && utf8.RuneCountInString(*in.Notes) > practice.MaxNotesLength {
		return fmt.Sprintf("notes: at most %d characters", practice.MaxNotesLength)
	}
	return ""
}

func currentStreak(days map[time.Time]bool, today time.Time) int {
	streak := 0
	for d := today; days[d]; d = d.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

func longestStreak(days map[time.Time]bool) int {
	sorted := make([]time.Time, 0, len(days))
	for d := range days {
		if !d.IsZero() {
			sorted = append(sorted, d)
		}
	}
	if len(sorted) == 0 {
		return 0
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })
	longest, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Equal(sorted[i-1].AddDate(0, 0, 1)) {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}
	return longest
}

func lastDay(days map[time.Time]bool) time.Time {
	var last time.Time
	for d := range days {
		if d.After(last) {
			last = d
		}
	}
	return last
}

// topTitle picks the most practiced title, breaking ties alphabetically.
func topTitle(minutes map[string]int) string {
	best, bestMinutes := "", 0
	for title, m := range minutes {
		if m > bestMinutes || (m == bestMinutes && title < best) {
			best, bestMinutes = title, m
		}
	}
	return best
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
