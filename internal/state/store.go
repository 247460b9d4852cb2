package state

import (
	"slices"
	"sync"
	"time"

	"github.com/pianopractice/practice-tracker/internal/practice"
)

// Snapshot represents the coordinator state handed to the views.
type Snapshot struct {
	Profile             *practice.Profile // nil means logged out
	Pieces              []practice.Piece
	TitleDraft          string
	ComposerDraft       string
	Status              string
	RefreshTick         int
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // consecutive failed loads
}

// LoggedIn reports whether the last load produced a profile.
func (s Snapshot) LoggedIn() bool {
	return s.Profile != nil
}

// IsOffline returns true when loads have failed repeatedly.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Replace installs a freshly loaded profile and piece list wholesale.
func (s *Store) Replace(profile *practice.Profile, pieces []practice.Piece) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Profile = cloneProfile(profile)
	s.snapshot.Pieces = slices.Clone(pieces)
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Fail drops to the logged-out state and shows the raw error message.
// Pieces are kept so a transient outage does not blank the list.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Profile = nil
	s.snapshot.Status = err.Error()
	s.snapshot.LastError = err
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures++
}

// PrependPiece puts a newly created piece at the head of the list.
func (s *Store) PrependPiece(p practice.Piece) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Pieces = append([]practice.Piece{p}, s.snapshot.Pieces...)
}

// RemovePiece drops the piece with the given id and reports whether it was present.
func (s *Store) RemovePiece(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.snapshot.Pieces)
	s.snapshot.Pieces = slices.DeleteFunc(slices.Clone(s.snapshot.Pieces), func(p practice.Piece) bool {
		return p.ID == id
	})
	return len(s.snapshot.Pieces) != before
}

// SetDrafts stores the add-piece form contents.
func (s *Store) SetDrafts(title, composer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.TitleDraft = title
	s.snapshot.ComposerDraft = composer
}

// SetStatus replaces the status line.
func (s *Store) SetStatus(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Status = msg
}

// BumpRefresh increments the refresh counter and returns the new value.
func (s *Store) BumpRefresh() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.RefreshTick++
	return s.snapshot.RefreshTick
}

// Clear forgets the profile and pieces. The refresh counter keeps counting.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Profile = nil
	s.snapshot.Pieces = nil
	s.snapshot.TitleDraft = ""
	s.snapshot.ComposerDraft = ""
	s.snapshot.LastError = nil
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Profile = cloneProfile(s.snapshot.Profile)
	snap.Pieces = slices.Clone(s.snapshot.Pieces)
	return snap
}

func cloneProfile(p *practice.Profile) *practice.Profile {
	if p == nil {
		return nil
	}
	dup := *p
	return &dup
}
