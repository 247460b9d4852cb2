package state

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pianopractice/practice-tracker/internal/practice"
)

// fakeAPI is an in-memory practice.API that records calls.
type fakeAPI struct {
	mu sync.Mutex

	profile    *practice.Profile
	pieces     []practice.Piece
	profileErr error
	piecesErr  error
	createErr  error
	deleteErr  error
	sessionErr error
	nextID     int64

	creates  []practice.PieceInput
	deletes  []int64
	sessions []practice.SessionInput
	loads    int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		profile: &practice.Profile{Email: "ada@example.com", DisplayName: practice.String("Ada")},
		pieces:  []practice.Piece{{ID: 2, Title: "Gymnopédie No. 1", Composer: practice.String("Satie")}, {ID: 1, Title: "Minuet in G"}},
		nextID:  7,
	}
}

func (f *fakeAPI) FetchProfile(context.Context) (*practice.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	p := *f.profile
	return &p, nil
}

func (f *fakeAPI) FetchPieces(context.Context) ([]practice.Piece, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.piecesErr != nil {
		return nil, f.piecesErr
	}
	return append([]practice.Piece(nil), f.pieces...), nil
}

func (f *fakeAPI) CreatePiece(_ context.Context, in practice.PieceInput) (*practice.Piece, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, in)
	if f.createErr != nil {
		return nil, f.createErr
	}
	p := practice.Piece{ID: f.nextID, Title: in.Title, Composer: in.Composer}
	f.nextID++
	f.pieces = append([]practice.Piece{p}, f.pieces...)
	return &p, nil
}

func (f *fakeAPI) DeletePiece(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, p := range f.pieces {
		if p.ID == id {
			f.pieces = append(f.pieces[:i], f.pieces[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeAPI) CreateSession(_ context.Context, in practice.SessionInput) (*practice.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = append(f.sessions, in)
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	return &practice.Session{ID: int64(len(f.sessions)), PieceID: in.PieceID, PracticeDate: in.PracticeDate, Minutes: in.Minutes}, nil
}

func (f *fakeAPI) FetchSessions(context.Context, practice.SessionQuery) ([]practice.Session, error) {
	return nil, nil
}

func (f *fakeAPI) FetchStats(context.Context) (*practice.Stats, error) {
	return &practice.Stats{}, nil
}

func (f *fakeAPI) FetchMinutesByDay(context.Context, int) ([]practice.DayMinutes, error) {
	return nil, nil
}

func TestCoordinator_LoadSuccess(t *testing.T) {
	api := newFakeAPI()
	c := NewCoordinator(api, nil, nil)

	require.NoError(t, c.Load(context.Background()))

	snap := c.Snapshot()
	require.True(t, snap.LoggedIn())
	require.Equal(t, "Ada", snap.Profile.Name())
	require.Len(t, snap.Pieces, 2)
	require.NoError(t, snap.LastError)
}

func TestCoordinator_LoadFailureMeansLoggedOut(t *testing.T) {
	tests := []struct {
		name      string
		configure func(*fakeAPI)
		wantMsg   string
	}{
		{
			name:      "profile fails",
			configure: func(f *fakeAPI) { f.profileErr = &practice.StatusError{StatusCode: 401, Body: "not authenticated"} },
			wantMsg:   "401 not authenticated",
		},
		{
			name:      "pieces fail",
			configure: func(f *fakeAPI) { f.piecesErr = errors.New("connection refused") },
			wantMsg:   "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			tt.configure(api)
			c := NewCoordinator(api, nil, nil)

			err := c.Load(context.Background())
			require.Error(t, err)

			snap := c.Snapshot()
			require.False(t, snap.LoggedIn())
			require.Equal(t, tt.wantMsg, snap.Status)
			require.Equal(t, 1, snap.ConsecutiveFailures)
		})
	}
}

func TestCoordinator_AddPieceWithoutComposer(t *testing.T) {
	api := newFakeAPI()
	c := NewCoordinator(api, nil, nil)
	require.NoError(t, c.Load(context.Background()))
	c.Store().SetDrafts("Nocturne", "")

	created, err := c.AddPiece(context.Background(), "Nocturne", "  ")
	require.NoError(t, err)
	require.Equal(t, int64(7), created.ID)

	require.Len(t, api.creates, 1)
	require.Equal(t, "Nocturne", api.creates[0].Title)
	require.Nil(t, api.creates[0].Composer)

	snap := c.Snapshot()
	require.Equal(t, int64(7), snap.Pieces[0].ID)
	require.Equal(t, "Nocturne", snap.Pieces[0].Label())
	require.Equal(t, StatusPieceAdded, snap.Status)
	require.Empty(t, snap.TitleDraft)
	require.Empty(t, snap.ComposerDraft)
	require.Equal(t, 1, snap.RefreshTick)
	require.Equal(t, 2, api.loads)
}

func TestCoordinator_AddPieceRequiresTitle(t *testing.T) {
	api := newFakeAPI()
	c := NewCoordinator(api, nil, nil)

	_, err := c.AddPiece(context.Background(), "   ", "Chopin")
	require.ErrorIs(t, err, practice.ErrValidation)
	require.Empty(t, api.creates)
	require.Zero(t, c.Snapshot().RefreshTick)
}

func TestCoordinator_AddPieceErrorPropagates(t *testing.T) {
	api := newFakeAPI()
	api.createErr = &practice.StatusError{StatusCode: 500, Body: "boom"}
	c := NewCoordinator(api, nil, nil)
	require.NoError(t, c.Load(context.Background()))

	_, err := c.AddPiece(context.Background(), "Nocturne", "")
	var statusErr *practice.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, 500, statusErr.StatusCode)
	require.Len(t, c.Snapshot().Pieces, 2)
	require.Zero(t, c.Snapshot().RefreshTick)
}

func TestCoordinator_DeletePieceRemovesExactlyThatPiece(t *testing.T) {
	api := newFakeAPI()
	c := NewCoordinator(api, nil, nil)
	require.NoError(t, c.Load(context.Background()))

	require.NoError(t, c.DeletePiece(context.Background(), 2))
	require.Equal(t, []int64{2}, api.deletes)

	pieces := c.Snapshot().Pieces
	require.Len(t, pieces, 1)
	require.Equal(t, int64(1), pieces[0].ID)
}

func TestCoordinator_DeletePieceBumpsRefresh(t *testing.T) {
	api := newFakeAPI()
	c := NewCoordinator(api, nil, nil)
	require.NoError(t, c.Load(context.Background()))
	require.Zero(t, c.Snapshot().RefreshTick)
	require.Equal(t, 1, api.loads)

	require.NoError(t, c.DeletePiece(context.Background(), 2))

	snap := c.Snapshot()
	require.Equal(t, 1, snap.RefreshTick)
	require.Equal(t, 2, api.loads, "profile reloaded after delete")
	require.Len(t, snap.Pieces, 1)
	require.True(t, snap.LoggedIn())
}

func TestCoordinator_DeletePieceFailureReconciles(t *testing.T) {
	api := newFakeAPI()
	api.deleteErr = &practice.StatusError{StatusCode: 404, Body: "Piece not found"}
	c := NewCoordinator(api, nil, nil)
	require.NoError(t, c.Load(context.Background()))

	err := c.DeletePiece(context.Background(), 2)
	require.Error(t, err)
	require.Contains(t, err.Error(), "404 Piece not found")

	snap := c.Snapshot()
	// The reload restored what the server still has.
	require.Len(t, snap.Pieces, 2)
	require.Equal(t, "404 Piece not found", snap.Status)
	require.True(t, snap.LoggedIn())
	require.Equal(t, 1, snap.RefreshTick)
	require.Equal(t, 2, api.loads)
}

func TestCoordinator_LogSession(t *testing.T) {
	api := newFakeAPI()
	c := NewCoordinator(api, nil, nil)
	require.NoError(t, c.Load(context.Background()))

	in := practice.NewSessionInput(1, "2026-10-18", 45, "scales", "")
	session, err := c.LogSession(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, 45, session.Minutes)
	require.Len(t, api.sessions, 1)
	require.Nil(t, api.sessions[0].Notes)
	require.Equal(t, 1, c.Snapshot().RefreshTick)
}

func TestCoordinator_LogSessionRejectsOutOfRangeMinutes(t *testing.T) {
	for _, minutes := range []int{0, 601, -5} {
		api := newFakeAPI()
		c := NewCoordinator(api, nil, nil)

		_, err := c.LogSession(context.Background(), practice.NewSessionInput(1, "2026-10-18", minutes, "", ""))
		require.ErrorIs(t, err, practice.ErrValidation, "minutes=%d", minutes)
		require.Empty(t, api.sessions)
	}
}

func TestCoordinator_BumpRefreshAdvancesEvenOnFailure(t *testing.T) {
	api := newFakeAPI()
	c := NewCoordinator(api, nil, nil)

	tick, err := c.BumpRefresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, tick)

	api.profileErr = errors.New("down")
	tick, err = c.BumpRefresh(context.Background())
	require.Error(t, err)
	require.Equal(t, 2, tick)
}

func TestCoordinator_Logout(t *testing.T) {
	api := newFakeAPI()
	c := NewCoordinator(api, nil, nil)
	require.NoError(t, c.Load(context.Background()))

	c.Logout()
	snap := c.Snapshot()
	require.False(t, snap.LoggedIn())
	require.Empty(t, snap.Pieces)
}
