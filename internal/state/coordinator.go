package state

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/pianopractice/practice-tracker/internal/logging"
	"github.com/pianopractice/practice-tracker/internal/practice"
)

// StatusPieceAdded is shown after a piece is created.
const StatusPieceAdded = "Piece added"

// Coordinator owns the top-level session: it loads the profile and pieces,
// applies mutations locally and reconciles with a reload.
type Coordinator struct {
	api    practice.API
	store  *Store
	logger *slog.Logger
}

// NewCoordinator wires a coordinator over api. A nil store or logger is
// replaced with a fresh one.
func NewCoordinator(api practice.API, store *Store, logger *slog.Logger) *Coordinator {
	if store == nil {
		store = &Store{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Coordinator{api: api, store: store, logger: logger}
}

// Store exposes the state the coordinator writes to.
func (c *Coordinator) Store() *Store {
	return c.store
}

// Snapshot is shorthand for Store().Snapshot().
func (c *Coordinator) Snapshot() Snapshot {
	return c.store.Snapshot()
}

// Load fetches the profile and pieces together. Any failure treats the user
// as logged out and records the error message as the status.
func (c *Coordinator) Load(ctx context.Context) error {
	var (
		profile *practice.Profile
		pieces  []practice.Piece
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := c.api.FetchProfile(gctx)
		profile = p
		return err
	})
	g.Go(func() error {
		p, err := c.api.FetchPieces(gctx)
		pieces = p
		return err
	})
	if err := g.Wait(); err != nil {
		c.logger.Warn("load failed", "error", err)
		c.store.Fail(err)
		return err
	}
	c.store.Replace(profile, pieces)
	c.logger.Debug("loaded", "pieces", len(pieces))
	return nil
}

// AddPiece creates a piece, shows it immediately at the head of the list and
// then reconciles. Errors from the create request are returned as is.
func (c *Coordinator) AddPiece(ctx context.Context, title, composer string) (*practice.Piece, error) {
	in := practice.NewPieceInput(title, composer)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	created, err := c.api.CreatePiece(ctx, in)
	if err != nil {
		c.logger.Warn("create piece failed", "title", in.Title, "error", err)
		return nil, err
	}
	c.store.PrependPiece(*created)
	c.store.SetDrafts("", "")
	c.store.SetStatus(StatusPieceAdded)
	c.logger.Info("piece added", "piece_id", created.ID)

	if _, err := c.BumpRefresh(ctx); err != nil {
		c.logger.Debug("reload after add failed", "error", err)
	}
	return created, nil
}

// DeletePiece deletes a piece the caller has already confirmed. The piece
// leaves local state whatever the server answers. There is no rollback:
// both outcomes reload and bump the refresh counter, and a failure is
// returned after that reconcile.
func (c *Coordinator) DeletePiece(ctx context.Context, id int64) error {
	err := c.api.DeletePiece(ctx, id)
	c.store.RemovePiece(id)
	if err == nil {
		c.logger.Info("piece deleted", "piece_id", id)
		if _, loadErr := c.BumpRefresh(ctx); loadErr != nil {
			c.logger.Debug("reload after delete failed", "error", loadErr)
		}
		return nil
	}

	c.logger.Warn("delete piece failed", "piece_id", id, "error", err)
	if _, loadErr := c.BumpRefresh(ctx); loadErr != nil {
		c.logger.Debug("reconcile after delete failed", "error", loadErr)
	}
	c.store.SetStatus(err.Error())
	return fmt.Errorf("delete piece %d: %w", id, err)
}

// LogSession validates and records a practice session, then refreshes.
func (c *Coordinator) LogSession(ctx context.Context, in practice.SessionInput) (*practice.Session, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	created, err := c.api.CreateSession(ctx, in)
	if err != nil {
		c.logger.Warn("log session failed", "piece_id", in.PieceID, "error", err)
		return nil, err
	}
	c.logger.Info("session logged", "session_id", created.ID, "minutes", created.Minutes)
	if _, err := c.BumpRefresh(ctx); err != nil {
		c.logger.Debug("reload after session failed", "error", err)
	}
	return created, nil
}

// BumpRefresh reloads and increments the refresh counter so dependent views
// refetch. The counter advances even when the reload fails.
func (c *Coordinator) BumpRefresh(ctx context.Context) (int, error) {
	err := c.Load(ctx)
	return c.store.BumpRefresh(), err
}

// Logout forgets the local session. The server's /logout page is external.
func (c *Coordinator) Logout() {
	c.store.Clear()
	c.store.SetStatus("")
}
