package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pianopractice/practice-tracker/internal/practice"
)

type sessionsMsg struct {
	tick     int
	sessions []practice.Session
	err      error
}

// RecentSessions lists the latest logged sessions. Like the stats panel it
// refetches on refresh counter changes and fails soft.
type RecentSessions struct {
	ctx    context.Context
	api    practice.API
	logger *slog.Logger

	synced   bool
	lastTick int
	loaded   bool
	sessions []practice.Session
}

func NewRecentSessions(ctx context.Context, api practice.API, logger *slog.Logger) RecentSessions {
	return RecentSessions{ctx: ctx, api: api, logger: logger}
}

// Sync returns a fetch command when tick changed since the last call.
func (r *RecentSessions) Sync(tick int) tea.Cmd {
	if r.synced && tick == r.lastTick {
		return nil
	}
	r.synced = true
	r.lastTick = tick
	ctx, api := r.ctx, r.api
	return func() tea.Msg {
		sessions, err := api.FetchSessions(ctx, practice.SessionQuery{})
		return sessionsMsg{tick: tick, sessions: sessions, err: err}
	}
}

// Apply installs a fetch result unless a newer Sync has superseded it.
func (r *RecentSessions) Apply(msg sessionsMsg) {
	if r.synced && msg.tick != r.lastTick {
		return
	}
	if msg.err != nil {
		r.logger.Debug("sessions fetch failed", "tick", msg.tick, "error", msg.err)
		r.loaded = false
		r.sessions = nil
		return
	}
	r.loaded = true
	r.sessions = msg.sessions
}

// View renders up to RecentSessionsLimit sessions, resolving piece titles
// from the coordinator's list.
func (r RecentSessions) View(pieces []practice.Piece, styles Styles, width int) string {
	if !r.loaded {
		return styles.Muted.Render("Loading sessions…")
	}
	if len(r.sessions) == 0 {
		return styles.Muted.Render("No sessions yet")
	}

	titles := make(map[int64]string, len(pieces))
	for _, p := range pieces {
		titles[p.ID] = p.Title
	}

	var lines []string
	for i, s := range r.sessions {
		if i == RecentSessionsLimit {
			break
		}
		title, ok := titles[s.PieceID]
		if !ok {
			title = fmt.Sprintf("piece #%d", s.PieceID)
		}
		line := styles.Muted.Render(s.PracticeDate) + " " +
			styles.Text.Render(fmt.Sprintf("%4dm", s.Minutes)) + " " +
			styles.Accent.Render(truncate(title, max(width-20, 8)))
		if s.Focus != nil && *s.Focus != "" {
			line += styles.Faint.Render(" · " + truncate(*s.Focus, 24))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
