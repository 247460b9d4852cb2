package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pianopractice/practice-tracker/internal/practice"
)

// StatsLoadingText is shown until the first successful fetch, and again after
// a failed one.
const StatsLoadingText = "Loading stats…"

// statsMsg carries the result of one stats fetch.
type statsMsg struct {
	tick    int
	stats   *practice.Stats
	days    []practice.DayMinutes
	err     error
	daysErr error
}

// StatsPanel fetches its own overview whenever the refresh counter changes.
// Failures are soft: the panel falls back to the loading text and the error
// only reaches the debug log.
type StatsPanel struct {
	ctx    context.Context
	api    practice.API
	logger *slog.Logger

	synced   bool
	lastTick int

	stats *practice.Stats
	days  []practice.DayMinutes
}

// NewStatsPanel creates a panel that has not fetched yet.
func NewStatsPanel(ctx context.Context, api practice.API, logger *slog.Logger) StatsPanel {
	return StatsPanel{ctx: ctx, api: api, logger: logger}
}

// Sync returns a fetch command when tick differs from the last value seen,
// including the first call, and nil otherwise.
func (p *StatsPanel) Sync(tick int) tea.Cmd {
	if p.synced && tick == p.lastTick {
		return nil
	}
	p.synced = true
	p.lastTick = tick
	return fetchStatsCmd(p.ctx, p.api, tick)
}

// Apply installs a fetch result. Results for a tick older than the last
// Sync are dropped.
func (p *StatsPanel) Apply(msg statsMsg) {
	if p.synced && msg.tick != p.lastTick {
		return
	}
	if msg.err != nil {
		p.logger.Debug("stats fetch failed", "tick", msg.tick, "error", msg.err)
		p.stats = nil
		p.days = nil
		return
	}
	if msg.daysErr != nil {
		p.logger.Debug("minutes by day fetch failed", "tick", msg.tick, "error", msg.daysErr)
	}
	p.stats = msg.stats
	p.days = msg.days
}

// Stats returns the last snapshot, nil while loading.
func (p StatsPanel) Stats() *practice.Stats {
	return p.stats
}

func fetchStatsCmd(ctx context.Context, api practice.API, tick int) tea.Cmd {
	return func() tea.Msg {
		stats, err := api.FetchStats(ctx)
		if err != nil {
			return statsMsg{tick: tick, err: err}
		}
		// The by-day strip is optional decoration; an older server without
		// the endpoint still gets the overview.
		days, daysErr := api.FetchMinutesByDay(ctx, MinutesByDayWindow)
		if daysErr != nil {
			days = nil
		}
		return statsMsg{tick: tick, stats: stats, days: days, daysErr: daysErr}
	}
}

// View renders the overview and the minutes strip.
func (p StatsPanel) View(styles Styles, width int) string {
	if p.stats == nil {
		return styles.Muted.Render(StatsLoadingText)
	}

	var b strings.Builder
	row := func(label, value string) {
		b.WriteString(styles.Muted.Render(padRight(label, 18)))
		b.WriteString(styles.Text.Render(value))
		b.WriteString("\n")
	}
	row("Last 7 days", plural(p.stats.TotalMinutesLast7Days, "minute"))
	row("Top piece", truncate(p.stats.TopPiece(), max(width-20, 8)))
	row("Current streak", plural(p.stats.CurrentStreakDays, "day"))

	if len(p.days) > 0 {
		b.WriteString("\n")
		b.WriteString(renderMinutesStrip(p.days, styles, min(BarWidth, max(width-18, 4))))
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderMinutesStrip draws one bar per day scaled to the busiest day.
func renderMinutesStrip(days []practice.DayMinutes, styles Styles, barWidth int) string {
	peak := 0
	for _, d := range days {
		peak = max(peak, d.Minutes)
	}
	lines := make([]string, 0, len(days))
	for _, d := range days {
		label := d.Date
		if t, err := parseDate(d.Date); err == nil {
			label = t.Format("Mon 02")
		}
		n := 0
		if peak > 0 {
			n = d.Minutes * barWidth / peak
		}
		if d.Minutes > 0 && n == 0 {
			n = 1
		}
		bar := styles.MinutesBar.Render(strings.Repeat("█", n)) + styles.Faint.Render(strings.Repeat("·", barWidth-n))
		lines = append(lines, fmt.Sprintf("%s %s %s",
			styles.Muted.Render(padRight(label, 7)),
			bar,
			styles.Text.Render(fmt.Sprintf("%3d", d.Minutes))))
	}
	return strings.Join(lines, "\n")
}
