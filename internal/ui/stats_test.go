package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pianopractice/practice-tracker/internal/logging"
)

func TestStatsPanel_SyncFetchesOncePerTick(t *testing.T) {
	api := newCountingAPI()
	panel := NewStatsPanel(context.Background(), api, logging.Discard())

	cmd := panel.Sync(0)
	if cmd == nil {
		t.Fatalf("first Sync should fetch")
	}
	for _, msg := range runCmd(cmd) {
		panel.Apply(msg.(statsMsg))
	}
	if panel.Sync(0) != nil {
		t.Fatalf("Sync with unchanged tick should not fetch")
	}
	if got := api.StatsCalls(); got != 1 {
		t.Fatalf("stats calls = %d, want 1", got)
	}

	api.stats.CurrentStreakDays = 4
	cmd = panel.Sync(1)
	if cmd == nil {
		t.Fatalf("Sync after bump should fetch")
	}
	if panel.Sync(1) != nil {
		t.Fatalf("second Sync for same tick should not fetch")
	}
	for _, msg := range runCmd(cmd) {
		panel.Apply(msg.(statsMsg))
	}
	if got := api.StatsCalls(); got != 2 {
		t.Fatalf("stats calls = %d, want 2", got)
	}
	if panel.Stats().CurrentStreakDays != 4 {
		t.Fatalf("streak = %d, want updated value 4", panel.Stats().CurrentStreakDays)
	}
}

func TestStatsPanel_ViewLoadingAndData(t *testing.T) {
	api := newCountingAPI()
	panel := NewStatsPanel(context.Background(), api, logging.Discard())
	styles := GetTheme("Nightfox").Styles()

	if got := panel.View(styles, 60); !strings.Contains(got, StatsLoadingText) {
		t.Fatalf("View before fetch = %q, want loading text", got)
	}

	for _, msg := range runCmd(panel.Sync(0)) {
		panel.Apply(msg.(statsMsg))
	}
	view := panel.View(styles, 60)
	for _, want := range []string{"90 minutes", "Minuet in G", "3 days"} {
		if !strings.Contains(view, want) {
			t.Fatalf("View = %q, missing %q", view, want)
		}
	}
}

func TestStatsPanel_FailureRevertsToLoading(t *testing.T) {
	api := newCountingAPI()
	panel := NewStatsPanel(context.Background(), api, logging.Discard())
	styles := GetTheme("Nightfox").Styles()

	for _, msg := range runCmd(panel.Sync(0)) {
		panel.Apply(msg.(statsMsg))
	}
	api.statsErr = errors.New("500 boom")
	for _, msg := range runCmd(panel.Sync(1)) {
		panel.Apply(msg.(statsMsg))
	}

	if panel.Stats() != nil {
		t.Fatalf("Stats() = %#v, want nil after failure", panel.Stats())
	}
	view := panel.View(styles, 60)
	if !strings.Contains(view, StatsLoadingText) || strings.Contains(view, "boom") {
		t.Fatalf("View after failure = %q, want loading text and no error", view)
	}
}

func TestTopPieceFallback(t *testing.T) {
	api := newCountingAPI()
	api.stats.TopPieceLast7Days = nil
	panel := NewStatsPanel(context.Background(), api, logging.Discard())
	for _, msg := range runCmd(panel.Sync(0)) {
		panel.Apply(msg.(statsMsg))
	}
	if view := panel.View(GetTheme("Slate").Styles(), 60); !strings.Contains(view, "—") {
		t.Fatalf("View = %q, want em dash placeholder for missing top piece", view)
	}
}

func TestStatsPanel_DropsResultForOlderTick(t *testing.T) {
	api := newCountingAPI()
	panel := NewStatsPanel(context.Background(), api, logging.Discard())

	slow := runCmd(panel.Sync(0))
	api.stats.CurrentStreakDays = 9
	fresh := runCmd(panel.Sync(1))

	for _, msg := range fresh {
		panel.Apply(msg.(statsMsg))
	}
	for _, msg := range slow {
		panel.Apply(msg.(statsMsg))
	}
	if panel.Stats() == nil || panel.Stats().CurrentStreakDays != 9 {
		t.Fatalf("Stats() = %#v, want the tick 1 result to survive a late tick 0 result", panel.Stats())
	}

	panel.Apply(statsMsg{tick: 0, err: errors.New("late failure")})
	if panel.Stats() == nil {
		t.Fatalf("a stale failure should not clear newer stats")
	}
}

func TestStatsPanel_MinutesByDayFailureIsLogged(t *testing.T) {
	api := newCountingAPI()
	api.daysErr = errors.New("404 not found")
	var buf bytes.Buffer
	panel := NewStatsPanel(context.Background(), api, logging.New(&buf, "debug"))

	for _, msg := range runCmd(panel.Sync(0)) {
		panel.Apply(msg.(statsMsg))
	}
	if panel.Stats() == nil || panel.Stats().TotalMinutesLast7Days != 90 {
		t.Fatalf("Stats() = %#v, want the overview despite the by-day failure", panel.Stats())
	}
	if panel.days != nil {
		t.Fatalf("days = %#v, want none", panel.days)
	}
	out := buf.String()
	if !strings.Contains(out, "minutes by day fetch failed") || !strings.Contains(out, "404 not found") {
		t.Fatalf("log = %q, want the by-day error at debug", out)
	}
}
