package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which panels stack vertically.
	LayoutCompactWidth = 100

	// LayoutWideWidth gives the piece list a narrower share of the screen.
	LayoutWideWidth = 150
)

// Panel sizing.
const (
	// RecentSessionsLimit is how many sessions the recent panel shows.
	RecentSessionsLimit = 8

	// MinutesByDayWindow is the number of days drawn in the stats bar strip.
	MinutesByDayWindow = 7

	// BarWidth is the longest bar in the minutes strip.
	BarWidth = 24
)

// Timing constants.
const (
	// DefaultUIInterval is how often the view re-reads the coordinator state.
	DefaultUIInterval = time.Second

	// StatusClearAfter is how long a transient status stays visible.
	StatusClearAfter = 4 * time.Second
)
