// Package app is the composition root for practice-tracker.
//
// # Overview
//
// Open turns a config.Config into a Runtime: it opens the JSON log file,
// reads the stored session cookie, and builds the practice.Client and the
// state.Coordinator that every command shares. Run starts the TUI on top of
// that runtime.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Open()     │
//	└──────┬───────┘
//	       ├─────> logging.Open()       JSON log file
//	       ├─────> auth.Load()          session cookie
//	       ├─────> practice.NewClient() HTTP client with cookie jar
//	       └─────> state.NewCoordinator()
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> prefs.Load()         saved theme
//	       ├─────> StartPoller()        only when poll > 0
//	       └─────> ui.Run()             blocks; initial load on mount
//
// # Polling Behavior
//
// Polling is opt-in. When enabled the poller waits one interval, then calls
// Coordinator.BumpRefresh, which reloads the profile and pieces and advances
// the refresh tick so the stats panel refetches. Consecutive failures double
// the wait up to 30 seconds; a success resets it. Errors are logged and
// polling continues.
package app
