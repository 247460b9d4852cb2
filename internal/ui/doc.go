// Package ui is the Bubble Tea terminal interface of the practice tracker.
//
// # Layout
//
//	┌ header: name, account, status, last update ─────────────────┐
//	│ command bar: key hints for the focused panel, theme         │
//	│ Welcome, Ada  ada@example.com                                │
//	│ 5-day streak · longest 9 · 3 pieces · 12 sessions · ...      │
//	├ Pieces (3) ──────────┬ Last 7 days ─────────────────────────┤
//	│ › Nocturne           │ Add piece                            │
//	│   Gymnopédie — Satie │ Log session                          │
//	│                      │ Recent sessions                      │
//	└──────────────────────┴──────────────────────────────────────┘
//
// When no profile could be loaded the body is replaced by the signed-out
// call to action showing the login URL.
//
// # Data flow
//
// All coordinator work runs inside tea.Cmd functions and reports back as
// messages. The model never holds coordinator state of its own: it re-reads
// state.Store snapshots after every mutation and on each tick. The stats and
// recent-sessions panels fetch their own data whenever the snapshot's refresh
// counter changes (Sync) and fall back silently on failure.
//
// # Keys
//
// Keys go to the focused form first, so letters type into inputs. Only
// ctrl+c, tab, shift+tab and esc are global. Piece deletion always goes
// through a y/n confirmation modal.
package ui
