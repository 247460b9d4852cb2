// Package state holds the root coordinator of the practice tracker and the
// store it writes to.
//
// The Coordinator runs every network call off the UI goroutine, so all of
// its state lives in a Store guarded by a sync.RWMutex. Views never share the
// stored slices: Snapshot returns copies.
//
// Lifecycle:
//
//	Load         profile + pieces in parallel; any failure means logged out
//	AddPiece     POST, prepend locally, "Piece added", bump refresh, reload
//	DeletePiece  DELETE, remove locally regardless, reload on failure
//	LogSession   POST, bump refresh, reload
//
// A reload always wins by replacing profile and pieces wholesale. The refresh
// counter only ever increases; views that fetch their own data (stats, recent
// sessions) refetch when it changes.
package state
