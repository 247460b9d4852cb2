// Package logtail reads the tail of the client's JSON log file and renders
// records for humans.
//
// Read keeps a ring buffer of maxLines entries, so it makes one pass over the
// file and holds O(maxLines) lines regardless of file size. Parse turns a slog
// JSON record into an Entry; Format and Entry.Colorize render entries as
//
//	2026-10-18 21:01:05 WARN  load failed error="401 not authenticated"
package logtail
