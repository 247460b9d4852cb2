// Package practice provides an HTTP client for the Piano Practice Tracker API.
//
// # Overview
//
// The client is a thin transport layer: it attaches the session cookie,
// encodes JSON bodies, and decodes JSON responses into the types in types.go.
// All business logic (ownership checks, streaks, 7-day aggregates) lives on
// the server.
//
// # Client Usage
//
//	client, err := practice.NewClient(practice.Options{
//		BaseURL:       cfg.BaseURL,
//		SessionCookie: creds.Cookie,
//	})
//	if err != nil {
//		return fmt.Errorf("init api client: %w", err)
//	}
//	profile, err := client.FetchProfile(ctx)
//
// Endpoints without a typed helper can be reached through Call:
//
//	pieces, err := practice.Call[[]practice.Piece](ctx, client, http.MethodGet, "/api/pieces")
//
// # Endpoints
//
//   - GET /api/me: profile with aggregate counters and streaks
//   - GET /api/pieces, POST /api/pieces, DELETE /api/pieces/{id}
//   - GET /api/sessions, POST /api/sessions
//   - GET /api/stats/overview, GET /api/stats/by-day
//
// /login and /logout are full-page routes owned by the server; the client only
// renders their URLs.
//
// # Request Handling
//
// Every request:
//   - carries the session cookie through a cookie jar scoped to the base URL
//   - defaults Content-Type and Accept to application/json (callers may override)
//   - carries a fresh X-Request-ID for correlating with server logs
//   - is bounded only by the caller's context unless Options.Timeout is set
//
// There is no retry and no caching; every call is a fresh round trip.
//
// # Error Handling
//
//   - Non-2xx responses: *StatusError carrying the status code and body text
//   - Network failures: wrapped as "execute request: ..."
//   - Malformed JSON: wrapped as "decode response: ..."
//   - Input rejected locally: wraps ErrValidation, no request is sent
package practice
