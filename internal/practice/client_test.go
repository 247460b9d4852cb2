package practice

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != DefaultBaseURL {
		t.Fatalf("base = %q, want %q", u.String(), DefaultBaseURL)
	}

	u, err = parseBaseURL("example.com:1234/prefix/?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Host != "example.com:1234" {
		t.Fatalf("url = %q, want http://example.com:1234", u.String())
	}
	if u.Path != "/prefix" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	if _, err := parseBaseURL("http://"); err == nil {
		t.Fatalf("parseBaseURL accepted a URL without host")
	}
}

func TestClient_ResolveKeepsPrefixAndPageURLs(t *testing.T) {
	c, err := NewClient(Options{BaseURL: "https://practice.example/app/"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	got := c.resolve("/api/pieces", url.Values{"a": {"1"}}).String()
	if got != "https://practice.example/app/api/pieces?a=1" {
		t.Fatalf("resolve = %q", got)
	}
	if c.LoginURL() != "https://practice.example/app/login" {
		t.Fatalf("LoginURL = %q", c.LoginURL())
	}
	if c.LogoutURL() != "https://practice.example/app/logout" {
		t.Fatalf("LogoutURL = %q", c.LogoutURL())
	}
}

func TestClient_SendsCredentialsAndDefaultHeaders(t *testing.T) {
	t.Parallel()

	var gotCookie, gotContentType, gotUserAgent, gotRequestID, gotCustom string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(DefaultCookieName); err == nil {
			gotCookie = c.Value
		}
		gotContentType = r.Header.Get("Content-Type")
		gotUserAgent = r.Header.Get("User-Agent")
		gotRequestID = r.Header.Get(requestIDHeader)
		gotCustom = r.Header.Get("X-Custom")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Profile{Email: "ada@example.com", CurrentStreakDays: 3})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(Options{BaseURL: server.URL, SessionCookie: "tok"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	profile, err := Call[Profile](context.Background(), c, http.MethodGet, "/api/me", WithHeader("x-custom", "1"))
	if err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	if profile.Email != "ada@example.com" || profile.CurrentStreakDays != 3 {
		t.Fatalf("profile = %#v, want ada streak=3", profile)
	}
	if gotCookie != "tok" {
		t.Fatalf("cookie = %q, want tok", gotCookie)
	}
	if gotContentType != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", gotContentType)
	}
	if !strings.HasPrefix(gotUserAgent, "practice-tracker/") {
		t.Fatalf("User-Agent = %q, want practice-tracker/*", gotUserAgent)
	}
	if gotRequestID == "" {
		t.Fatalf("missing %s header", requestIDHeader)
	}
	if gotCustom != "1" {
		t.Fatalf("X-Custom = %q, want merged caller header", gotCustom)
	}
}

func TestClient_HeaderOverridesDefault(t *testing.T) {
	t.Parallel()

	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(Options{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := Call[[]Piece](context.Background(), c, http.MethodGet, "/api/pieces", WithHeader("Content-Type", "text/plain")); err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	if gotContentType != "text/plain" {
		t.Fatalf("Content-Type = %q, want caller override", gotContentType)
	}
}

func TestClient_EndpointsAndBodies(t *testing.T) {
	t.Parallel()

	var createdPiece map[string]any
	var createdSession map[string]any
	var deletedPath string
	var sessionsQuery, byDayQuery url.Values

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/pieces":
			_, _ = w.Write([]byte(`[{"id":2,"title":"Etude","composer":"Chopin"},{"id":1,"title":"Invention","composer":null}]`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/pieces":
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &createdPiece)
			_, _ = w.Write([]byte(`{"id":7,"title":"Nocturne","composer":null}`))
		case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/pieces/"):
			deletedPath = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodPost && r.URL.Path == "/api/sessions":
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &createdSession)
			_, _ = w.Write([]byte(`{"id":11,"piece_id":7,"practice_date":"2026-10-18","minutes":45,"focus":null,"notes":null}`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/sessions":
			sessionsQuery = r.URL.Query()
			_, _ = w.Write([]byte(`[]`))
		case r.URL.Path == "/api/stats/overview":
			_, _ = w.Write([]byte(`{"total_minutes_last_7_days":90,"top_piece_last_7_days":null,"current_streak_days":2}`))
		case r.URL.Path == "/api/stats/by-day":
			byDayQuery = r.URL.Query()
			_, _ = w.Write([]byte(`[{"date":"2026-10-17","minutes":30}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(Options{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	pieces, err := c.FetchPieces(ctx)
	if err != nil {
		t.Fatalf("FetchPieces returned error: %v", err)
	}
	if len(pieces) != 2 || pieces[0].Label() != "Etude — Chopin" || pieces[1].Composer != nil {
		t.Fatalf("FetchPieces = %#v", pieces)
	}

	piece, err := c.CreatePiece(ctx, NewPieceInput(" Nocturne ", "  "))
	if err != nil {
		t.Fatalf("CreatePiece returned error: %v", err)
	}
	if piece.ID != 7 || piece.Composer != nil {
		t.Fatalf("CreatePiece = %#v, want id 7 without composer", piece)
	}
	if createdPiece["title"] != "Nocturne" {
		t.Fatalf("posted title = %v, want Nocturne", createdPiece["title"])
	}
	if v, ok := createdPiece["composer"]; !ok || v != nil {
		t.Fatalf("posted composer = %v (present=%v), want explicit null", v, ok)
	}

	if err := c.DeletePiece(ctx, 7); err != nil {
		t.Fatalf("DeletePiece returned error: %v", err)
	}
	if deletedPath != "/api/pieces/7" {
		t.Fatalf("delete path = %q", deletedPath)
	}

	session, err := c.CreateSession(ctx, NewSessionInput(7, "2026-10-18", 45, "", ""))
	if err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}
	if session.ID != 11 {
		t.Fatalf("CreateSession = %#v", session)
	}
	if createdSession["piece_id"] != float64(7) || createdSession["minutes"] != float64(45) || createdSession["focus"] != nil {
		t.Fatalf("posted session = %#v", createdSession)
	}

	if _, err := c.FetchSessions(ctx, SessionQuery{PieceID: 7, DateFrom: "2026-10-01", DateTo: "2026-10-18"}); err != nil {
		t.Fatalf("FetchSessions returned error: %v", err)
	}
	if sessionsQuery.Get("piece_id") != "7" || sessionsQuery.Get("date_from") != "2026-10-01" || sessionsQuery.Get("date_to") != "2026-10-18" {
		t.Fatalf("FetchSessions query = %v", sessionsQuery)
	}

	stats, err := c.FetchStats(ctx)
	if err != nil {
		t.Fatalf("FetchStats returned error: %v", err)
	}
	if stats.TotalMinutesLast7Days != 90 || stats.TopPiece() != "—" || stats.CurrentStreakDays != 2 {
		t.Fatalf("FetchStats = %#v", stats)
	}

	days, err := c.FetchMinutesByDay(ctx, 7)
	if err != nil {
		t.Fatalf("FetchMinutesByDay returned error: %v", err)
	}
	if len(days) != 1 || byDayQuery.Get("days") != "7" {
		t.Fatalf("FetchMinutesByDay = %#v query %v", days, byDayQuery)
	}
}

func TestClient_ValidationSkipsNetwork(t *testing.T) {
	t.Parallel()

	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(Options{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx := context.Background()

	if _, err := c.CreatePiece(ctx, NewPieceInput("   ", "Bach")); !errors.Is(err, ErrValidation) {
		t.Fatalf("CreatePiece error = %v, want ErrValidation", err)
	}
	for _, minutes := range []int{0, 601, -5} {
		_, err := c.CreateSession(ctx, NewSessionInput(1, "2026-10-18", minutes, "", ""))
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("CreateSession(minutes=%d) error = %v, want ErrValidation", minutes, err)
		}
	}
	if err := c.DeletePiece(ctx, 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("DeletePiece(0) error = %v, want ErrValidation", err)
	}
	if calls != 0 {
		t.Fatalf("server saw %d requests, want 0", calls)
	}
}

func TestClient_HTTPErrorAndDecodeError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/me":
			http.Error(w, `{"detail":"Missing auth cookie"}`, http.StatusUnauthorized)
		case "/api/pieces":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("{not-json"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(Options{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.FetchProfile(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("FetchProfile error = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusUnauthorized || !strings.Contains(statusErr.Body, "Missing auth cookie") {
		t.Fatalf("StatusError = %#v", statusErr)
	}
	if !strings.HasPrefix(err.Error(), "401 ") {
		t.Fatalf("error text = %q, want status then body", err.Error())
	}
	if !IsUnauthorized(err) {
		t.Fatalf("IsUnauthorized = false, want true")
	}

	_, err = c.FetchPieces(context.Background())
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("FetchPieces error = %v, want decode response error", err)
	}
	if IsUnauthorized(err) {
		t.Fatalf("IsUnauthorized(decode error) = true, want false")
	}
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := server.URL
	server.Close()

	c, err := NewClient(Options{BaseURL: base})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.FetchStats(context.Background())
	if err == nil || !strings.Contains(err.Error(), "execute request") {
		t.Fatalf("FetchStats error = %v, want execute request error", err)
	}
}

func TestClient_SetSessionCookieEmptyStopsSending(t *testing.T) {
	t.Parallel()

	var sawCookie bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := r.Cookie(DefaultCookieName)
		sawCookie = err == nil
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(Options{BaseURL: server.URL, SessionCookie: "tok"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	c.SetSessionCookie("")
	if _, err := c.FetchPieces(context.Background()); err != nil {
		t.Fatalf("FetchPieces returned error: %v", err)
	}
	if sawCookie {
		t.Fatalf("cookie still sent after clearing")
	}
}
