package practice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// API describes the practice tracker endpoints the client consumes.
// *Client implements it; tests substitute fakes.
type API interface {
	FetchProfile(ctx context.Context) (*Profile, error)
	FetchPieces(ctx context.Context) ([]Piece, error)
	CreatePiece(ctx context.Context, in PieceInput) (*Piece, error)
	DeletePiece(ctx context.Context, id int64) error
	CreateSession(ctx context.Context, in SessionInput) (*Session, error)
	FetchSessions(ctx context.Context, query SessionQuery) ([]Session, error)
	FetchStats(ctx context.Context) (*Stats, error)
	FetchMinutesByDay(ctx context.Context, days int) ([]DayMinutes, error)
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

const (
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "http://127.0.0.1:8000"
	// DefaultCookieName matches the server's session cookie.
	DefaultCookieName = "pt_session"

	defaultUserAgent = "practice-tracker/0.1"
	requestIDHeader  = "X-Request-ID"
)

// Options configure a Client.
type Options struct {
	BaseURL       string
	CookieName    string
	SessionCookie string
	Timeout       time.Duration // zero means no client-side timeout
	Logger        *slog.Logger
}

// Client talks to the practice tracker HTTP API.
type Client struct {
	baseURL    *url.URL
	http       *http.Client
	jar        http.CookieJar
	cookieName string
	userAgent  string
	logger     *slog.Logger
}

// NewClient builds a Client for the configured base URL. The session cookie,
// when provided, is attached to every request through the cookie jar.
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	name := strings.TrimSpace(opts.CookieName)
	if name == "" {
		name = DefaultCookieName
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Jar:     jar,
			Timeout: opts.Timeout,
		},
		jar:        jar,
		cookieName: name,
		userAgent:  defaultUserAgent,
		logger:     logger,
	}
	c.SetSessionCookie(opts.SessionCookie)
	return c, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// SetSessionCookie replaces the session cookie sent with each request.
// An empty value expires the cookie.
func (c *Client) SetSessionCookie(value string) {
	value = strings.TrimSpace(value)
	cookie := &http.Cookie{Name: c.cookieName, Value: value, Path: "/"}
	if value == "" {
		cookie.MaxAge = -1
	}
	c.jar.SetCookies(c.baseURL, []*http.Cookie{cookie})
}

// LoginURL is the server-controlled page that starts the login flow.
func (c *Client) LoginURL() string {
	return c.resolve("/login", nil).String()
}

// LogoutURL is the server-controlled page that clears the session.
func (c *Client) LogoutURL() string {
	return c.resolve("/logout", nil).String()
}

// FetchProfile retrieves the signed-in user's profile.
func (c *Client) FetchProfile(ctx context.Context) (*Profile, error) {
	profile, err := Call[Profile](ctx, c, http.MethodGet, "/api/me")
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// FetchPieces retrieves the piece library, newest first.
func (c *Client) FetchPieces(ctx context.Context) ([]Piece, error) {
	return Call[[]Piece](ctx, c, http.MethodGet, "/api/pieces")
}

// CreatePiece adds a piece and returns the server's copy.
func (c *Client) CreatePiece(ctx context.Context, in PieceInput) (*Piece, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	piece, err := Call[Piece](ctx, c, http.MethodPost, "/api/pieces", WithJSONBody(in))
	if err != nil {
		return nil, err
	}
	return &piece, nil
}

// DeletePiece removes a piece permanently.
func (c *Client) DeletePiece(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: piece id required", ErrValidation)
	}
	_, err := Call[json.RawMessage](ctx, c, http.MethodDelete, "/api/pieces/"+strconv.FormatInt(id, 10))
	return err
}

// CreateSession logs a practice session.
func (c *Client) CreateSession(ctx context.Context, in SessionInput) (*Session, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	session, err := Call[Session](ctx, c, http.MethodPost, "/api/sessions", WithJSONBody(in))
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// SessionQuery configures /api/sessions requests.
type SessionQuery struct {
	PieceID  int64
	DateFrom string
	DateTo   string
}

// FetchSessions lists sessions, newest first.
func (c *Client) FetchSessions(ctx context.Context, query SessionQuery) ([]Session, error) {
	values := url.Values{}
	if query.PieceID > 0 {
		values.Set("piece_id", strconv.FormatInt(query.PieceID, 10))
	}
	if from := strings.TrimSpace(query.DateFrom); from != "" {
		values.Set("date_from", from)
	}
	if to := strings.TrimSpace(query.DateTo); to != "" {
		values.Set("date_to", to)
	}
	return Call[[]Session](ctx, c, http.MethodGet, "/api/sessions", WithQuery(values))
}

// FetchStats retrieves the 7-day overview.
func (c *Client) FetchStats(ctx context.Context) (*Stats, error) {
	stats, err := Call[Stats](ctx, c, http.MethodGet, "/api/stats/overview")
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// FetchMinutesByDay retrieves per-day minute totals for the last days days.
func (c *Client) FetchMinutesByDay(ctx context.Context, days int) ([]DayMinutes, error) {
	values := url.Values{}
	if days > 0 {
		values.Set("days", strconv.Itoa(days))
	}
	return Call[[]DayMinutes](ctx, c, http.MethodGet, "/api/stats/by-day", WithQuery(values))
}

// StatusError reports a non-success HTTP status with the response body text.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return strconv.Itoa(e.StatusCode)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, e.Body)
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized
}

// RequestOption adjusts a single API request.
type RequestOption func(*requestConfig)

type requestConfig struct {
	body    any
	headers http.Header
	query   url.Values
}

// WithJSONBody encodes v as the request body.
func WithJSONBody(v any) RequestOption {
	return func(rc *requestConfig) {
		rc.body = v
	}
}

// WithHeader sets a header, overriding the defaults.
func WithHeader(key, value string) RequestOption {
	return func(rc *requestConfig) {
		rc.headers.Set(key, value)
	}
}

// WithQuery appends query parameters.
func WithQuery(values url.Values) RequestOption {
	return func(rc *requestConfig) {
		for k, vs := range values {
			for _, v := range vs {
				rc.query.Add(k, v)
			}
		}
	}
}

// Call issues a request against path and decodes the JSON response into T.
// Non-2xx responses return *StatusError. An empty body yields the zero T.
func Call[T any](ctx context.Context, c *Client, method, path string, opts ...RequestOption) (T, error) {
	var out T
	if c == nil {
		return out, fmt.Errorf("client is nil")
	}
	if err := c.do(ctx, method, path, &out, opts...); err != nil {
		return out, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, dest any, opts ...RequestOption) error {
	rc := requestConfig{headers: http.Header{}, query: url.Values{}}
	for _, opt := range opts {
		opt(&rc)
	}

	var body io.Reader
	if rc.body != nil {
		encoded, err := json.Marshal(rc.body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	reqURL := c.resolve(path, rc.query)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, requestID)
	for key, values := range rc.headers {
		req.Header[key] = values
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("api request failed",
			"request_id", requestID, "method", method, "path", path, "error", err)
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.logger.Debug("api request",
		"request_id", requestID,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(payload))}
	}
	if dest == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) resolve(path string, query url.Values) *url.URL {
	u := *c.baseURL
	u.Path = strings.TrimRight(c.baseURL.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return &u
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
