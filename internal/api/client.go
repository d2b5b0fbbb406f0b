// Package api is the cookie-authenticated REST client for the cooking
// assistant backend: identity, session metadata and history, recipe saves,
// the saved-recipe library and feature flags.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hammamikhairi/ottoclient/internal/domain"
	"github.com/hammamikhairi/ottoclient/internal/logger"
)

// DefaultFeaturesTTL is how long fetched feature flags are reused.
const DefaultFeaturesTTL = 5 * time.Minute

// DefaultCookieName is the backend's session cookie.
const DefaultCookieName = "session"

// StatusError is a non-2xx response other than 401.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("api: %s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("api: %s %s: %d %s: %s", e.Method, e.Path, e.Code, http.StatusText(e.Code), truncate(body, 200))
}

// Unwrap maps 404 onto domain.ErrNotFound.
func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusNotFound {
		return domain.ErrNotFound
	}
	return nil
}

// ── Client ───────────────────────────────────────────────────────

// Option configures the Client.
type Option func(*Client)

// WithSessionCookie seeds the jar with the backend session cookie.
func WithSessionCookie(name, value string) Option {
	return func(c *Client) {
		if name == "" {
			name = DefaultCookieName
		}
		c.cookie = &http.Cookie{Name: name, Value: value, Path: "/"}
	}
}

// WithHTTPTimeout sets the per-request timeout.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithFeaturesTTL sets how long feature flags are cached.
func WithFeaturesTTL(d time.Duration) Option {
	return func(c *Client) { c.featuresTTL = d }
}

// WithOnUnauthorized registers a hook run whenever the backend answers 401.
func WithOnUnauthorized(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithClock replaces time.Now for cache expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// Client talks to the backend REST API.
type Client struct {
	base           *url.URL
	http           *http.Client
	jar            http.CookieJar
	cookie         *http.Cookie
	onUnauthorized func()
	featuresTTL    time.Duration
	now            func() time.Time
	log            *logger.Logger

	flights   singleflight.Group
	mu        sync.Mutex
	features  domain.Features
	fetchedAt time.Time
}

// New creates a client for baseURL (e.g. "http://localhost:8000").
func New(baseURL string, log *logger.Logger, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api: base url %q must be http or https", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("api: cookie jar: %w", err)
	}

	c := &Client{
		base:        base,
		http:        &http.Client{Jar: jar, Timeout: 30 * time.Second},
		jar:         jar,
		featuresTTL: DefaultFeaturesTTL,
		now:         time.Now,
		log:         log.With("api"),
	}
	for _, o := range opts {
		o(c)
	}
	if c.cookie != nil && c.cookie.Value != "" {
		jar.SetCookies(base, []*http.Cookie{c.cookie})
	}
	return c, nil
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string { return c.base.String() }

// Jar returns the cookie jar, to be shared with the socket and stream.
func (c *Client) Jar() http.CookieJar { return c.jar }

// StreamClient returns an HTTP client sharing the jar but without a
// timeout, for long-lived streams.
func (c *Client) StreamClient() *http.Client {
	return &http.Client{Jar: c.jar}
}

// ── Auth ─────────────────────────────────────────────────────────

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout ends the backend session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

// ── Sessions ─────────────────────────────────────────────────────

type createSessionRequest struct {
	SessionType domain.SessionType `json:"session_type,omitempty"`
	SessionName string             `json:"session_name,omitempty"`
}

type renameRequest struct {
	SessionName string `json:"session_name"`
}

// ListSessions returns the sessions of one family.
func (c *Client) ListSessions(ctx context.Context, t domain.SessionType) ([]domain.Session, error) {
	var out []domain.Session
	var err error
	if t == domain.SessionMealPlanner {
		err = c.do(ctx, http.MethodGet, "/api/meal-planner-sessions", nil, nil, &out)
	} else {
		q := url.Values{"session_type": {t.String()}}
		err = c.do(ctx, http.MethodGet, "/api/chat-sessions", q, nil, &out)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSession creates a session. The server assigns the id.
func (c *Client) CreateSession(ctx context.Context, t domain.SessionType, name string) (*domain.Session, error) {
	path := "/api/chat-sessions"
	body := createSessionRequest{SessionType: t, SessionName: name}
	if t == domain.SessionMealPlanner {
		path = "/api/meal-planner-sessions"
		body.SessionType = ""
	}
	var s domain.Session
	if err := c.do(ctx, http.MethodPost, path, nil, body, &s); err != nil {
		return nil, err
	}
	if s.Type == "" {
		s.Type = t
	}
	return &s, nil
}

// GetSession returns a session with its persisted messages.
func (c *Client) GetSession(ctx context.Context, id string) (*domain.SessionDetail, error) {
	var d domain.SessionDetail
	if err := c.do(ctx, http.MethodGet, sessionPath(id), nil, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// RenameSession sets a session's display name.
func (c *Client) RenameSession(ctx context.Context, id, name string) (*domain.Session, error) {
	var s domain.Session
	if err := c.do(ctx, http.MethodPut, sessionPath(id)+"/name", nil, renameRequest{SessionName: name}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSession removes a session.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, sessionPath(id), nil, nil, nil)
}

// SaveRecipe persists the session's recipe document and returns the stored
// copy, which carries the server-assigned id.
func (c *Client) SaveRecipe(ctx context.Context, sessionID string, r *domain.Recipe) (*domain.Recipe, error) {
	if r == nil {
		return nil, domain.ErrNoRecipe
	}
	var saved domain.Recipe
	if err := c.do(ctx, http.MethodPost, sessionPath(sessionID)+"/save-recipe", nil, r, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func sessionPath(id string) string {
	return "/api/chat-sessions/" + url.PathEscape(id)
}

// ── Recipes ──────────────────────────────────────────────────────

// ListRecipes returns the user's saved recipes.
func (c *Client) ListRecipes(ctx context.Context) ([]domain.Recipe, error) {
	var out []domain.Recipe
	if err := c.do(ctx, http.MethodGet, "/api/recipes", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateRecipe stores a recipe outside any session.
func (c *Client) CreateRecipe(ctx context.Context, r *domain.Recipe) (*domain.Recipe, error) {
	var out domain.Recipe
	if err := c.do(ctx, http.MethodPost, "/api/recipes", nil, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRecipe returns one saved recipe.
func (c *Client) GetRecipe(ctx context.Context, id string) (*domain.Recipe, error) {
	var out domain.Recipe
	if err := c.do(ctx, http.MethodGet, "/api/recipes/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteRecipe removes a saved recipe.
func (c *Client) DeleteRecipe(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/recipes/"+url.PathEscape(id), nil, nil, nil)
}

// ── Feature flags ────────────────────────────────────────────────

// Features returns the backend feature flags, cached for the configured
// TTL. Concurrent misses share one request.
func (c *Client) Features(ctx context.Context) (domain.Features, error) {
	c.mu.Lock()
	if c.features != nil && c.now().Sub(c.fetchedAt) < c.featuresTTL {
		f := c.features
		c.mu.Unlock()
		return f, nil
	}
	c.mu.Unlock()

	v, err, shared := c.flights.Do("features", func() (any, error) {
		var f domain.Features
		if err := c.do(ctx, http.MethodGet, "/api/config/features", nil, nil, &f); err != nil {
			return nil, err
		}
		if f == nil {
			f = domain.Features{}
		}
		c.mu.Lock()
		c.features = f
		c.fetchedAt = c.now()
		c.mu.Unlock()
		return f, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.log.Debug("features fetch shared")
	}
	return v.(domain.Features), nil
}

// InvalidateFeatures drops the cached flags.
func (c *Client) InvalidateFeatures() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.features = nil
}

// ── Transport ────────────────────────────────────────────────────

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := *c.base
	u.Path = c.base.Path + path
	u.RawQuery = query.Encode()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: marshal %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("api: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("%s %s", method, path)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("api: %s %s: %w", method, path, ctxErr)
		}
		return fmt.Errorf("api: %s %s: %w: %v", method, path, domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("api: %s %s: read response: %w: %v", method, path, domain.ErrNetwork, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.log.Warn("%s %s: unauthorized", method, path)
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return fmt.Errorf("api: %s %s: %w", method, path, domain.ErrUnauthorized)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(respBody)}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("api: %s %s: decode response: %w", method, path, err)
	}
	return nil
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

var (
	_ domain.SessionAPI  = (*Client)(nil)
	_ domain.RecipeSaver = (*Client)(nil)
	_ domain.RecipeAPI   = (*Client)(nil)
)
