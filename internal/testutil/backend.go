// Package testutil provides an in-memory fake of the cooking assistant
// backend for package tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hammamikhairi/ottoclient/internal/domain"
)

// Backend serves the REST surface from memory. Zero-value fields are safe;
// construct with NewBackend.
type Backend struct {
	mu       sync.Mutex
	sessions map[string]*domain.SessionDetail
	recipes  map[string]domain.Recipe
	features domain.Features
	user     domain.User
	cookie   string
	failures map[string]int
	hits     map[string]int

	Server *httptest.Server
}

// NewBackend starts a fake backend that is closed with the test.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		sessions: make(map[string]*domain.SessionDetail),
		recipes:  make(map[string]domain.Recipe),
		features: domain.Features{},
		user:     domain.User{ID: "user-1", Email: "cook@example.com"},
		failures: make(map[string]int),
		hits:     make(map[string]int),
	}
	b.Server = httptest.NewServer(b.routes())
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the base URL of the fake.
func (b *Backend) URL() string { return b.Server.URL }

// RequireCookie makes every route answer 401 unless the "session" cookie
// carries value.
func (b *Backend) RequireCookie(value string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cookie = value
}

// FailNext makes the next request matching "METHOD /pattern" answer code.
func (b *Backend) FailNext(route string, code int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[route] = code
}

// Hits returns how many requests matched "METHOD /pattern".
func (b *Backend) Hits(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[route]
}

// AddSession stores a session and returns its id.
func (b *Backend) AddSession(d domain.SessionDetail) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
		d.UpdatedAt = d.CreatedAt
	}
	cp := d
	b.sessions[d.ID] = &cp
	return d.ID
}

// Session returns the stored session.
func (b *Backend) Session(id string) (domain.SessionDetail, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[id]
	if !ok {
		return domain.SessionDetail{}, false
	}
	return *s, true
}

// AddRecipe stores a recipe and returns its id.
func (b *Backend) AddRecipe(r domain.Recipe) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	b.recipes[r.ID] = r
	return r.ID
}

// SetFeatures replaces the feature flags.
func (b *Backend) SetFeatures(f domain.Features) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.features = f
}

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(b.auth)

	r.Get("/auth/me", b.wrap("GET /auth/me", b.me))
	r.Post("/auth/logout", b.wrap("POST /auth/logout", b.noContent))

	r.Route("/api/chat-sessions", func(r chi.Router) {
		r.Get("/", b.wrap("GET /api/chat-sessions", b.listSessions))
		r.Post("/", b.wrap("POST /api/chat-sessions", b.createSession))
		r.Get("/{id}", b.wrap("GET /api/chat-sessions/{id}", b.getSession))
		r.Delete("/{id}", b.wrap("DELETE /api/chat-sessions/{id}", b.deleteSession))
		r.Put("/{id}/name", b.wrap("PUT /api/chat-sessions/{id}/name", b.renameSession))
		r.Post("/{id}/save-recipe", b.wrap("POST /api/chat-sessions/{id}/save-recipe", b.saveRecipe))
	})
	r.Get("/api/meal-planner-sessions", b.wrap("GET /api/meal-planner-sessions", b.listMealPlanner))
	r.Post("/api/meal-planner-sessions", b.wrap("POST /api/meal-planner-sessions", b.createMealPlanner))

	r.Route("/api/recipes", func(r chi.Router) {
		r.Get("/", b.wrap("GET /api/recipes", b.listRecipes))
		r.Post("/", b.wrap("POST /api/recipes", b.createRecipe))
		r.Get("/{id}", b.wrap("GET /api/recipes/{id}", b.getRecipe))
		r.Delete("/{id}", b.wrap("DELETE /api/recipes/{id}", b.deleteRecipe))
	})
	r.Get("/api/config/features", b.wrap("GET /api/config/features", b.getFeatures))
	return r
}

func (b *Backend) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		want := b.cookie
		b.mu.Unlock()
		if want != "" {
			c, err := r.Cookie("session")
			if err != nil || c.Value != want {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// wrap counts hits and applies injected failures for route.
func (b *Backend) wrap(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.hits[route]++
		code, fail := b.failures[route]
		delete(b.failures, route)
		b.mu.Unlock()
		if fail {
			http.Error(w, http.StatusText(code), code)
			return
		}
		h(w, r)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *Backend) noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) me(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.user)
}

func (b *Backend) sessionsOfType(t domain.SessionType) []domain.Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []domain.Session{}
	for _, s := range b.sessions {
		if t == "" || s.Type == t {
			out = append(out, s.Session)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (b *Backend) listSessions(w http.ResponseWriter, r *http.Request) {
	t := domain.SessionType(r.URL.Query().Get("session_type"))
	writeJSON(w, http.StatusOK, b.sessionsOfType(t))
}

func (b *Backend) listMealPlanner(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, b.sessionsOfType(domain.SessionMealPlanner))
}

type createBody struct {
	SessionType domain.SessionType `json:"session_type"`
	SessionName string             `json:"session_name"`
}

func (b *Backend) create(w http.ResponseWriter, r *http.Request, t domain.SessionType) {
	var body createBody
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if t == "" {
		t = body.SessionType
	}
	name := body.SessionName
	if name == "" {
		name = "New session"
	}
	id := b.AddSession(domain.SessionDetail{Session: domain.Session{
		UserID: b.user.ID,
		Name:   name,
		Type:   t,
	}})
	s, _ := b.Session(id)
	writeJSON(w, http.StatusCreated, s.Session)
}

func (b *Backend) createSession(w http.ResponseWriter, r *http.Request) {
	b.create(w, r, "")
}

func (b *Backend) createMealPlanner(w http.ResponseWriter, r *http.Request) {
	b.create(w, r, domain.SessionMealPlanner)
}

func (b *Backend) getSession(w http.ResponseWriter, r *http.Request) {
	s, ok := b.Session(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (b *Backend) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b.mu.Lock()
	_, ok := b.sessions[id]
	delete(b.sessions, id)
	b.mu.Unlock()
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) renameSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionName string `json:"session_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.SessionName == "" {
		http.Error(w, "session_name required", http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	b.mu.Lock()
	s, ok := b.sessions[id]
	if ok {
		s.Name = body.SessionName
		s.UpdatedAt = time.Now().UTC()
	}
	var out domain.Session
	if ok {
		out = s.Session
	}
	b.mu.Unlock()
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) saveRecipe(w http.ResponseWriter, r *http.Request) {
	var rec domain.Recipe
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil || rec.Name == "" {
		http.Error(w, "recipe name required", http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	b.mu.Lock()
	s, ok := b.sessions[id]
	b.mu.Unlock()
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
		rec.CreatedAt = time.Now().UTC()
	}
	rec.UpdatedAt = time.Now().UTC()
	b.AddRecipe(rec)

	b.mu.Lock()
	s.RecipeID = rec.ID
	saved := rec
	s.Recipe = &saved
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, rec)
}

func (b *Backend) listRecipes(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	out := make([]domain.Recipe, 0, len(b.recipes))
	for _, r := range b.recipes {
		out = append(out, r)
	}
	b.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) createRecipe(w http.ResponseWriter, r *http.Request) {
	var rec domain.Recipe
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil || rec.Name == "" {
		http.Error(w, "recipe name required", http.StatusBadRequest)
		return
	}
	rec.ID = ""
	rec.ID = b.AddRecipe(rec)
	writeJSON(w, http.StatusCreated, rec)
}

func (b *Backend) getRecipe(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	rec, ok := b.recipes[chi.URLParam(r, "id")]
	b.mu.Unlock()
	if !ok {
		http.Error(w, "recipe not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (b *Backend) deleteRecipe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b.mu.Lock()
	_, ok := b.recipes[id]
	delete(b.recipes, id)
	b.mu.Unlock()
	if !ok {
		http.Error(w, "recipe not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) getFeatures(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.features)
}
