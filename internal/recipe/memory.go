// Package recipe keeps an in-memory copy of the user's saved recipe library,
// loaded from the backend on first use.
package recipe

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hammamikhairi/ottoclient/internal/domain"
	"github.com/hammamikhairi/ottoclient/internal/logger"
)

// Library caches saved recipes. Safe for concurrent access.
type Library struct {
	api domain.RecipeAPI
	log *logger.Logger

	mu      sync.RWMutex
	recipes map[string]*domain.Recipe
	loaded  bool
}

// NewLibrary creates an empty library backed by api.
func NewLibrary(api domain.RecipeAPI, log *logger.Logger) *Library {
	return &Library{
		api:     api,
		log:     log.With("recipes"),
		recipes: make(map[string]*domain.Recipe),
	}
}

// Refresh reloads the whole library from the backend.
func (l *Library) Refresh(ctx context.Context) error {
	list, err := l.api.ListRecipes(ctx)
	if err != nil {
		return fmt.Errorf("recipe: refresh: %w", err)
	}

	next := make(map[string]*domain.Recipe, len(list))
	for i := range list {
		r := list[i]
		next[r.ID] = &r
	}

	l.mu.Lock()
	l.recipes = next
	l.loaded = true
	l.mu.Unlock()

	l.log.Debug("loaded %d recipes", len(next))
	return nil
}

func (l *Library) ensure(ctx context.Context) error {
	l.mu.RLock()
	loaded := l.loaded
	l.mu.RUnlock()
	if loaded {
		return nil
	}
	return l.Refresh(ctx)
}

// List returns summaries of all saved recipes, sorted by name.
func (l *Library) List(ctx context.Context) ([]domain.RecipeSummary, error) {
	if err := l.ensure(ctx); err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.RecipeSummary, 0, len(l.recipes))
	for _, r := range l.recipes {
		out = append(out, summarize(r))
	}
	sortSummaries(out)
	return out, nil
}

// Get returns a recipe by ID, fetching it when it is not cached.
func (l *Library) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	l.mu.RLock()
	r, ok := l.recipes[id]
	l.mu.RUnlock()
	if ok {
		return r.Clone(), nil
	}

	l.log.Debug("recipe %s not cached, fetching", id)
	fetched, err := l.api.GetRecipe(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("recipe: get %s: %w", id, err)
	}
	l.Put(fetched)
	return fetched.Clone(), nil
}

// Put stores a recipe the client already has, such as one just saved.
func (l *Library) Put(r *domain.Recipe) {
	if !r.Saved() {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recipes[r.ID] = r.Clone()
}

// Delete removes a recipe on the backend and from the library.
func (l *Library) Delete(ctx context.Context, id string) error {
	if err := l.api.DeleteRecipe(ctx, id); err != nil {
		return fmt.Errorf("recipe: delete %s: %w", id, err)
	}

	l.mu.Lock()
	delete(l.recipes, id)
	l.mu.Unlock()

	l.log.Info("deleted recipe %s", id)
	return nil
}

// Search returns recipes whose name, description or tags contain the query.
func (l *Library) Search(ctx context.Context, query string) ([]domain.RecipeSummary, error) {
	if err := l.ensure(ctx); err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	l.log.Debug("searching recipes for: %s", q)

	var out []domain.RecipeSummary
	for _, r := range l.recipes {
		if matches(r, q) {
			out = append(out, summarize(r))
		}
	}
	sortSummaries(out)
	return out, nil
}

func matches(r *domain.Recipe, query string) bool {
	if strings.Contains(strings.ToLower(r.Name), query) {
		return true
	}
	if strings.Contains(strings.ToLower(r.Description), query) {
		return true
	}
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

func summarize(r *domain.Recipe) domain.RecipeSummary {
	return domain.RecipeSummary{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Tags:        r.Tags,
	}
}

func sortSummaries(s []domain.RecipeSummary) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Name != s[j].Name {
			return s[i].Name < s[j].Name
		}
		return s[i].ID < s[j].ID
	})
}
