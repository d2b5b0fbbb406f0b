package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/ottoclient/internal/domain"
	"github.com/hammamikhairi/ottoclient/internal/logger"
	"github.com/hammamikhairi/ottoclient/internal/testutil"
)

func newClient(t *testing.T, b *testutil.Backend, opts ...Option) *Client {
	t.Helper()
	c, err := New(b.URL(), logger.New(logger.LevelOff, nil), opts...)
	require.NoError(t, err)
	return c
}

func TestNew_RejectsBadBase(t *testing.T) {
	_, err := New("ftp://example.com", logger.New(logger.LevelOff, nil))
	assert.Error(t, err)
}

func TestClient_SessionCookieIsSent(t *testing.T) {
	b := testutil.NewBackend(t)
	b.RequireCookie("secret")

	var unauthorized atomic.Int32
	anon := newClient(t, b, WithOnUnauthorized(func() { unauthorized.Add(1) }))
	_, err := anon.Me(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, int32(1), unauthorized.Load())

	authed := newClient(t, b, WithSessionCookie("", "secret"))
	u, err := authed.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-1", u.ID)
}

func TestClient_SessionLifecycle(t *testing.T) {
	b := testutil.NewBackend(t)
	c := newClient(t, b)
	ctx := context.Background()

	created, err := c.CreateSession(ctx, domain.SessionKitchen, "Sunday roast")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.SessionKitchen, created.Type)

	_, err = c.CreateSession(ctx, domain.SessionRecipeCreator, "Dumplings")
	require.NoError(t, err)

	kitchen, err := c.ListSessions(ctx, domain.SessionKitchen)
	require.NoError(t, err)
	require.Len(t, kitchen, 1)
	assert.Equal(t, "Sunday roast", kitchen[0].Name)

	renamed, err := c.RenameSession(ctx, created.ID, "Monday roast")
	require.NoError(t, err)
	assert.Equal(t, "Monday roast", renamed.Name)

	detail, err := c.GetSession(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Monday roast", detail.Name)

	require.NoError(t, c.DeleteSession(ctx, created.ID))
	_, err = c.GetSession(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.True(t, IsStatus(err, http.StatusNotFound))
}

func TestClient_MealPlannerUsesOwnEndpoints(t *testing.T) {
	b := testutil.NewBackend(t)
	c := newClient(t, b)
	ctx := context.Background()

	s, err := c.CreateSession(ctx, domain.SessionMealPlanner, "")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionMealPlanner, s.Type)

	list, err := c.ListSessions(ctx, domain.SessionMealPlanner)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, b.Hits("POST /api/meal-planner-sessions"))
	assert.Equal(t, 1, b.Hits("GET /api/meal-planner-sessions"))
	assert.Zero(t, b.Hits("POST /api/chat-sessions"))
}

func TestClient_GetSessionKeepsRawMessageContent(t *testing.T) {
	b := testutil.NewBackend(t)
	id := b.AddSession(domain.SessionDetail{
		Session: domain.Session{Name: "Soup", Type: domain.SessionKitchen},
		Messages: []domain.PersistedMessage{
			{ID: "m1", Role: domain.RoleUser, Content: []byte(`"legacy text"`)},
			{ID: "m2", Role: domain.RoleAssistant, Content: []byte(`{"type":"text","content":"hi"}`)},
		},
	})
	c := newClient(t, b)

	d, err := c.GetSession(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, d.Messages, 2)
	assert.JSONEq(t, `"legacy text"`, string(d.Messages[0].Content))
	assert.JSONEq(t, `{"type":"text","content":"hi"}`, string(d.Messages[1].Content))
}

func TestClient_SaveRecipeAssignsID(t *testing.T) {
	b := testutil.NewBackend(t)
	id := b.AddSession(domain.SessionDetail{Session: domain.Session{Type: domain.SessionRecipeCreator}})
	c := newClient(t, b)
	ctx := context.Background()

	_, err := c.SaveRecipe(ctx, id, nil)
	assert.ErrorIs(t, err, domain.ErrNoRecipe)

	saved, err := c.SaveRecipe(ctx, id, &domain.Recipe{
		Name:  "Pancakes",
		Steps: []domain.RecipeStep{{Instruction: "Mix"}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	recipes, err := c.ListRecipes(ctx)
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "Pancakes", recipes[0].Name)

	got, err := c.GetRecipe(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mix", got.Steps[0].Instruction)

	require.NoError(t, c.DeleteRecipe(ctx, saved.ID))
	_, err = c.GetRecipe(ctx, saved.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClient_StatusErrorCarriesCode(t *testing.T) {
	b := testutil.NewBackend(t)
	b.FailNext("GET /api/recipes", http.StatusServiceUnavailable)
	c := newClient(t, b)

	_, err := c.ListRecipes(context.Background())
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
	assert.Equal(t, "/api/recipes", se.Path)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}

func TestClient_NetworkFailureWrapsErrNetwork(t *testing.T) {
	b := testutil.NewBackend(t)
	c := newClient(t, b)
	b.Server.Close()

	_, err := c.ListRecipes(context.Background())
	assert.ErrorIs(t, err, domain.ErrNetwork)
}

func TestClient_FeaturesAreCachedForTTL(t *testing.T) {
	b := testutil.NewBackend(t)
	b.SetFeatures(domain.Features{domain.FeatureInstacart: true})

	var mu sync.Mutex
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	c := newClient(t, b, WithFeaturesTTL(time.Minute), WithClock(clock))
	ctx := context.Background()

	f, err := c.Features(ctx)
	require.NoError(t, err)
	assert.True(t, f.Enabled(domain.FeatureInstacart))

	_, err = c.Features(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, b.Hits("GET /api/config/features"))

	mu.Lock()
	now = now.Add(2 * time.Minute)
	mu.Unlock()
	b.SetFeatures(domain.Features{})

	f, err = c.Features(ctx)
	require.NoError(t, err)
	assert.False(t, f.Enabled(domain.FeatureInstacart))
	assert.Equal(t, 2, b.Hits("GET /api/config/features"))

	c.InvalidateFeatures()
	_, err = c.Features(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, b.Hits("GET /api/config/features"))
}

func TestClient_ConcurrentFeatureFetches(t *testing.T) {
	b := testutil.NewBackend(t)
	c := newClient(t, b)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Features(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// singleflight collapses overlapping misses; later calls hit the cache.
	assert.LessOrEqual(t, b.Hits("GET /api/config/features"), 8)
	_, err := c.Features(context.Background())
	require.NoError(t, err)
	hits := b.Hits("GET /api/config/features")
	_, _ = c.Features(context.Background())
	assert.Equal(t, hits, b.Hits("GET /api/config/features"))
}

func TestClient_Logout(t *testing.T) {
	b := testutil.NewBackend(t)
	c := newClient(t, b)
	require.NoError(t, c.Logout(context.Background()))
	assert.Equal(t, 1, b.Hits("POST /auth/logout"))
}
