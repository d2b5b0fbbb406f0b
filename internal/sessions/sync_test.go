package sessions

import (
	"encoding/json"
	"testing"

	"github.com/hammamikhairi/ottoclient/internal/domain"
	"github.com/hammamikhairi/ottoclient/internal/logger"
	"github.com/hammamikhairi/ottoclient/internal/storage"
)

func event(t *testing.T, typ string, data any) domain.Event {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return domain.Event{Type: typ, Data: raw}
}

func newSync() (*storage.MemoryCache, *Sync) {
	log := logger.New(logger.LevelOff, nil)
	cache := storage.NewMemoryCache(log)
	cache.Set(Kitchen.Key, []domain.Session{{ID: "k1", Name: "Roast", Type: domain.SessionKitchen}})
	cache.Set(RecipeCreator.Key, []domain.Session{{ID: "r1", Name: "Bread", Type: domain.SessionRecipeCreator}})
	return cache, NewSync(cache, log)
}

func TestSyncApply(t *testing.T) {
	tests := []struct {
		name    string
		ev      func(t *testing.T) domain.Event
		key     storage.Key
		want    []string
	}{
		{
			name: "created lands in its family",
			ev: func(t *testing.T) domain.Event {
				return event(t, domain.EventSessionCreated, domain.Session{ID: "k2", Name: "Pie", Type: domain.SessionKitchen})
			},
			key:  Kitchen.Key,
			want: []string{"Pie", "Roast"},
		},
		{
			name: "created twice is not duplicated",
			ev: func(t *testing.T) domain.Event {
				return event(t, domain.EventSessionCreated, domain.Session{ID: "k1", Name: "Roast", Type: domain.SessionKitchen})
			},
			key:  Kitchen.Key,
			want: []string{"Roast"},
		},
		{
			name: "updated replaces in place",
			ev: func(t *testing.T) domain.Event {
				return event(t, domain.EventSessionUpdated, domain.Session{ID: "r1", Name: "Sourdough", Type: domain.SessionRecipeCreator})
			},
			key:  RecipeCreator.Key,
			want: []string{"Sourdough"},
		},
		{
			name: "name updated with session_id spelling",
			ev: func(t *testing.T) domain.Event {
				return event(t, domain.EventSessionNameUpdated, map[string]string{"session_id": "k1", "session_name": "Sunday"})
			},
			key:  Kitchen.Key,
			want: []string{"Sunday"},
		},
		{
			name: "name updated without a name is ignored",
			ev: func(t *testing.T) domain.Event {
				return event(t, domain.EventSessionNameUpdated, map[string]string{"id": "k1"})
			},
			key:  Kitchen.Key,
			want: []string{"Roast"},
		},
		{
			name: "deleted removes everywhere",
			ev: func(t *testing.T) domain.Event {
				return event(t, domain.EventSessionDeleted, map[string]string{"id": "r1"})
			},
			key:  RecipeCreator.Key,
			want: []string{},
		},
		{
			name: "unknown event is ignored",
			ev: func(t *testing.T) domain.Event {
				return event(t, "pantry_restocked", map[string]string{"id": "k1"})
			},
			key:  Kitchen.Key,
			want: []string{"Roast"},
		},
		{
			name: "malformed payload is ignored",
			ev: func(t *testing.T) domain.Event {
				return domain.Event{Type: domain.EventSessionCreated, Data: json.RawMessage(`"nope"`)}
			},
			key:  Kitchen.Key,
			want: []string{"Roast"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache, s := newSync()
			s.Apply(tt.ev(t))

			list, _ := cache.Get(tt.key)
			got := names(list)
			if len(got) != len(tt.want) {
				t.Fatalf("names = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("names = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestSyncCreatedIntoUncachedFamilyIsSkipped(t *testing.T) {
	cache, s := newSync()
	s.Apply(event(t, domain.EventSessionCreated, domain.Session{ID: "m1", Type: domain.SessionMealPlanner}))

	if _, ok := cache.Get(MealPlanner.Key); ok {
		t.Fatal("uncached family should stay uncached")
	}
}
