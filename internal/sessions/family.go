// Package sessions manages the cached session lists: optimistic CRUD against
// the backend, cross-list renames, and applying server-pushed events.
package sessions

import (
	"github.com/hammamikhairi/ottoclient/internal/domain"
	"github.com/hammamikhairi/ottoclient/internal/storage"
)

// Family is one kind of session list with its own cache key.
type Family struct {
	Type domain.SessionType
	Key  storage.Key
}

var (
	Kitchen       = Family{Type: domain.SessionKitchen, Key: "kitchen-sessions"}
	MealPlanner   = Family{Type: domain.SessionMealPlanner, Key: "meal-planner-sessions"}
	RecipeCreator = Family{Type: domain.SessionRecipeCreator, Key: "recipe-creator-sessions"}
)

// Families returns every known family.
func Families() []Family {
	return []Family{Kitchen, MealPlanner, RecipeCreator}
}

// FamilyOf returns the family for a session type.
func FamilyOf(t domain.SessionType) (Family, bool) {
	for _, f := range Families() {
		if f.Type == t {
			return f, true
		}
	}
	return Family{}, false
}

// Cache is the session list store the manager writes through.
type Cache interface {
	Get(key storage.Key) ([]domain.Session, bool)
	Set(key storage.Key, list []domain.Session)
	Mutate(key storage.Key, fn func([]domain.Session) []domain.Session) ([]domain.Session, bool)
	MutateAll(fn func(key storage.Key, list []domain.Session) ([]domain.Session, bool)) []storage.Key
}

var _ Cache = (*storage.MemoryCache)(nil)

// UpdateSessionName writes a confirmed name into every cached list that
// holds the session. It returns the keys that changed.
func UpdateSessionName(cache Cache, id, name string) []storage.Key {
	return cache.MutateAll(func(_ storage.Key, list []domain.Session) ([]domain.Session, bool) {
		changed := false
		for i := range list {
			if list[i].ID == id && list[i].Name != name {
				list[i].Name = name
				changed = true
			}
		}
		return list, changed
	})
}

func indexOf(list []domain.Session, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func without(list []domain.Session, id string) []domain.Session {
	out := list[:0]
	for _, s := range list {
		if s.ID != id {
			out = append(out, s)
		}
	}
	return out
}
