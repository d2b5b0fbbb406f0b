package handler

import (
	"time"

	"github.com/hammamikhairi/ottoclient/internal/domain"
	"github.com/hammamikhairi/ottoclient/internal/state"
)

// Surface is one chat front end. Handle returns the actions for a payload
// the surface owns, and false for payloads it leaves to the base handlers.
type Surface interface {
	Name() string
	Handle(id string, c domain.Content, now time.Time) ([]state.Action, bool)
}

// Chat is the plain chat surface. It owns no payloads.
type Chat struct{}

func (Chat) Name() string { return "chat" }

func (Chat) Handle(string, domain.Content, time.Time) ([]state.Action, bool) {
	return nil, false
}

// Kitchen owns ingredient lists and timers.
type Kitchen struct{}

func (Kitchen) Name() string { return "kitchen" }

func (Kitchen) Handle(_ string, c domain.Content, now time.Time) ([]state.Action, bool) {
	switch v := c.(type) {
	case domain.Ingredients:
		return HandleIngredients(v), true
	case domain.Timer:
		return HandleTimer(v, now), true
	default:
		return nil, false
	}
}

// Recipe owns the recipe document. It backs both the recipe creator and
// the meal planner.
type Recipe struct {
	name string
}

// RecipeCreator returns the recipe creator surface.
func RecipeCreator() Recipe { return Recipe{name: "recipe-creator"} }

// MealPlanner returns the meal planner surface.
func MealPlanner() Recipe { return Recipe{name: "meal-planner"} }

func (r Recipe) Name() string { return r.name }

func (Recipe) Handle(_ string, c domain.Content, now time.Time) ([]state.Action, bool) {
	switch v := c.(type) {
	case domain.RecipeContent:
		return HandleRecipe(v), true
	case domain.RecipeUpdate:
		return HandleRecipeUpdate(v, now), true
	case domain.RecipeName:
		name := v.Name
		return HandleRecipeUpdate(domain.RecipeUpdate{Action: domain.RecipeSetMetadata, Name: &name}, now), true
	default:
		return nil, false
	}
}

// ForSessionType returns the surface that renders sessions of type t.
func ForSessionType(t domain.SessionType) Surface {
	switch t {
	case domain.SessionKitchen:
		return Kitchen{}
	case domain.SessionRecipeCreator:
		return RecipeCreator()
	case domain.SessionMealPlanner:
		return MealPlanner()
	default:
		return Chat{}
	}
}
