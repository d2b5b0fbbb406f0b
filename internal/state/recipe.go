package state

import (
	"slices"
	"time"

	"github.com/hammamikhairi/ottoclient/internal/domain"
)

// RecipeDocState extends chat state with the recipe document being built.
// IsRecipeChanged is set by every local mutation and cleared only when the
// server confirms a save.
type RecipeDocState struct {
	Chat            ChatState
	Recipe          *domain.Recipe
	IsRecipeChanged bool
}

// ReduceRecipeDoc handles recipe actions and delegates the rest to ReduceChat.
func ReduceRecipeDoc(s RecipeDocState, a Action) RecipeDocState {
	switch act := a.(type) {
	case SetRecipe:
		s.Recipe = act.Recipe.Clone()
		s.IsRecipeChanged = true
	case LoadRecipe:
		s.Recipe = act.Recipe.Clone()
		s.IsRecipeChanged = false
	case ApplyRecipeUpdate:
		if r, ok := applyRecipeUpdate(s.Recipe, act); ok {
			s.Recipe = r
			s.IsRecipeChanged = true
		}
	case EditRecipe:
		if s.Recipe == nil || act.Edit == nil {
			return s
		}
		r := s.Recipe.Clone()
		act.Edit(r)
		s.Recipe = r
		s.IsRecipeChanged = true
	case MarkRecipeSaved:
		if act.Recipe != nil {
			s.Recipe = act.Recipe.Clone()
		}
		s.IsRecipeChanged = false
	default:
		s.Chat = ReduceChat(s.Chat, a)
	}
	return s
}

// applyRecipeUpdate returns the updated recipe and whether anything changed.
func applyRecipeUpdate(cur *domain.Recipe, act ApplyRecipeUpdate) (*domain.Recipe, bool) {
	u := act.Update
	switch u.Action {
	case domain.RecipeSetMetadata:
		at := act.At
		if at.IsZero() {
			at = time.Now()
		}
		r := cur.Clone()
		if r == nil {
			r = &domain.Recipe{CreatedAt: at}
		}
		mergeMetadata(r, u)
		r.UpdatedAt = at
		return r, true
	case domain.RecipeSetIngredients:
		if cur == nil {
			return nil, false
		}
		r := cur.Clone()
		r.Ingredients = slices.Clone(u.Ingredients)
		return r, true
	case domain.RecipeSetSteps:
		if cur == nil {
			return nil, false
		}
		r := cur.Clone()
		r.Steps = slices.Clone(u.Steps)
		return r, true
	default:
		return nil, false
	}
}

func mergeMetadata(r *domain.Recipe, u domain.RecipeUpdate) {
	if u.Name != nil {
		r.Name = *u.Name
	}
	if u.Description != nil {
		r.Description = *u.Description
	}
	if u.TotalTimeMinutes != nil {
		v := *u.TotalTimeMinutes
		r.TotalTimeMinutes = &v
	}
	if u.Difficulty != nil {
		r.Difficulty = *u.Difficulty
	}
	if u.Servings != nil {
		v := *u.Servings
		r.Servings = &v
	}
	if u.Tags != nil {
		r.Tags = slices.Clone(u.Tags)
	}
}
