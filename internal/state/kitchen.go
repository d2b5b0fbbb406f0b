package state

import (
	"slices"

	"github.com/hammamikhairi/ottoclient/internal/domain"
)

// KitchenState extends chat state with the ingredient list and timers.
type KitchenState struct {
	Chat             ChatState
	IngredientsTitle string
	Ingredients      []domain.Ingredient
	Timers           []domain.Timer
}

// ReduceKitchen handles ingredient and timer actions and delegates the rest
// to ReduceChat.
func ReduceKitchen(s KitchenState, a Action) KitchenState {
	switch act := a.(type) {
	case SetIngredients:
		s.Ingredients = slices.Clone(act.Items)
		if act.Title != "" {
			s.IngredientsTitle = act.Title
		}
	case UpdateIngredients:
		s.Ingredients = MergeIngredients(s.Ingredients, act.Items)
	case AddTimer:
		s.Timers = append(slices.Clip(s.Timers), act.Timer)
	default:
		s.Chat = ReduceChat(s.Chat, a)
	}
	return s
}

// MergeIngredients merges incoming items into current by exact name. A
// matching item is shallow-merged; an unknown name is appended.
func MergeIngredients(current, incoming []domain.Ingredient) []domain.Ingredient {
	out := slices.Clone(current)
	for _, item := range incoming {
		if i := slices.IndexFunc(out, func(ing domain.Ingredient) bool { return ing.Name == item.Name }); i >= 0 {
			out[i] = out[i].Merge(item)
			continue
		}
		out = append(out, item)
	}
	return out
}
