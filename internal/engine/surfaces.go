package engine

import (
	"context"
	"fmt"

	"github.com/hammamikhairi/ottoclient/internal/domain"
	"github.com/hammamikhairi/ottoclient/internal/handler"
	"github.com/hammamikhairi/ottoclient/internal/logger"
	"github.com/hammamikhairi/ottoclient/internal/state"
)

// Session is the surface-independent view of an open chat.
type Session interface {
	SessionID() string
	Surface() string
	ChatState() state.ChatState
	Watch(fn func(state.ChatState)) (unsubscribe func())
	Open(ctx context.Context) error
	Send(text string) error
	Reconnect() error
	Close()
}

var (
	_ Session = (*Chat[state.ChatState])(nil)
	_ Session = (*Kitchen)(nil)
	_ Session = (*RecipeDoc)(nil)
)

// Kitchen is a cooking session with ingredients and timers.
type Kitchen struct {
	*Chat[state.KitchenState]
}

// NewKitchen creates a kitchen session.
func NewKitchen(id string, api domain.SessionAPI, dial Dialer, log *logger.Logger, opts ...Option) *Kitchen {
	return &Kitchen{newChat(id, handler.Kitchen{}, state.KitchenState{}, state.ReduceKitchen,
		func(s state.KitchenState) state.ChatState { return s.Chat }, api, dial, log, opts)}
}

// Timers returns the session's timers in start order.
func (k *Kitchen) Timers() []domain.Timer {
	return k.State().Timers
}

// Ingredients returns the ingredient list and its title.
func (k *Kitchen) Ingredients() (string, []domain.Ingredient) {
	s := k.State()
	return s.IngredientsTitle, s.Ingredients
}

// RecipeDoc is a session that builds a recipe document: the recipe creator
// and the meal planner.
type RecipeDoc struct {
	*Chat[state.RecipeDocState]
	saver domain.RecipeSaver
}

// NewRecipeCreator creates a recipe creator session.
func NewRecipeCreator(id string, api domain.SessionAPI, saver domain.RecipeSaver, dial Dialer, log *logger.Logger, opts ...Option) *RecipeDoc {
	return newRecipeDoc(id, handler.RecipeCreator(), api, saver, dial, log, opts)
}

// NewMealPlanner creates a meal planner session.
func NewMealPlanner(id string, api domain.SessionAPI, saver domain.RecipeSaver, dial Dialer, log *logger.Logger, opts ...Option) *RecipeDoc {
	return newRecipeDoc(id, handler.MealPlanner(), api, saver, dial, log, opts)
}

func newRecipeDoc(id string, surface handler.Recipe, api domain.SessionAPI, saver domain.RecipeSaver, dial Dialer, log *logger.Logger, opts []Option) *RecipeDoc {
	return &RecipeDoc{
		Chat: newChat(id, surface, state.RecipeDocState{}, state.ReduceRecipeDoc,
			func(s state.RecipeDocState) state.ChatState { return s.Chat }, api, dial, log, opts),
		saver: saver,
	}
}

// Recipe returns a copy of the recipe document, or nil.
func (r *RecipeDoc) Recipe() *domain.Recipe {
	return r.State().Recipe.Clone()
}

// Changed reports whether the document has unsaved changes.
func (r *RecipeDoc) Changed() bool {
	return r.State().IsRecipeChanged
}

// EditRecipe applies a local edit and marks the document changed.
func (r *RecipeDoc) EditRecipe(edit func(*domain.Recipe)) error {
	if r.State().Recipe == nil {
		return domain.ErrNoRecipe
	}
	r.store.Dispatch(state.EditRecipe{Edit: edit})
	return nil
}

// SaveRecipe persists the document. On success the server copy, with its
// id, replaces the local one and the changed flag clears.
func (r *RecipeDoc) SaveRecipe(ctx context.Context) (*domain.Recipe, error) {
	current := r.State().Recipe
	if current == nil {
		return nil, domain.ErrNoRecipe
	}
	saved, err := r.saver.SaveRecipe(ctx, r.id, current)
	if err != nil {
		return nil, fmt.Errorf("engine: save recipe: %w", err)
	}
	r.store.Dispatch(state.MarkRecipeSaved{Recipe: saved})
	r.log.Info("saved recipe %q as %s", saved.Name, saved.ID)
	return saved, nil
}

// New creates the session for type t: kitchen, recipe creator, meal planner,
// or plain chat for anything else. The session is not opened.
func New(t domain.SessionType, id string, api domain.SessionAPI, saver domain.RecipeSaver, dial Dialer, log *logger.Logger, opts ...Option) Session {
	switch t {
	case domain.SessionKitchen:
		return NewKitchen(id, api, dial, log, opts...)
	case domain.SessionRecipeCreator:
		return NewRecipeCreator(id, api, saver, dial, log, opts...)
	case domain.SessionMealPlanner:
		return NewMealPlanner(id, api, saver, dial, log, opts...)
	default:
		return NewChat(id, api, dial, log, opts...)
	}
}
