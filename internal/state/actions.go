// Package state holds the reducers that fold routed server events into
// client state. Reducers are pure functions of (state, action) and never
// mutate their input; slices and recipes are copied before they change so a
// snapshot handed to a subscriber stays valid.
package state

import (
	"time"

	"github.com/hammamikhairi/ottoclient/internal/domain"
)

// Action is a state mutation. The set of actions is closed.
type Action interface {
	action()
}

// AddOrUpdateMessage appends a message, or replaces the content of the
// message with the same ID. At defaults to the dispatch time.
type AddOrUpdateMessage struct {
	ID      string
	Role    domain.Role
	Content domain.Content
	At      time.Time
}

// RemoveMessage drops the message with the given ID.
type RemoveMessage struct {
	ID string
}

// SetAgentStatus shows the "assistant is thinking" indicator.
type SetAgentStatus struct {
	Text string
}

// ResetAgentStatus hides the indicator.
type ResetAgentStatus struct{}

// SetSessionName overwrites the session display name.
type SetSessionName struct {
	Name string
}

// LoadHistory replaces the message list with persisted history.
type LoadHistory struct {
	Messages    []domain.ChatMessage
	SessionName string
}

// ResetChat clears all chat state.
type ResetChat struct{}

// SetIngredients replaces the kitchen ingredient list.
type SetIngredients struct {
	Title string
	Items []domain.Ingredient
}

// UpdateIngredients merges items into the kitchen list by name.
type UpdateIngredients struct {
	Items []domain.Ingredient
}

// AddTimer appends a kitchen timer.
type AddTimer struct {
	Timer domain.Timer
}

// SetRecipe replaces the recipe document with one produced in the chat.
type SetRecipe struct {
	Recipe *domain.Recipe
}

// LoadRecipe installs a persisted recipe without marking it changed.
type LoadRecipe struct {
	Recipe *domain.Recipe
}

// ApplyRecipeUpdate applies an incremental recipe edit. At stamps
// updated_at and defaults to the dispatch time.
type ApplyRecipeUpdate struct {
	Update domain.RecipeUpdate
	At     time.Time
}

// EditRecipe applies a local edit to the recipe document.
type EditRecipe struct {
	Edit func(*domain.Recipe)
}

// MarkRecipeSaved installs the server's copy of a saved recipe and clears
// the changed flag.
type MarkRecipeSaved struct {
	Recipe *domain.Recipe
}

func (AddOrUpdateMessage) action() {}
func (RemoveMessage) action()      {}
func (SetAgentStatus) action()     {}
func (ResetAgentStatus) action()   {}
func (SetSessionName) action()     {}
func (LoadHistory) action()        {}
func (ResetChat) action()          {}
func (SetIngredients) action()     {}
func (UpdateIngredients) action()  {}
func (AddTimer) action()           {}
func (SetRecipe) action()          {}
func (LoadRecipe) action()         {}
func (ApplyRecipeUpdate) action()  {}
func (EditRecipe) action()         {}
func (MarkRecipeSaved) action()    {}
