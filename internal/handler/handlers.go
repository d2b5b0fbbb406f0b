// Package handler translates decoded server payloads into state actions.
//
// Each payload tag has one handler function. A Surface decides which tags
// it consumes itself (the kitchen takes ingredients and timers, the recipe
// surfaces take recipes and recipe edits); everything else falls through to
// the base chat handlers, so every payload is handled exactly once.
package handler

import (
	"time"

	"github.com/hammamikhairi/ottoclient/internal/domain"
	"github.com/hammamikhairi/ottoclient/internal/state"
)

// HandleText adds or streams an assistant text message.
func HandleText(id string, c domain.Text, now time.Time) []state.Action {
	return []state.Action{state.AddOrUpdateMessage{ID: id, Role: domain.RoleAssistant, Content: c, At: now}}
}

// HandleSessionName renames the session.
func HandleSessionName(c domain.SessionName) []state.Action {
	return []state.Action{state.SetSessionName{Name: c.Name}}
}

// HandleRecipeName names the session after the recipe under discussion.
func HandleRecipeName(c domain.RecipeName) []state.Action {
	return []state.Action{state.SetSessionName{Name: c.Name}}
}

// HandleSystem maps status notices: thinking shows the indicator, errors
// are shown as a message, connected needs no state change.
func HandleSystem(id string, c domain.System, now time.Time) []state.Action {
	switch c.Status {
	case domain.SystemThinking:
		return []state.Action{state.SetAgentStatus{Text: c.Message}}
	case domain.SystemError:
		return []state.Action{state.AddOrUpdateMessage{ID: id, Role: domain.RoleAssistant, Content: c, At: now}}
	default:
		return nil
	}
}

// HandleIngredients sets or merges the kitchen ingredient list.
func HandleIngredients(c domain.Ingredients) []state.Action {
	if c.Action == domain.IngredientsUpdate {
		return []state.Action{state.UpdateIngredients{Items: c.Items}}
	}
	return []state.Action{state.SetIngredients{Title: c.Title, Items: c.Items}}
}

// HandleTimer starts a kitchen timer. A timer without a start time starts
// on receipt.
func HandleTimer(c domain.Timer, now time.Time) []state.Action {
	if c.StartedAt.IsZero() {
		c.StartedAt = now
	}
	return []state.Action{state.AddTimer{Timer: c}}
}

// HandleRecipe replaces the recipe document.
func HandleRecipe(c domain.RecipeContent) []state.Action {
	return []state.Action{state.SetRecipe{Recipe: c.ToRecipe()}}
}

// HandleRecipeUpdate applies an incremental recipe edit.
func HandleRecipeUpdate(c domain.RecipeUpdate, now time.Time) []state.Action {
	return []state.Action{state.ApplyRecipeUpdate{Update: c, At: now}}
}

// HandleCard shows a structured payload as an assistant message on surfaces
// that have no dedicated panel for it.
func HandleCard(id string, c domain.Content, now time.Time) []state.Action {
	return []state.Action{state.AddOrUpdateMessage{ID: id, Role: domain.RoleAssistant, Content: c, At: now}}
}
