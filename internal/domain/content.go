package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ContentType is the discriminant of a message payload.
type ContentType string

const (
	ContentText         ContentType = "text"
	ContentIngredients  ContentType = "ingredients"
	ContentRecipeName   ContentType = "recipe_name"
	ContentSessionName  ContentType = "session_name"
	ContentRecipe       ContentType = "recipe"
	ContentRecipeUpdate ContentType = "recipe_update"
	ContentTimer        ContentType = "timer"
	// ContentSystem groups the connected/error/thinking payloads. On the wire
	// a system payload carries its status as its "type".
	ContentSystem ContentType = "system"
)

// Content is a message payload. The set of implementations is closed:
// Text, Ingredients, RecipeName, SessionName, RecipeContent, RecipeUpdate,
// Timer and System.
type Content interface {
	Type() ContentType
	sealed()
}

// Text is plain (possibly streamed) assistant or user text.
type Text struct {
	Content string `json:"content"`
}

// IngredientAction selects how an ingredients payload is applied.
type IngredientAction string

const (
	IngredientsSet    IngredientAction = "set"
	IngredientsUpdate IngredientAction = "update"
)

// Ingredients replaces or merges the kitchen ingredient list. An empty
// Action means set.
type Ingredients struct {
	Title  string           `json:"title,omitempty"`
	Items  []Ingredient     `json:"items"`
	Action IngredientAction `json:"action,omitempty"`
}

// RecipeName announces the name of the recipe being discussed.
type RecipeName struct {
	Name string `json:"name"`
}

// SessionName renames the current session.
type SessionName struct {
	Name string `json:"name"`
}

// RecipeContent is a full recipe emitted by the assistant.
type RecipeContent struct {
	RecipeID         string       `json:"recipe_id"`
	Name             string       `json:"name"`
	Description      string       `json:"description,omitempty"`
	Ingredients      []Ingredient `json:"ingredients"`
	Steps            []RecipeStep `json:"steps"`
	TotalTimeMinutes *int         `json:"total_time_minutes,omitempty"`
	Difficulty       string       `json:"difficulty,omitempty"`
	Servings         *int         `json:"servings,omitempty"`
	Tags             []string     `json:"tags,omitempty"`
}

// ToRecipe converts the payload into a recipe document.
func (c RecipeContent) ToRecipe() *Recipe {
	return &Recipe{
		ID:               c.RecipeID,
		Name:             c.Name,
		Description:      c.Description,
		Ingredients:      append([]Ingredient(nil), c.Ingredients...),
		Steps:            append([]RecipeStep(nil), c.Steps...),
		TotalTimeMinutes: c.TotalTimeMinutes,
		Difficulty:       c.Difficulty,
		Servings:         c.Servings,
		Tags:             append([]string(nil), c.Tags...),
	}
}

// RecipeUpdateAction names one incremental recipe edit.
type RecipeUpdateAction string

const (
	RecipeSetMetadata    RecipeUpdateAction = "set_metadata"
	RecipeSetIngredients RecipeUpdateAction = "set_ingredients"
	RecipeSetSteps       RecipeUpdateAction = "set_steps"
)

// RecipeUpdate is an incremental edit to the recipe document. Only the
// fields relevant to Action are read; nil pointers mean "not present".
type RecipeUpdate struct {
	Action           RecipeUpdateAction `json:"action"`
	Name             *string            `json:"name,omitempty"`
	Description      *string            `json:"description,omitempty"`
	TotalTimeMinutes *int               `json:"total_time_minutes,omitempty"`
	Difficulty       *string            `json:"difficulty,omitempty"`
	Servings         *int               `json:"servings,omitempty"`
	Tags             []string           `json:"tags,omitempty"`
	Ingredients      []Ingredient       `json:"ingredients,omitempty"`
	Steps            []RecipeStep       `json:"steps,omitempty"`
}

// Timer starts a countdown. Duration is in seconds.
type Timer struct {
	Duration  int       `json:"duration"`
	Label     string    `json:"label"`
	StartedAt time.Time `json:"started_at,omitzero"`
}

// Length returns the timer duration.
func (t Timer) Length() time.Duration {
	return time.Duration(t.Duration) * time.Second
}

// SystemStatus is the kind of a system payload.
type SystemStatus string

const (
	SystemConnected SystemStatus = "connected"
	SystemError     SystemStatus = "error"
	SystemThinking  SystemStatus = "thinking"
)

// System is a connection or agent status notice.
type System struct {
	Status  SystemStatus `json:"-"`
	Message string       `json:"message"`
}

func (Text) Type() ContentType          { return ContentText }
func (Ingredients) Type() ContentType   { return ContentIngredients }
func (RecipeName) Type() ContentType    { return ContentRecipeName }
func (SessionName) Type() ContentType   { return ContentSessionName }
func (RecipeContent) Type() ContentType { return ContentRecipe }
func (RecipeUpdate) Type() ContentType  { return ContentRecipeUpdate }
func (Timer) Type() ContentType         { return ContentTimer }
func (System) Type() ContentType        { return ContentSystem }

func (Text) sealed()          {}
func (Ingredients) sealed()   {}
func (RecipeName) sealed()    {}
func (SessionName) sealed()   {}
func (RecipeContent) sealed() {}
func (RecipeUpdate) sealed()  {}
func (Timer) sealed()         {}
func (System) sealed()        {}

// MarshalJSON writes the payload with its "type" discriminant.
func (c Text) MarshalJSON() ([]byte, error) {
	type plain Text
	return marshalTagged(string(ContentText), plain(c))
}

func (c Ingredients) MarshalJSON() ([]byte, error) {
	type plain Ingredients
	return marshalTagged(string(ContentIngredients), plain(c))
}

func (c RecipeName) MarshalJSON() ([]byte, error) {
	type plain RecipeName
	return marshalTagged(string(ContentRecipeName), plain(c))
}

func (c SessionName) MarshalJSON() ([]byte, error) {
	type plain SessionName
	return marshalTagged(string(ContentSessionName), plain(c))
}

func (c RecipeContent) MarshalJSON() ([]byte, error) {
	type plain RecipeContent
	return marshalTagged(string(ContentRecipe), plain(c))
}

func (c RecipeUpdate) MarshalJSON() ([]byte, error) {
	type plain RecipeUpdate
	return marshalTagged(string(ContentRecipeUpdate), plain(c))
}

func (c Timer) MarshalJSON() ([]byte, error) {
	type plain Timer
	return marshalTagged(string(ContentTimer), plain(c))
}

// MarshalJSON writes the status as the payload "type".
func (c System) MarshalJSON() ([]byte, error) {
	type plain System
	return marshalTagged(string(c.Status), plain(c))
}

// marshalTagged splices "type":tag in front of v's JSON object.
func marshalTagged(tag string, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(body) < 2 || body[0] != '{' {
		return nil, fmt.Errorf("content %s: not an object", tag)
	}
	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	buf.WriteString(strconv.Quote(tag))
	if len(body) > 2 {
		buf.WriteByte(',')
	}
	buf.Write(body[1:])
	return buf.Bytes(), nil
}
