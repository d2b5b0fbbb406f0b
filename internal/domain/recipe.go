// Package domain defines the core types and interfaces for the cooking
// assistant client. All other packages depend on domain; domain depends on
// nothing outside the standard library.
package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Recipe is a recipe document. An empty ID marks a client-only recipe that
// has never been saved.
type Recipe struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Description      string       `json:"description,omitempty"`
	Ingredients      []Ingredient `json:"ingredients"`
	Steps            []RecipeStep `json:"steps"`
	TotalTimeMinutes *int         `json:"total_time_minutes,omitempty"`
	Difficulty       string       `json:"difficulty,omitempty"`
	Servings         *int         `json:"servings,omitempty"`
	Tags             []string     `json:"tags,omitempty"`
	CreatedAt        time.Time    `json:"created_at,omitzero"`
	UpdatedAt        time.Time    `json:"updated_at,omitzero"`
}

// Clone returns a deep copy of the recipe.
func (r *Recipe) Clone() *Recipe {
	if r == nil {
		return nil
	}
	out := *r
	out.Ingredients = append([]Ingredient(nil), r.Ingredients...)
	out.Steps = append([]RecipeStep(nil), r.Steps...)
	out.Tags = append([]string(nil), r.Tags...)
	return &out
}

// Saved reports whether the recipe exists on the server.
func (r *Recipe) Saved() bool {
	return r != nil && r.ID != ""
}

// RecipeSummary is a lightweight view of a recipe for listing.
type RecipeSummary struct {
	ID          string
	Name        string
	Description string
	Tags        []string
}

// Ingredient is one line of an ingredient list. Name is the identity used
// for merges.
type Ingredient struct {
	Name        string  `json:"name"`
	Amount      *Amount `json:"amount,omitempty"`
	Unit        string  `json:"unit,omitempty"`
	Highlighted *bool   `json:"highlighted,omitempty"`
	Used        *bool   `json:"used,omitempty"`
}

// Merge returns ing with every field present in patch copied over.
func (ing Ingredient) Merge(patch Ingredient) Ingredient {
	if patch.Amount != nil {
		a := *patch.Amount
		ing.Amount = &a
	}
	if patch.Unit != "" {
		ing.Unit = patch.Unit
	}
	if patch.Highlighted != nil {
		v := *patch.Highlighted
		ing.Highlighted = &v
	}
	if patch.Used != nil {
		v := *patch.Used
		ing.Used = &v
	}
	return ing
}

// Amount is an ingredient quantity. The backend sends either a number (2.5)
// or free text ("a pinch"); numbers are kept as their literal and written
// back as numbers.
type Amount string

// UnmarshalJSON accepts a JSON string or number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	*a = Amount(n.String())
	return nil
}

// MarshalJSON writes numeric literals as numbers and everything else as a string.
func (a Amount) MarshalJSON() ([]byte, error) {
	if isNumberLiteral(string(a)) {
		return []byte(a), nil
	}
	return json.Marshal(string(a))
}

func isNumberLiteral(s string) bool {
	if s == "" {
		return false
	}
	var n json.Number
	return json.Unmarshal([]byte(s), &n) == nil
}

// RecipeStep is one instruction. On the wire a step is either a bare string
// or {"instruction": ..., "duration_minutes": ...}.
type RecipeStep struct {
	Instruction     string `json:"instruction"`
	DurationMinutes *int   `json:"duration_minutes,omitempty"`
}

// UnmarshalJSON accepts both step shapes.
func (s *RecipeStep) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*s = RecipeStep{Instruction: text}
		return nil
	}
	type plain RecipeStep
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = RecipeStep(p)
	return nil
}

// MarshalJSON writes untimed steps as bare strings.
func (s RecipeStep) MarshalJSON() ([]byte, error) {
	if s.DurationMinutes == nil {
		return json.Marshal(s.Instruction)
	}
	type plain RecipeStep
	return json.Marshal(plain(s))
}
