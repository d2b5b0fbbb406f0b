package domain

import (
	"encoding/json"
	"time"
)

// SessionType identifies the surface a session belongs to.
type SessionType string

const (
	SessionKitchen       SessionType = "kitchen"
	SessionMealPlanner   SessionType = "meal_planner"
	SessionRecipeCreator SessionType = "recipe_creator"
)

// String returns the wire spelling of the session type.
func (t SessionType) String() string { return string(t) }

// Session is the server-owned session metadata shown in session lists.
// The client never assigns ID.
type Session struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	Name        string       `json:"session_name"`
	Type        SessionType  `json:"session_type"`
	Ingredients []Ingredient `json:"ingredients,omitempty"`
	Recipe      *Recipe      `json:"recipe,omitempty"`
	RecipeID    string       `json:"recipe_id,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// SessionDetail is a session together with its persisted history.
type SessionDetail struct {
	Session
	Messages []PersistedMessage `json:"messages,omitempty"`
}

// PersistedMessage is a history entry as stored by the backend. Content is
// either a structured payload object or, for older sessions, a raw string.
type PersistedMessage struct {
	ID        string          `json:"id"`
	Role      Role            `json:"role"`
	Content   json.RawMessage `json:"content"`
	Timestamp time.Time       `json:"timestamp"`
}

// User is the authenticated account.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Features holds backend feature flags.
type Features map[string]bool

// FeatureInstacart gates the shopping-list export.
const FeatureInstacart = "instacart"

// Enabled reports whether the named flag is on.
func (f Features) Enabled(name string) bool {
	return f[name]
}
