package domain

import "context"

// SessionAPI is the backend surface for session metadata and history.
type SessionAPI interface {
	ListSessions(ctx context.Context, t SessionType) ([]Session, error)
	CreateSession(ctx context.Context, t SessionType, name string) (*Session, error)
	GetSession(ctx context.Context, id string) (*SessionDetail, error)
	RenameSession(ctx context.Context, id, name string) (*Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// RecipeSaver persists the recipe document of a session.
type RecipeSaver interface {
	SaveRecipe(ctx context.Context, sessionID string, recipe *Recipe) (*Recipe, error)
}

// RecipeAPI is the backend surface for saved recipes.
type RecipeAPI interface {
	ListRecipes(ctx context.Context) ([]Recipe, error)
	GetRecipe(ctx context.Context, id string) (*Recipe, error)
	DeleteRecipe(ctx context.Context, id string) error
}

// Notifier delivers messages to the user. Implementations can write to
// stdout or any other sink.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}
