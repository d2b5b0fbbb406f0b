package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/hammamikhairi/ottoclient/internal/content"
	"github.com/hammamikhairi/ottoclient/internal/domain"
	"github.com/hammamikhairi/ottoclient/internal/logger"
	"github.com/hammamikhairi/ottoclient/internal/state"
)

// Option configures a Router.
type Option func(*Router)

// WithClock overrides the time source stamped on actions.
func WithClock(now func() time.Time) Option {
	return func(r *Router) { r.now = now }
}

// WithIDs overrides how ids are minted for payloads that arrive without one.
func WithIDs(next func() string) Option {
	return func(r *Router) { r.newID = next }
}

// Router turns socket envelopes into actions for one surface.
type Router struct {
	surface Surface
	log     *logger.Logger
	now     func() time.Time
	newID   func() string
}

// NewRouter creates a router for the given surface.
func NewRouter(surface Surface, log *logger.Logger, opts ...Option) *Router {
	if surface == nil {
		surface = Chat{}
	}
	r := &Router{
		surface: surface,
		log:     log.With("router"),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Surface returns the router's surface.
func (r *Router) Surface() Surface { return r.surface }

// Route returns the actions for one envelope. Malformed or unknown payloads
// are logged and yield no actions.
func (r *Router) Route(env domain.Envelope) []state.Action {
	switch env.Type {
	case domain.EnvelopeAgentMessage, domain.EnvelopeSystem:
		c, err := content.Decode(env.Content)
		if err != nil {
			r.log.Warn("dropping %s payload (type=%q): %v", env.Type, content.TypeOf(env.Content), err)
			return nil
		}
		id := env.MessageID
		if id == "" {
			id = r.newID()
		}
		return r.Dispatch(id, c)
	case domain.EnvelopeUserMessage:
		if env.MessageID == "" {
			// Echo of a message already added on send.
			return nil
		}
		c, err := content.Decode(env.Content)
		if err != nil {
			r.log.Warn("dropping user echo %s: %v", env.MessageID, err)
			return nil
		}
		return []state.Action{state.AddOrUpdateMessage{ID: env.MessageID, Role: domain.RoleUser, Content: c, At: r.now()}}
	default:
		r.log.Warn("ignoring envelope with unknown type %q", env.Type)
		return nil
	}
}

// Dispatch routes one decoded payload: the surface first, then the base
// chat handlers.
func (r *Router) Dispatch(id string, c domain.Content) []state.Action {
	now := r.now()
	if actions, ok := r.surface.Handle(id, c, now); ok {
		r.log.Debug("%s handled %s (%d actions)", r.surface.Name(), c.Type(), len(actions))
		return actions
	}

	switch v := c.(type) {
	case domain.Text:
		return HandleText(id, v, now)
	case domain.SessionName:
		return HandleSessionName(v)
	case domain.RecipeName:
		return HandleRecipeName(v)
	case domain.System:
		return HandleSystem(id, v, now)
	case domain.Ingredients, domain.Timer, domain.RecipeContent, domain.RecipeUpdate:
		return HandleCard(id, v, now)
	default:
		r.log.Warn("no handler for content %T", c)
		return nil
	}
}
