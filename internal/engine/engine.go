// Package engine binds one chat session together: persisted history, the
// socket, the payload router, the reducer store and the shared session list
// cache. Each surface (plain chat, kitchen, recipe creator, meal planner) is
// the same Chat over a different state type and router surface.
package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hammamikhairi/ottoclient/internal/domain"
	"github.com/hammamikhairi/ottoclient/internal/handler"
	"github.com/hammamikhairi/ottoclient/internal/logger"
	"github.com/hammamikhairi/ottoclient/internal/sessions"
	"github.com/hammamikhairi/ottoclient/internal/state"
)

// Conn is the socket one session talks through.
type Conn interface {
	Connect(ctx context.Context) error
	Send(text string) error
	Disconnect()
}

// Dialer builds the socket for a session. onMessage must be called with
// inbound envelopes in arrival order.
type Dialer func(sessionID string, onMessage func(domain.Envelope)) (Conn, error)

// Option configures a chat.
type Option func(*config)

type config struct {
	cache sessions.Cache
	now   func() time.Time
	newID func() string
}

// WithCache pushes session renames received over the socket into the
// shared session list cache.
func WithCache(c sessions.Cache) Option {
	return func(cfg *config) { cfg.cache = c }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(cfg *config) { cfg.now = now }
}

// WithIDs overrides how message ids are minted.
func WithIDs(next func() string) Option {
	return func(cfg *config) { cfg.newID = next }
}

// Chat is one open chat session of state type S.
type Chat[S any] struct {
	id     string
	api    domain.SessionAPI
	router *handler.Router
	store  *state.Store[S]
	chat   func(S) state.ChatState
	dial   Dialer
	cfg    config
	log    *logger.Logger

	mu   sync.Mutex
	conn Conn
}

func newChat[S any](
	id string,
	surface handler.Surface,
	initial S,
	reduce state.Reducer[S],
	chat func(S) state.ChatState,
	api domain.SessionAPI,
	dial Dialer,
	log *logger.Logger,
	opts []Option,
) *Chat[S] {
	cfg := config{now: time.Now, newID: generateID}
	for _, o := range opts {
		o(&cfg)
	}
	log = log.With(surface.Name())
	return &Chat[S]{
		id:     id,
		api:    api,
		router: handler.NewRouter(surface, log, handler.WithClock(cfg.now), handler.WithIDs(cfg.newID)),
		store:  state.NewStore(initial, reduce),
		chat:   chat,
		dial:   dial,
		cfg:    cfg,
		log:    log,
	}
}

// NewChat creates a plain chat session.
func NewChat(id string, api domain.SessionAPI, dial Dialer, log *logger.Logger, opts ...Option) *Chat[state.ChatState] {
	return newChat(id, handler.Chat{}, state.ChatState{}, state.ReduceChat,
		func(s state.ChatState) state.ChatState { return s }, api, dial, log, opts)
}

// SessionID returns the session id.
func (c *Chat[S]) SessionID() string { return c.id }

// Surface returns the name of the surface routing this session's payloads.
func (c *Chat[S]) Surface() string { return c.router.Surface().Name() }

// State returns the current state snapshot.
func (c *Chat[S]) State() S { return c.store.Snapshot() }

// ChatState returns the chat part of the current state.
func (c *Chat[S]) ChatState() state.ChatState { return c.chat(c.store.Snapshot()) }

// Subscribe registers fn for state changes. The returned func removes it.
func (c *Chat[S]) Subscribe(fn func(S)) (unsubscribe func()) {
	return c.store.Subscribe(fn)
}

// Watch registers fn for changes to the chat part of the state.
func (c *Chat[S]) Watch(fn func(state.ChatState)) (unsubscribe func()) {
	return c.store.Subscribe(func(s S) { fn(c.chat(s)) })
}

// Open loads the persisted session into state and then connects the socket,
// so live messages land after history.
func (c *Chat[S]) Open(ctx context.Context) error {
	detail, err := c.api.GetSession(ctx, c.id)
	if err != nil {
		return fmt.Errorf("engine: load session %s: %w", c.id, err)
	}
	actions := HistoryActions(detail, c.cfg.newID, c.log)
	c.store.Dispatch(actions...)
	c.log.Info("loaded session %s (%d messages)", c.id, len(detail.Messages))
	return c.connect(ctx)
}

func (c *Chat[S]) connect(ctx context.Context) error {
	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		return nil
	}
	conn, err := c.dial(c.id, c.receive)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("engine: dial %s: %w", c.id, err)
	}
	c.conn = conn
	c.mu.Unlock()

	if err := conn.Connect(ctx); err != nil {
		return fmt.Errorf("engine: connect %s: %w", c.id, err)
	}
	return nil
}

// receive routes one envelope and dispatches the resulting actions.
func (c *Chat[S]) receive(env domain.Envelope) {
	actions := c.router.Route(env)
	if len(actions) == 0 {
		return
	}
	c.store.Dispatch(actions...)

	if c.cfg.cache == nil {
		return
	}
	for _, a := range actions {
		if rename, ok := a.(state.SetSessionName); ok && rename.Name != "" {
			sessions.UpdateSessionName(c.cfg.cache, c.id, rename.Name)
		}
	}
}

// Send delivers user text. The message is added before the frame is
// written so replies never land above it, and removed again when the
// socket rejects the frame.
func (c *Chat[S]) Send(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return domain.ErrNotConnected
	}

	id := c.cfg.newID()
	c.store.Dispatch(state.AddOrUpdateMessage{
		ID:      id,
		Role:    domain.RoleUser,
		Content: domain.Text{Content: text},
		At:      c.cfg.now(),
	})
	if err := conn.Send(text); err != nil {
		c.store.Dispatch(state.RemoveMessage{ID: id})
		return fmt.Errorf("engine: send: %w", err)
	}
	return nil
}

// Reconnect forces a fresh socket cycle when the connection supports it.
func (c *Chat[S]) Reconnect() error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return domain.ErrNotConnected
	}

	r, ok := conn.(interface{ Reconnect() error })
	if !ok {
		return fmt.Errorf("engine: connection cannot reconnect")
	}
	return r.Reconnect()
}

// Reset clears the chat state.
func (c *Chat[S]) Reset() {
	c.store.Dispatch(state.ResetChat{})
}

// Close disconnects the socket. Pending reconnects are cancelled.
func (c *Chat[S]) Close() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		conn.Disconnect()
		c.log.Debug("closed session %s", c.id)
	}
}
