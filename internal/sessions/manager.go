package sessions

import (
	"context"
	"fmt"

	"github.com/hammamikhairi/ottoclient/internal/domain"
	"github.com/hammamikhairi/ottoclient/internal/logger"
)

// Option configures a Manager.
type Option func(*Manager)

// WithRevalidate refetches the list after every successful mutation instead
// of trusting the optimistic update.
func WithRevalidate(on bool) Option {
	return func(m *Manager) { m.revalidate = on }
}

// Manager performs CRUD for one session family and keeps its cached list in
// step with the server.
type Manager struct {
	api        domain.SessionAPI
	cache      Cache
	family     Family
	revalidate bool
	log        *logger.Logger
}

// NewManager creates a manager for family.
func NewManager(api domain.SessionAPI, cache Cache, family Family, log *logger.Logger, opts ...Option) *Manager {
	m := &Manager{
		api:    api,
		cache:  cache,
		family: family,
		log:    log.With("sessions").With(string(family.Key)),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Family returns the managed family.
func (m *Manager) Family() Family { return m.family }

// Cached returns the cached list without touching the network.
func (m *Manager) Cached() ([]domain.Session, bool) {
	return m.cache.Get(m.family.Key)
}

// List fetches the family's sessions and caches them.
func (m *Manager) List(ctx context.Context) ([]domain.Session, error) {
	list, err := m.api.ListSessions(ctx, m.family.Type)
	if err != nil {
		return nil, fmt.Errorf("sessions: list %s: %w", m.family.Type, err)
	}
	m.cache.Set(m.family.Key, list)
	return list, nil
}

// Create asks the server for a new session and prepends it to the cached
// list. The id is always server-assigned.
func (m *Manager) Create(ctx context.Context, name string) (*domain.Session, error) {
	s, err := m.api.CreateSession(ctx, m.family.Type, name)
	if err != nil {
		return nil, fmt.Errorf("sessions: create %s: %w", m.family.Type, err)
	}
	m.log.Info("created session %s", s.ID)

	created := *s
	if _, ok := m.cache.Mutate(m.family.Key, func(list []domain.Session) []domain.Session {
		if indexOf(list, created.ID) >= 0 {
			return list
		}
		return append([]domain.Session{created}, list...)
	}); !ok {
		m.cache.Set(m.family.Key, []domain.Session{created})
	}
	m.settle(ctx)
	return s, nil
}

// UpdateName renames a session. The cached name changes immediately and is
// rolled back if the server rejects it.
func (m *Manager) UpdateName(ctx context.Context, id, name string) (*domain.Session, error) {
	prev, cached := m.cache.Mutate(m.family.Key, func(list []domain.Session) []domain.Session {
		if i := indexOf(list, id); i >= 0 {
			list[i].Name = name
		}
		return list
	})

	s, err := m.api.RenameSession(ctx, id, name)
	if err != nil {
		if cached {
			m.cache.Set(m.family.Key, prev)
		}
		m.log.Warn("rename %s failed, rolled back: %v", id, err)
		return nil, fmt.Errorf("sessions: rename %s: %w", id, err)
	}

	confirmed := name
	if s != nil && s.Name != "" {
		confirmed = s.Name
	}
	UpdateSessionName(m.cache, id, confirmed)
	m.settle(ctx)
	return s, nil
}

// Delete removes a session. The cached entry disappears immediately and is
// restored if the server rejects the delete.
func (m *Manager) Delete(ctx context.Context, id string) error {
	prev, cached := m.cache.Mutate(m.family.Key, func(list []domain.Session) []domain.Session {
		return without(list, id)
	})

	if err := m.api.DeleteSession(ctx, id); err != nil {
		if cached {
			m.cache.Set(m.family.Key, prev)
		}
		m.log.Warn("delete %s failed, rolled back: %v", id, err)
		return fmt.Errorf("sessions: delete %s: %w", id, err)
	}
	m.log.Info("deleted session %s", id)
	m.settle(ctx)
	return nil
}

// settle revalidates the list when configured to. A failed refetch keeps
// the optimistic list.
func (m *Manager) settle(ctx context.Context) {
	if !m.revalidate {
		return
	}
	if _, err := m.List(ctx); err != nil {
		m.log.Warn("revalidate failed: %v", err)
	}
}
