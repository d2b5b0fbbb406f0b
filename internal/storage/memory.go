// Package storage holds the client-side session list cache. Lists are keyed
// by family ("kitchen-sessions", ...) and every key has its own subscribers,
// so any component that changes a list is seen by every view of it.
package storage

import (
	"sort"
	"sync"

	"github.com/hammamikhairi/ottoclient/internal/domain"
	"github.com/hammamikhairi/ottoclient/internal/logger"
)

// Key names one cached session list.
type Key string

// Listener receives a copy of a list after it changes. A nil list means the
// key was invalidated.
type Listener func(key Key, list []domain.Session)

// MemoryCache is an in-memory session list cache. Safe for concurrent access.
type MemoryCache struct {
	mu      sync.RWMutex
	lists   map[Key][]domain.Session
	subs    map[Key]map[int]Listener
	nextSub int
	log     *logger.Logger
}

// NewMemoryCache creates an empty cache.
func NewMemoryCache(log *logger.Logger) *MemoryCache {
	return &MemoryCache{
		lists: make(map[Key][]domain.Session),
		subs:  make(map[Key]map[int]Listener),
		log:   log.With("cache"),
	}
}

// Get returns a copy of the cached list.
func (c *MemoryCache) Get(key Key) ([]domain.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	list, ok := c.lists[key]
	if !ok {
		return nil, false
	}
	return clone(list), true
}

// Set replaces the list under key.
func (c *MemoryCache) Set(key Key, list []domain.Session) {
	c.mu.Lock()
	c.lists[key] = clone(list)
	c.mu.Unlock()

	c.log.Debug("set %s (%d sessions)", key, len(list))
	c.publish(key)
}

// Invalidate drops the list under key.
func (c *MemoryCache) Invalidate(key Key) {
	c.mu.Lock()
	_, ok := c.lists[key]
	delete(c.lists, key)
	c.mu.Unlock()

	if ok {
		c.publish(key)
	}
}

// Mutate applies fn to the cached list under key and stores the result. It
// does nothing when key is not cached. The previous list is returned so a
// failed server call can restore it.
func (c *MemoryCache) Mutate(key Key, fn func([]domain.Session) []domain.Session) (prev []domain.Session, ok bool) {
	c.mu.Lock()
	list, ok := c.lists[key]
	if ok {
		prev = clone(list)
		c.lists[key] = fn(clone(list))
	}
	c.mu.Unlock()

	if ok {
		c.publish(key)
	}
	return prev, ok
}

// MutateAll applies fn to every cached list. fn reports whether it changed
// the list; only changed keys are stored and published.
func (c *MemoryCache) MutateAll(fn func(key Key, list []domain.Session) ([]domain.Session, bool)) []Key {
	c.mu.Lock()
	var changed []Key
	for key, list := range c.lists {
		next, ok := fn(key, clone(list))
		if ok {
			c.lists[key] = next
			changed = append(changed, key)
		}
	}
	c.mu.Unlock()

	sort.Slice(changed, func(i, j int) bool { return changed[i] < changed[j] })
	for _, key := range changed {
		c.publish(key)
	}
	return changed
}

// Subscribe registers fn for changes under key. The returned func removes it.
func (c *MemoryCache) Subscribe(key Key, fn Listener) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	if c.subs[key] == nil {
		c.subs[key] = make(map[int]Listener)
	}
	c.subs[key][id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs[key], id)
	}
}

// publish notifies key's subscribers outside the lock.
func (c *MemoryCache) publish(key Key) {
	c.mu.RLock()
	list, ok := c.lists[key]
	var snapshot []domain.Session
	if ok {
		snapshot = clone(list)
	}
	fns := make([]Listener, 0, len(c.subs[key]))
	for _, fn := range c.subs[key] {
		fns = append(fns, fn)
	}
	c.mu.RUnlock()

	for _, fn := range fns {
		fn(key, clone(snapshot))
	}
}

func clone(list []domain.Session) []domain.Session {
	if list == nil {
		return nil
	}
	return append(make([]domain.Session, 0, len(list)), list...)
}
