package state

import (
	"sync"
)

// Reducer folds one action into a state value.
type Reducer[S any] func(S, Action) S

// Store holds one state value and serializes dispatches to it. Subscribers
// are called after every dispatch with the new snapshot, in dispatch order.
// A subscriber must not dispatch to the store that notifies it.
type Store[S any] struct {
	mu     sync.Mutex
	state  S
	reduce Reducer[S]

	// notifyMu is taken before mu is released so snapshots reach
	// subscribers in the order they were produced.
	notifyMu sync.Mutex

	subMu sync.Mutex
	subs  map[int]func(S)
	next  int
}

// NewStore creates a store with an initial state.
func NewStore[S any](initial S, reduce Reducer[S]) *Store[S] {
	return &Store[S]{
		state:  initial,
		reduce: reduce,
		subs:   make(map[int]func(S)),
	}
}

// Dispatch applies the actions in order and returns the resulting state.
func (s *Store[S]) Dispatch(actions ...Action) S {
	if len(actions) == 0 {
		return s.Snapshot()
	}

	s.mu.Lock()
	for _, a := range actions {
		s.state = s.reduce(s.state, a)
	}
	snap := s.state
	s.notifyMu.Lock()
	s.mu.Unlock()

	defer s.notifyMu.Unlock()
	for _, fn := range s.subscribers() {
		fn(snap)
	}
	return snap
}

// Snapshot returns the current state.
func (s *Store[S]) Snapshot() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn for state changes. The returned func removes it.
func (s *Store[S]) Subscribe(fn func(S)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.next
	s.next++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store[S]) subscribers() []func(S) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	out := make([]func(S), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}
