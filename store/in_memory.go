package store

import (
	"sort"
	"sync"

	"github.com/hupe1980/wcpairing/core"
)

// InMemoryStore is a volatile PairingStore keeping pairings in a process
// local map. It is safe for concurrent access and best suited for tests or
// short lived clients. Pairings are cloned on the way in and out so callers
// can never mutate stored state.
type InMemoryStore struct {
	mu       sync.RWMutex
	pairings map[string]core.Pairing
}

// NewInMemoryStore constructs an empty in-memory pairing store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{pairings: make(map[string]core.Pairing)}
}

// Save stores (or overwrites) the pairing under its topic.
func (s *InMemoryStore) Save(p core.Pairing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairings[p.Topic] = p.Clone()
	return nil
}

// Get returns a copy of the pairing or ErrNotFound.
func (s *InMemoryStore) Get(topic string) (core.Pairing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pairings[topic]
	if !ok {
		return core.Pairing{}, ErrNotFound
	}
	return p.Clone(), nil
}

// List returns every stored pairing ordered by topic.
func (s *InMemoryStore) List() ([]core.Pairing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Pairing, 0, len(s.pairings))
	for _, p := range s.pairings {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Topic < out[j].Topic })
	return out, nil
}

// Delete removes the pairing or returns ErrNotFound.
func (s *InMemoryStore) Delete(topic string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pairings[topic]; !ok {
		return ErrNotFound
	}
	delete(s.pairings, topic)
	return nil
}
