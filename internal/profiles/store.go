package profiles

import (
	"context"
	"sync"
)

// Store persists guardian profiles, keyed by the account id.
type Store interface {
	Put(ctx context.Context, p *UserProfile) error
	Get(ctx context.Context, uid string) (*UserProfile, error)
}

// InMemoryStore keeps profiles in memory for tests and local development.
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*UserProfile
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty in-memory profile store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{profiles: make(map[string]*UserProfile)}
}

func (s *InMemoryStore) Put(ctx context.Context, p *UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *p
	s.profiles[p.UID] = &clone
	return nil
}

func (s *InMemoryStore) Get(ctx context.Context, uid string) (*UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[uid]
	if !ok {
		return nil, ErrProfileNotFound
	}
	clone := *p
	return &clone, nil
}
