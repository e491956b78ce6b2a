package identity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store persists guardian accounts.
type Store interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
}

// InMemoryStore keeps accounts in memory for tests and local development.
type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*Account
	byEmail map[string]string
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty in-memory account store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[string]*Account),
		byEmail: make(map[string]string),
	}
}

func (s *InMemoryStore) Create(ctx context.Context, a *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[a.Email]; exists {
		return ErrEmailTaken
	}
	a.ID = uuid.New().String()
	a.CreatedAt = time.Now().UTC()

	clone := *a
	s.byID[a.ID] = &clone
	s.byEmail[a.Email] = a.ID
	return nil
}

func (s *InMemoryStore) GetByID(ctx context.Context, id string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byID[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	clone := *a
	return &clone, nil
}

func (s *InMemoryStore) GetByEmail(ctx context.Context, email string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrAccountNotFound
	}
	clone := *s.byID[id]
	return &clone, nil
}
