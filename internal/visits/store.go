package visits

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store defines the interface for visit persistence. The store owns id and
// CreatedAt assignment; both are immutable afterwards, as is UserID.
type Store interface {
	Create(ctx context.Context, v *Visit) error
	Get(ctx context.Context, id string) (*Visit, error)
	ListByUser(ctx context.Context, userID string) ([]Visit, error)
	ListByUserAndStatus(ctx context.Context, userID string, status Status) ([]Visit, error)
	// ListByUserAndDateRange returns visits with from <= scheduledDate < to.
	ListByUserAndDateRange(ctx context.Context, userID, from, to string) ([]Visit, error)
	Update(ctx context.Context, id string, upd Update) error
	// MarkMissed transitions a visit to status=missed and clears its
	// acknowledged flag so it re-enters alert visibility.
	MarkMissed(ctx context.Context, id string) error
	SetAcknowledged(ctx context.Context, id string, acknowledged bool) error
	Delete(ctx context.Context, id string) error
}

// InMemoryStore is a Store implementation backed by a map, used in tests and
// local development.
type InMemoryStore struct {
	mu     sync.RWMutex
	visits map[string]*Visit
}

// NewInMemoryStore creates a new in-memory visit store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{visits: make(map[string]*Visit)}
}

var _ Store = (*InMemoryStore)(nil)

func (s *InMemoryStore) Create(ctx context.Context, v *Visit) error {
	v.ID = uuid.New().String()
	v.CreatedAt = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *v
	s.visits[v.ID] = &clone
	return nil
}

func (s *InMemoryStore) Get(ctx context.Context, id string) (*Visit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.visits[id]
	if !ok {
		return nil, ErrVisitNotFound
	}
	clone := *v
	return &clone, nil
}

func (s *InMemoryStore) ListByUser(ctx context.Context, userID string) ([]Visit, error) {
	return s.list(func(v *Visit) bool { return v.UserID == userID })
}

func (s *InMemoryStore) ListByUserAndStatus(ctx context.Context, userID string, status Status) ([]Visit, error) {
	return s.list(func(v *Visit) bool { return v.UserID == userID && v.Status == status })
}

func (s *InMemoryStore) ListByUserAndDateRange(ctx context.Context, userID, from, to string) ([]Visit, error) {
	return s.list(func(v *Visit) bool {
		return v.UserID == userID && v.ScheduledDate >= from && v.ScheduledDate < to
	})
}

func (s *InMemoryStore) list(keep func(*Visit) bool) ([]Visit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Visit{}
	for _, v := range s.visits {
		if keep(v) {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (s *InMemoryStore) Update(ctx context.Context, id string, upd Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.visits[id]
	if !ok {
		return ErrVisitNotFound
	}
	if upd.CaregiverName != nil {
		v.CaregiverName = *upd.CaregiverName
	}
	if upd.ScheduledDate != nil {
		v.ScheduledDate = *upd.ScheduledDate
	}
	if upd.ScheduledTime != nil {
		v.ScheduledTime = *upd.ScheduledTime
	}
	if upd.ActualArrival != nil {
		v.ActualArrival = *upd.ActualArrival
	}
	if upd.Status != nil {
		v.Status = *upd.Status
	}
	if upd.Notes != nil {
		v.Notes = *upd.Notes
	}
	if upd.Acknowledged != nil {
		v.Acknowledged = *upd.Acknowledged
	}
	return nil
}

func (s *InMemoryStore) MarkMissed(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.visits[id]
	if !ok {
		return ErrVisitNotFound
	}
	v.Status = StatusMissed
	v.Acknowledged = false
	return nil
}

func (s *InMemoryStore) SetAcknowledged(ctx context.Context, id string, acknowledged bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.visits[id]
	if !ok {
		return ErrVisitNotFound
	}
	v.Acknowledged = acknowledged
	return nil
}

func (s *InMemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.visits[id]; !ok {
		return ErrVisitNotFound
	}
	delete(s.visits, id)
	return nil
}
