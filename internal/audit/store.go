package audit

import (
	"context"
	"sync"

	id "vaxledger/pkg/domain"
)

// Store is the append-only persistence for the event trail. Append order is
// the audit order; implementations never mutate or remove entries.
type Store interface {
	Append(ctx context.Context, event Event) error
	List(ctx context.Context) ([]Event, error)
	ListByChild(ctx context.Context, childID id.ChildID) ([]Event, error)
}

// InMemoryStore keeps the event trail in process memory. It favors clarity
// over performance and backs tests and single-node deployments.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out, nil
}

func (s *InMemoryStore) ListByChild(_ context.Context, childID id.ChildID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.events {
		if e.ChildID == childID {
			out = append(out, e)
		}
	}
	return out, nil
}
