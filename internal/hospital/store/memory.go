package store

import (
	"context"
	"sync"

	"vaxledger/internal/hospital/models"
	id "vaxledger/pkg/domain"
	"vaxledger/pkg/platform/sentinel"
)

// InMemoryStore keeps hospital registrations in process memory. It favors
// clarity over performance and backs tests and single-node deployments.
type InMemoryStore struct {
	mu        sync.RWMutex
	hospitals map[id.Identity]*models.Hospital
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{hospitals: make(map[id.Identity]*models.Hospital)}
}

func (s *InMemoryStore) Save(_ context.Context, hospital *models.Hospital, validate func(existing *models.Hospital) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if validate != nil {
		var existing *models.Hospital
		if current, ok := s.hospitals[hospital.ID]; ok {
			clone := *current
			existing = &clone
		}
		if err := validate(existing); err != nil {
			return err
		}
	}
	clone := *hospital
	s.hospitals[hospital.ID] = &clone
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, identity id.Identity) (*models.Hospital, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hospital, ok := s.hospitals[identity]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *hospital
	return &clone, nil
}

func (s *InMemoryStore) Execute(_ context.Context, identity id.Identity,
	validate func(h *models.Hospital) error,
	mutate func(h *models.Hospital),
) (*models.Hospital, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hospital, ok := s.hospitals[identity]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(hospital); err != nil {
		return nil, err
	}
	mutate(hospital)
	clone := *hospital
	return &clone, nil
}

// InMemoryAuthorizationSet is the process-local fast-lookup set.
type InMemoryAuthorizationSet struct {
	mu         sync.RWMutex
	authorized map[id.Identity]struct{}
}

func NewInMemoryAuthorizationSet() *InMemoryAuthorizationSet {
	return &InMemoryAuthorizationSet{authorized: make(map[id.Identity]struct{})}
}

func (s *InMemoryAuthorizationSet) Set(_ context.Context, identity id.Identity, authorized bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if authorized {
		s.authorized[identity] = struct{}{}
	} else {
		delete(s.authorized, identity)
	}
	return nil
}

func (s *InMemoryAuthorizationSet) Contains(_ context.Context, identity id.Identity) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.authorized[identity]
	return ok, nil
}
