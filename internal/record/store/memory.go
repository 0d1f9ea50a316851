package store

import (
	"context"
	"sync"
	"time"

	"vaxledger/internal/record/models"
	id "vaxledger/pkg/domain"
	"vaxledger/pkg/platform/sentinel"
)

// InMemoryStore keeps the whole record ledger in process memory behind a
// single lock, giving the serialized, all-or-nothing semantics the ledger
// requires without a transactional backend.
type InMemoryStore struct {
	mu          sync.RWMutex
	counter     uint64
	children    map[id.ChildID]*models.ChildRecord
	tokens      map[id.ChildID]models.OwnershipToken
	histories   map[id.ChildID][]models.VaccinationEntry
	reminders   map[id.ChildID][]time.Time
	parentIndex map[id.Identity][]id.ChildID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		children:    make(map[id.ChildID]*models.ChildRecord),
		tokens:      make(map[id.ChildID]models.OwnershipToken),
		histories:   make(map[id.ChildID][]models.VaccinationEntry),
		reminders:   make(map[id.ChildID][]time.Time),
		parentIndex: make(map[id.Identity][]id.ChildID),
	}
}

func (s *InMemoryStore) CreateChild(_ context.Context, record *models.ChildRecord) (*models.ChildRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Mint through the guard before consuming an identifier so a rejected
	// creation leaves the counter untouched.
	token, err := models.MintToken(id.ChildID(s.counter+1), record.ParentID)
	if err != nil {
		return nil, err
	}

	s.counter++
	clone := *record
	clone.ID = id.ChildID(s.counter)
	token.ChildID = clone.ID

	s.children[clone.ID] = &clone
	s.tokens[clone.ID] = token
	s.parentIndex[clone.ParentID] = append(s.parentIndex[clone.ParentID], clone.ID)

	out := clone
	return &out, nil
}

func (s *InMemoryStore) FindChild(_ context.Context, childID id.ChildID) (*models.ChildRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.children[childID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *record
	return &clone, nil
}

func (s *InMemoryStore) ExecuteChild(_ context.Context, childID id.ChildID,
	validate func(c *models.ChildRecord) error,
	mutate func(c *models.ChildRecord),
) (*models.ChildRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.children[childID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(record); err != nil {
		return nil, err
	}
	mutate(record)
	clone := *record
	return &clone, nil
}

func (s *InMemoryStore) AppendVaccination(_ context.Context, childID id.ChildID, entry models.VaccinationEntry, reminderAt time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.children[childID]; !ok {
		return 0, sentinel.ErrNotFound
	}
	s.histories[childID] = append(s.histories[childID], entry)
	if !reminderAt.IsZero() {
		s.reminders[childID] = append(s.reminders[childID], reminderAt)
	}
	return len(s.histories[childID]) - 1, nil
}

func (s *InMemoryStore) History(_ context.Context, childID id.ChildID) ([]models.VaccinationEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.children[childID]; !ok {
		return nil, sentinel.ErrNotFound
	}
	history := s.histories[childID]
	out := make([]models.VaccinationEntry, len(history))
	copy(out, history)
	return out, nil
}

func (s *InMemoryStore) Reminders(_ context.Context, childID id.ChildID) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.children[childID]; !ok {
		return nil, sentinel.ErrNotFound
	}
	reminders := s.reminders[childID]
	out := make([]time.Time, len(reminders))
	copy(out, reminders)
	return out, nil
}

func (s *InMemoryStore) ChildrenOf(_ context.Context, parentID id.Identity) ([]id.ChildID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	index := s.parentIndex[parentID]
	out := make([]id.ChildID, len(index))
	copy(out, index)
	return out, nil
}

func (s *InMemoryStore) OwnerOf(_ context.Context, childID id.ChildID) (id.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[childID]
	if !ok {
		return id.NilIdentity, sentinel.ErrNotFound
	}
	return token.Owner, nil
}
