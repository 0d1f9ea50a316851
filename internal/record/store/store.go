package store

import (
	"context"
	"time"

	"vaxledger/internal/record/models"
	id "vaxledger/pkg/domain"
)

// Store persists child records, their ownership bindings, vaccination
// histories and reminder lists under one serialization domain: identifier
// allocation and history appends for a record never interleave.
// Implementations return sentinel.ErrNotFound for unknown identifiers.
type Store interface {
	// CreateChild assigns the next identifier, mints the ownership token
	// through the transfer guard, stores the record and indexes it under its
	// parent, all atomically. The input record must have a zero ID; the
	// returned record carries the assigned one. A rejected creation consumes
	// no identifier.
	CreateChild(ctx context.Context, record *models.ChildRecord) (*models.ChildRecord, error)

	FindChild(ctx context.Context, childID id.ChildID) (*models.ChildRecord, error)

	// ExecuteChild runs validate then mutate on the stored record while
	// holding the store's write lock.
	ExecuteChild(ctx context.Context, childID id.ChildID,
		validate func(c *models.ChildRecord) error,
		mutate func(c *models.ChildRecord),
	) (*models.ChildRecord, error)

	// AppendVaccination appends the entry to the child's history and, when
	// reminderAt is non-zero, the due time to the reminder list, atomically.
	// Returns the entry's zero-based position in the history.
	AppendVaccination(ctx context.Context, childID id.ChildID, entry models.VaccinationEntry, reminderAt time.Time) (int, error)

	History(ctx context.Context, childID id.ChildID) ([]models.VaccinationEntry, error)
	Reminders(ctx context.Context, childID id.ChildID) ([]time.Time, error)

	// ChildrenOf returns the identifiers minted to a parent, insertion order.
	ChildrenOf(ctx context.Context, parentID id.Identity) ([]id.ChildID, error)

	// OwnerOf returns the ownership token holder for an identifier.
	OwnerOf(ctx context.Context, childID id.ChildID) (id.Identity, error)
}
