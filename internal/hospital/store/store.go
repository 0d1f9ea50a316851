package store

import (
	"context"

	"vaxledger/internal/hospital/models"
	id "vaxledger/pkg/domain"
)

// Store persists hospital registrations. Implementations return
// sentinel.ErrNotFound for unknown identities; the service translates.
type Store interface {
	// Save upserts a registration. validate, when non-nil, runs on the
	// currently stored record (nil for a never-registered identity) inside
	// the store's write lock, so a precondition such as "only pending
	// registrations may be replaced" cannot race a concurrent
	// authorization flip. A validation failure leaves the store untouched.
	Save(ctx context.Context, hospital *models.Hospital, validate func(existing *models.Hospital) error) error
	FindByID(ctx context.Context, identity id.Identity) (*models.Hospital, error)

	// Execute runs validate then mutate on the stored record while holding
	// the store's write lock (mutex or FOR UPDATE), so authorization flips
	// cannot interleave with concurrent reads of a half-applied state.
	Execute(ctx context.Context, identity id.Identity,
		validate func(h *models.Hospital) error,
		mutate func(h *models.Hospital),
	) (*models.Hospital, error)
}

// AuthorizationSet is the fast-lookup set of authorized hospital identities,
// maintained alongside the flag on the registration record. Backed by Redis
// when configured, process memory otherwise.
type AuthorizationSet interface {
	Set(ctx context.Context, identity id.Identity, authorized bool) error
	Contains(ctx context.Context, identity id.Identity) (bool, error)
}
