package models

import (
	"strings"
	"time"

	id "vaxledger/pkg/domain"
	dErrors "vaxledger/pkg/domain-errors"
)

// Hospital is the registration record for one caller identity.
//
// Invariants:
//   - Identity is the natural key; at most one record per identity
//   - Authorized is false at registration and only the authority flips it
//   - RegisteredAt is never zero for a stored record; a zero RegisteredAt
//     means "never registered"
//   - An authorized record can no longer be overwritten by re-registration;
//     a pending (unauthorized) one can, as deliberate self-correction
type Hospital struct {
	ID           id.Identity `json:"id"`
	Name         string      `json:"name"`
	License      string      `json:"license"`
	Contact      string      `json:"contact"`
	Authorized   bool        `json:"authorized"`
	RegisteredAt time.Time   `json:"registered_at"`
}

// NewHospital builds a pending registration for the given identity.
func NewHospital(identity id.Identity, name, license, contact string, now time.Time) (*Hospital, error) {
	name = strings.TrimSpace(name)
	license = strings.TrimSpace(license)
	if identity.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "hospital identity cannot be nil")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "hospital name is required")
	}
	if license == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "hospital license number is required")
	}
	return &Hospital{
		ID:           identity,
		Name:         name,
		License:      license,
		Contact:      contact,
		Authorized:   false,
		RegisteredAt: now,
	}, nil
}

// IsRegistered reports whether the record represents an actual registration.
func (h *Hospital) IsRegistered() bool {
	return !h.RegisteredAt.IsZero()
}
