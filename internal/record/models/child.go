package models

import (
	"strings"
	"time"

	id "vaxledger/pkg/domain"
	dErrors "vaxledger/pkg/domain-errors"
)

// ChildRecord is the aggregate root for one child's vaccination record.
//
// Invariants:
//   - ID is assigned once by the store, starts at 1 and is never reused
//   - ParentID is the ownership token holder, fixed at creation; any
//     attempted reassignment fails the transfer guard
//   - Every field except ContactInfo is immutable after creation
//   - Records are never deleted; identifier existence is permanent
type ChildRecord struct {
	ID           id.ChildID  `json:"id"`
	Name         string      `json:"name"`
	DateOfBirth  time.Time   `json:"date_of_birth"`
	ParentName   string      `json:"parent_name"`
	ContactInfo  string      `json:"contact_info"`
	ParentID     id.Identity `json:"parent_id"`
	HospitalID   id.Identity `json:"hospital_id"`
	HospitalName string      `json:"hospital_name"`
	RecordURI    string      `json:"record_uri"`
	RegisteredAt time.Time   `json:"registered_at"`
}

// NewChildRecord builds an unassigned record (ID zero until the store
// allocates one). recordURI is stored verbatim; the ledger never
// dereferences it.
func NewChildRecord(name string, dob time.Time, parentName, contactInfo string, parentID id.Identity, hospitalID id.Identity, hospitalName, recordURI string, now time.Time) (*ChildRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "child name is required")
	}
	if dob.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "date of birth is required")
	}
	if parentID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidParent, "parent identity cannot be the null identity")
	}
	if hospitalID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "authoring hospital identity cannot be nil")
	}
	return &ChildRecord{
		Name:         name,
		DateOfBirth:  dob,
		ParentName:   parentName,
		ContactInfo:  contactInfo,
		ParentID:     parentID,
		HospitalID:   hospitalID,
		HospitalName: hospitalName,
		RecordURI:    recordURI,
		RegisteredAt: now,
	}, nil
}

// CanUpdateContact checks that caller holds the ownership token.
func (c *ChildRecord) CanUpdateContact(caller id.Identity) error {
	if caller != c.ParentID {
		return dErrors.New(dErrors.CodeNotTokenOwner, "caller does not hold this record's ownership token")
	}
	return nil
}

// ApplyContactUpdate mutates the only field that is mutable post-creation.
func (c *ChildRecord) ApplyContactUpdate(contactInfo string) {
	c.ContactInfo = contactInfo
}
