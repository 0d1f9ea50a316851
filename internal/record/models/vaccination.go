package models

import (
	"fmt"
	"strings"
	"time"

	id "vaxledger/pkg/domain"
	dErrors "vaxledger/pkg/domain-errors"
)

// VaccinationEntry is one administered dose in a child's history. Entries
// are append-only: once appended they are never mutated or removed, and
// insertion order is administration order.
type VaccinationEntry struct {
	Vaccine        string      `json:"vaccine"`
	AdministeredAt time.Time   `json:"administered_at"`
	HospitalID     id.Identity `json:"hospital_id"`
	HospitalName   string      `json:"hospital_name"`
	Batch          string      `json:"batch"`
	NextDue        time.Time   `json:"next_due,omitzero"` // zero when no follow-up dose
	Verified       bool        `json:"verified"`
	ReferenceHash  string      `json:"reference_hash"`
	QRSummary      string      `json:"qr_summary"`
}

// NewVaccinationEntry builds an entry administered now by the given
// hospital. Entries are verified by construction: only authorized hospitals
// reach this path.
func NewVaccinationEntry(childID id.ChildID, vaccine, batch string, nextDue time.Time, referenceHash string, hospitalID id.Identity, hospitalName string, now time.Time) (VaccinationEntry, error) {
	vaccine = strings.TrimSpace(vaccine)
	if vaccine == "" {
		return VaccinationEntry{}, dErrors.New(dErrors.CodeValidation, "vaccine name is required")
	}
	if strings.TrimSpace(batch) == "" {
		return VaccinationEntry{}, dErrors.New(dErrors.CodeValidation, "batch number is required")
	}
	return VaccinationEntry{
		Vaccine:        vaccine,
		AdministeredAt: now,
		HospitalID:     hospitalID,
		HospitalName:   hospitalName,
		Batch:          batch,
		NextDue:        nextDue,
		Verified:       true,
		ReferenceHash:  referenceHash,
		QRSummary:      VaccinationQR(childID, vaccine, now),
	}, nil
}

// VaccinationQR derives the per-dose QR summary from the identifier, the
// vaccine name and the administration time. Second-granularity timestamps
// mean two doses can share a summary; it is advisory display data, never a
// key.
func VaccinationQR(childID id.ChildID, vaccine string, at time.Time) string {
	return fmt.Sprintf("%s|%s|%d", childID, vaccine, at.Unix())
}

// VerificationQR encodes the verification summary as a stable pipe-delimited
// string: VAX|<id>|<name>|<count>|<UPTODATE/BEHIND>|<unix>. Consumers parse
// this format; do not reorder fields.
func VerificationQR(childID id.ChildID, name string, total int, upToDate bool, now time.Time) string {
	status := "BEHIND"
	if upToDate {
		status = "UPTODATE"
	}
	return fmt.Sprintf("VAX|%s|%s|%d|%s|%d", childID, name, total, status, now.Unix())
}
