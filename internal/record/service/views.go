package service

import (
	"context"
	"time"

	"vaxledger/internal/policy"
	"vaxledger/internal/record/models"
	id "vaxledger/pkg/domain"
	"vaxledger/pkg/requestcontext"
)

// Derived views: stateless read-only computations over the record store.
// None of them require authorization; anyone holding an identifier can
// query it.

// VerificationSummary is the scannable proof-of-vaccination view.
type VerificationSummary struct {
	QRData            string     `json:"qr_data"`
	ChildID           id.ChildID `json:"child_id"`
	ChildName         string     `json:"child_name"`
	TotalVaccinations int        `json:"total_vaccinations"`
	UpToDate          bool       `json:"up_to_date"`
}

// UpcomingDose pairs a vaccine name with its due time.
type UpcomingDose struct {
	Vaccine string    `json:"vaccine"`
	DueAt   time.Time `json:"due_at"`
}

// Child returns the stored record for an identifier.
func (s *Service) Child(ctx context.Context, childID id.ChildID) (*models.ChildRecord, error) {
	record, err := s.records.FindChild(ctx, childID)
	if err != nil {
		return nil, s.mapStoreErr(err, "failed to look up child record")
	}
	return record, nil
}

// History returns the full vaccination history in administration order.
func (s *Service) History(ctx context.Context, childID id.ChildID) ([]models.VaccinationEntry, error) {
	history, err := s.records.History(ctx, childID)
	if err != nil {
		return nil, s.mapStoreErr(err, "failed to load history")
	}
	return history, nil
}

// VaccinationCount returns the number of doses on record.
func (s *Service) VaccinationCount(ctx context.Context, childID id.ChildID) (int, error) {
	history, err := s.History(ctx, childID)
	if err != nil {
		return 0, err
	}
	return len(history), nil
}

// HasVaccine reports whether any entry's vaccine name matches exactly.
func (s *Service) HasVaccine(ctx context.Context, childID id.ChildID, vaccine string) (bool, error) {
	history, err := s.History(ctx, childID)
	if err != nil {
		return false, err
	}
	for _, entry := range history {
		if entry.Vaccine == vaccine {
			return true, nil
		}
	}
	return false, nil
}

// UpcomingVaccinations scans the history, not the reminder list, and returns
// the doses whose next-due time falls in (now, now+30d], preserving history
// order. The reminder list is advisory and can drift; next-due on the entry
// is authoritative.
func (s *Service) UpcomingVaccinations(ctx context.Context, childID id.ChildID) ([]UpcomingDose, error) {
	history, err := s.History(ctx, childID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	horizon := now.Add(policy.UpcomingWindow)

	var upcoming []UpcomingDose
	for _, entry := range history {
		if entry.NextDue.IsZero() {
			continue
		}
		if entry.NextDue.After(now) && !entry.NextDue.After(horizon) {
			upcoming = append(upcoming, UpcomingDose{Vaccine: entry.Vaccine, DueAt: entry.NextDue})
		}
	}
	return upcoming, nil
}

// VaccinationReminders returns the raw reminder list, unfiltered, in
// insertion order.
func (s *Service) VaccinationReminders(ctx context.Context, childID id.ChildID) ([]time.Time, error) {
	reminders, err := s.records.Reminders(ctx, childID)
	if err != nil {
		return nil, s.mapStoreErr(err, "failed to load reminders")
	}
	return reminders, nil
}

// GenerateVerificationSummary derives the up-to-date judgment from the
// expected-dose policy and encodes it as stable QR data.
func (s *Service) GenerateVerificationSummary(ctx context.Context, childID id.ChildID) (VerificationSummary, error) {
	record, err := s.Child(ctx, childID)
	if err != nil {
		return VerificationSummary{}, err
	}
	total, err := s.VaccinationCount(ctx, childID)
	if err != nil {
		return VerificationSummary{}, err
	}

	now := requestcontext.Now(ctx)
	upToDate := policy.UpToDate(record.DateOfBirth, now, total)

	if s.metrics != nil {
		s.metrics.IncrementQRCodesGenerated()
	}
	return VerificationSummary{
		QRData:            models.VerificationQR(childID, record.Name, total, upToDate, now),
		ChildID:           childID,
		ChildName:         record.Name,
		TotalVaccinations: total,
		UpToDate:          upToDate,
	}, nil
}

// RecordURI returns the external document pointer stored at creation. The
// ledger never dereferences it.
func (s *Service) RecordURI(ctx context.Context, childID id.ChildID) (string, error) {
	record, err := s.Child(ctx, childID)
	if err != nil {
		return "", err
	}
	return record.RecordURI, nil
}

// ChildrenOf returns the identifiers minted to a parent, oldest first.
func (s *Service) ChildrenOf(ctx context.Context, parentID id.Identity) ([]id.ChildID, error) {
	children, err := s.records.ChildrenOf(ctx, parentID)
	if err != nil {
		return nil, s.mapStoreErr(err, "failed to list children")
	}
	return children, nil
}
