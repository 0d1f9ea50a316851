package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"vaxledger/internal/audit"
	hospitalmodels "vaxledger/internal/hospital/models"
	recordmetrics "vaxledger/internal/record/metrics"
	"vaxledger/internal/record/models"
	"vaxledger/internal/record/store"
	id "vaxledger/pkg/domain"
	dErrors "vaxledger/pkg/domain-errors"
	"vaxledger/pkg/platform/sentinel"
	"vaxledger/pkg/requestcontext"
)

// HospitalDirectory is the slice of the hospital module the record module
// needs: authorization gating for writes and the stored hospital name for
// attribution on created records and entries.
type HospitalDirectory interface {
	IsAuthorized(ctx context.Context, identity id.Identity) (bool, error)
	Find(ctx context.Context, identity id.Identity) (*hospitalmodels.Hospital, error)
}

// Service is the record ledger: child record creation bound to a
// non-transferable ownership token, append-only vaccination history, and the
// derived views over both.
type Service struct {
	records   store.Store
	hospitals HospitalDirectory
	publisher *audit.Publisher
	metrics   *recordmetrics.Metrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithMetrics attaches module metrics.
func WithMetrics(m *recordmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New creates the record service.
func New(records store.Store, hospitals HospitalDirectory, publisher *audit.Publisher, opts ...Option) *Service {
	s := &Service{
		records:   records,
		hospitals: hospitals,
		publisher: publisher,
		tracer:    otel.Tracer("vaxledger/record"),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterChild creates a child record and mints its ownership token to the
// parent identity. Only an authorized hospital may call it; the record
// carries the hospital's stored name, not a caller-supplied one.
func (s *Service) RegisterChild(ctx context.Context, name string, dob time.Time, parentName, contactInfo string, parentID id.Identity, recordURI string) (*models.ChildRecord, error) {
	ctx, span := s.tracer.Start(ctx, "record.RegisterChild")
	defer span.End()

	hospital, err := s.callingHospital(ctx)
	if err != nil {
		return nil, err
	}

	record, err := models.NewChildRecord(name, dob, parentName, contactInfo, parentID, hospital.ID, hospital.Name, recordURI, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	created, err := s.records.CreateChild(ctx, record)
	if err != nil {
		if isCoded(err) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create child record")
	}
	span.SetAttributes(attribute.String("child_id", created.ID.String()))

	if err := s.publisher.Emit(ctx, audit.Event{
		Action:     audit.ActionChildRegistered,
		Actor:      hospital.ID,
		HospitalID: hospital.ID,
		ChildID:    created.ID,
		ParentID:   created.ParentID,
		ChildName:  created.Name,
	}); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record creation event")
	}

	if s.metrics != nil {
		s.metrics.IncrementChildrenRegistered()
	}
	return created, nil
}

// UpdateChildInfo mutates the record's contact info. Token-holder only;
// every other field stays byte-identical.
func (s *Service) UpdateChildInfo(ctx context.Context, childID id.ChildID, contactInfo string) (*models.ChildRecord, error) {
	caller := requestcontext.CallerID(ctx)
	if caller.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity required")
	}

	updated, err := s.records.ExecuteChild(ctx, childID,
		func(c *models.ChildRecord) error { return c.CanUpdateContact(caller) },
		func(c *models.ChildRecord) { c.ApplyContactUpdate(contactInfo) },
	)
	if err != nil {
		return nil, s.mapStoreErr(err, "failed to update contact info")
	}
	return updated, nil
}

// RecordVaccination appends a dose to the child's history. Only an
// authorized hospital may call it. A next-due time strictly in the future
// also lands on the reminder list. Returns the entry and its zero-based
// history position.
func (s *Service) RecordVaccination(ctx context.Context, childID id.ChildID, vaccine, batch string, nextDue time.Time, referenceHash string) (models.VaccinationEntry, int, error) {
	ctx, span := s.tracer.Start(ctx, "record.RecordVaccination",
		trace.WithAttributes(attribute.String("child_id", childID.String())))
	defer span.End()

	hospital, err := s.callingHospital(ctx)
	if err != nil {
		return models.VaccinationEntry{}, 0, err
	}

	now := requestcontext.Now(ctx)
	entry, err := models.NewVaccinationEntry(childID, vaccine, batch, nextDue, referenceHash, hospital.ID, hospital.Name, now)
	if err != nil {
		return models.VaccinationEntry{}, 0, err
	}

	var reminderAt time.Time
	if nextDue.After(now) {
		reminderAt = nextDue
	}

	position, err := s.records.AppendVaccination(ctx, childID, entry, reminderAt)
	if err != nil {
		return models.VaccinationEntry{}, 0, s.mapStoreErr(err, "failed to append vaccination")
	}

	events := []audit.Event{
		{
			Action:     audit.ActionVaccinationRecorded,
			Actor:      hospital.ID,
			HospitalID: hospital.ID,
			ChildID:    childID,
			Vaccine:    entry.Vaccine,
		},
		{
			Action:   audit.ActionQRGenerated,
			Actor:    hospital.ID,
			ChildID:  childID,
			Position: position,
			QRData:   entry.QRSummary,
		},
	}
	if !reminderAt.IsZero() {
		events = append(events, audit.Event{
			Action:  audit.ActionReminderScheduled,
			Actor:   hospital.ID,
			ChildID: childID,
			Vaccine: entry.Vaccine,
			DueAt:   reminderAt,
		})
	}
	for _, event := range events {
		if err := s.publisher.Emit(ctx, event); err != nil {
			return models.VaccinationEntry{}, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record vaccination event")
		}
	}

	if s.metrics != nil {
		s.metrics.IncrementVaccinationsRecorded()
		s.metrics.IncrementQRCodesGenerated()
		if !reminderAt.IsZero() {
			s.metrics.IncrementRemindersScheduled()
		}
	}
	return entry, position, nil
}

// Events returns the audit trail entries for one child record, oldest first.
func (s *Service) Events(ctx context.Context, childID id.ChildID) ([]audit.Event, error) {
	if _, err := s.records.FindChild(ctx, childID); err != nil {
		return nil, s.mapStoreErr(err, "failed to look up child record")
	}
	events, err := s.publisher.ListByChild(ctx, childID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list events")
	}
	return events, nil
}

// callingHospital resolves the caller to an authorized hospital record.
func (s *Service) callingHospital(ctx context.Context) (*hospitalmodels.Hospital, error) {
	caller := requestcontext.CallerID(ctx)
	if caller.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity required")
	}

	ok, err := s.hospitals.IsAuthorized(ctx, caller)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check hospital authorization")
	}
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotAuthorizedHospital, "caller is not an authorized hospital")
	}

	hospital, err := s.hospitals.Find(ctx, caller)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up hospital record")
	}
	return hospital, nil
}

// mapStoreErr keeps coded errors intact, turns ErrNotFound into the unknown
// identifier failure, and wraps the rest as internal.
func (s *Service) mapStoreErr(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "child record not found")
	}
	if isCoded(err) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func isCoded(err error) bool {
	var derr *dErrors.Error
	return errors.As(err, &derr)
}
