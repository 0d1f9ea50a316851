package service

import (
	"context"
	"errors"
	"log/slog"

	"vaxledger/internal/audit"
	hospitalmetrics "vaxledger/internal/hospital/metrics"
	"vaxledger/internal/hospital/models"
	"vaxledger/internal/hospital/store"
	id "vaxledger/pkg/domain"
	dErrors "vaxledger/pkg/domain-errors"
	"vaxledger/pkg/platform/sentinel"
	"vaxledger/pkg/requestcontext"
)

// Service is the identity and authorization ledger. It accepts
// self-registrations from any caller and lets the single configured
// authority flip the authorization flag. Hospitals are never deleted.
type Service struct {
	hospitals store.Store
	authSet   store.AuthorizationSet
	authority id.Identity
	publisher *audit.Publisher
	metrics   *hospitalmetrics.Metrics
	logger    *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithMetrics attaches module metrics.
func WithMetrics(m *hospitalmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New creates the hospital service. The authority identity is fixed here at
// initialization; there is no operation that changes it.
func New(hospitals store.Store, authSet store.AuthorizationSet, authority id.Identity, publisher *audit.Publisher, opts ...Option) *Service {
	s := &Service{
		hospitals: hospitals,
		authSet:   authSet,
		authority: authority,
		publisher: publisher,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register stores a pending registration for the calling identity.
//
// A caller whose stored record is already authorized gets
// CodeAlreadyRegistered. A caller with a pending record may re-register,
// overwriting its own earlier submission; each overwrite emits a fresh
// registration event so the change stays on the audit trail.
func (s *Service) Register(ctx context.Context, name, license, contact string) (*models.Hospital, error) {
	caller := requestcontext.CallerID(ctx)
	if caller.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity required")
	}

	hospital, err := models.NewHospital(caller, name, license, contact, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	// The precondition runs inside the store's write lock so an
	// authorization landing between check and write can never be
	// overwritten by a pending re-registration.
	if err := s.hospitals.Save(ctx, hospital, rejectAuthorizedOverwrite); err != nil {
		if dErrors.HasCode(err, dErrors.CodeAlreadyRegistered) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save registration")
	}

	if err := s.publisher.Emit(ctx, audit.Event{
		Action:     audit.ActionHospitalRegistered,
		Actor:      caller,
		HospitalID: caller,
	}); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record registration event")
	}

	if s.metrics != nil {
		s.metrics.IncrementRegistered()
	}
	return hospital, nil
}

// SetAuthorization flips the authorization flag for a registered hospital.
// Authority-only. Idempotent: re-applying the current value succeeds and
// still emits an authorization-changed event.
//
// The record and the fast-lookup set are separate backends, written in the
// order that keeps the set from granting what the record does not: grants
// land on the record first, revocations clear the set first. A failure
// between the two writes fails the operation and a retry repairs the pair.
func (s *Service) SetAuthorization(ctx context.Context, hospitalID id.Identity, authorized bool) (*models.Hospital, error) {
	caller := requestcontext.CallerID(ctx)
	if caller != s.authority {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the authority may change hospital authorization")
	}

	if !authorized {
		// Clearing an absent member is a no-op, so an unregistered target
		// still fails NotRegistered below without side effects.
		if err := s.authSet.Set(ctx, hospitalID, false); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update authorization set")
		}
	}

	hospital, err := s.hospitals.Execute(ctx, hospitalID,
		func(h *models.Hospital) error { return nil },
		func(h *models.Hospital) { h.Authorized = authorized },
	)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotRegistered, "hospital has never registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update authorization")
	}

	if authorized {
		if err := s.authSet.Set(ctx, hospitalID, true); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update authorization set")
		}
	}

	if err := s.publisher.Emit(ctx, audit.Event{
		Action:     audit.ActionAuthorizationChanged,
		Actor:      caller,
		HospitalID: hospitalID,
		Authorized: authorized,
	}); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record authorization event")
	}

	if s.metrics != nil {
		s.metrics.IncrementAuthorizationChanges()
	}
	return hospital, nil
}

// rejectAuthorizedOverwrite is the Save precondition: a pending record may
// be replaced as self-correction, an authorized one never.
func rejectAuthorizedOverwrite(existing *models.Hospital) error {
	if existing != nil && existing.Authorized {
		return dErrors.New(dErrors.CodeAlreadyRegistered, "hospital is already registered and authorized")
	}
	return nil
}

// IsAuthorized reports whether the identity is currently authorized. Pure
// lookup against the fast-lookup set; no side effects.
func (s *Service) IsAuthorized(ctx context.Context, identity id.Identity) (bool, error) {
	ok, err := s.authSet.Contains(ctx, identity)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check authorization")
	}
	return ok, nil
}

// Find returns the registration record for an identity.
func (s *Service) Find(ctx context.Context, identity id.Identity) (*models.Hospital, error) {
	hospital, err := s.hospitals.FindByID(ctx, identity)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "hospital not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up hospital")
	}
	return hospital, nil
}
