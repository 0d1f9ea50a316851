package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"vaxledger/internal/hospital/models"
	id "vaxledger/pkg/domain"
	"vaxledger/pkg/platform/sentinel"
)

// PostgresStore persists hospital registrations in PostgreSQL.
//
// Schema:
//
//	CREATE TABLE hospitals (
//	    id            UUID PRIMARY KEY,
//	    name          TEXT NOT NULL,
//	    license       TEXT NOT NULL,
//	    contact       TEXT NOT NULL DEFAULT '',
//	    authorized    BOOLEAN NOT NULL DEFAULT FALSE,
//	    registered_at TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed hospital store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, hospital *models.Hospital, validate func(existing *models.Hospital) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if validate != nil {
		// Lock the existing row so validation and the write cannot straddle
		// a concurrent authorization flip.
		query := `
			SELECT id, name, license, contact, authorized, registered_at
			FROM hospitals WHERE id = $1 FOR UPDATE
		`
		existing, err := scanHospital(tx.QueryRowContext(ctx, query, uuid.UUID(hospital.ID)))
		if err != nil {
			if !errors.Is(err, sentinel.ErrNotFound) {
				return err
			}
			existing = nil
		}
		if err := validate(existing); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO hospitals (id, name, license, contact, authorized, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			license = EXCLUDED.license,
			contact = EXCLUDED.contact,
			authorized = EXCLUDED.authorized,
			registered_at = EXCLUDED.registered_at
	`
	if _, err := tx.ExecContext(ctx, query,
		uuid.UUID(hospital.ID),
		hospital.Name,
		hospital.License,
		hospital.Contact,
		hospital.Authorized,
		hospital.RegisteredAt,
	); err != nil {
		return fmt.Errorf("save hospital: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, identity id.Identity) (*models.Hospital, error) {
	query := `
		SELECT id, name, license, contact, authorized, registered_at
		FROM hospitals WHERE id = $1
	`
	return scanHospital(s.db.QueryRowContext(ctx, query, uuid.UUID(identity)))
}

func (s *PostgresStore) Execute(ctx context.Context, identity id.Identity,
	validate func(h *models.Hospital) error,
	mutate func(h *models.Hospital),
) (*models.Hospital, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	query := `
		SELECT id, name, license, contact, authorized, registered_at
		FROM hospitals WHERE id = $1 FOR UPDATE
	`
	hospital, err := scanHospital(tx.QueryRowContext(ctx, query, uuid.UUID(identity)))
	if err != nil {
		return nil, err
	}
	if err := validate(hospital); err != nil {
		return nil, err
	}
	mutate(hospital)

	update := `
		UPDATE hospitals SET name = $2, license = $3, contact = $4, authorized = $5, registered_at = $6
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, update,
		uuid.UUID(hospital.ID),
		hospital.Name,
		hospital.License,
		hospital.Contact,
		hospital.Authorized,
		hospital.RegisteredAt,
	); err != nil {
		return nil, fmt.Errorf("update hospital: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return hospital, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHospital(row rowScanner) (*models.Hospital, error) {
	var (
		hospital models.Hospital
		rawID    uuid.UUID
	)
	err := row.Scan(&rawID, &hospital.Name, &hospital.License, &hospital.Contact, &hospital.Authorized, &hospital.RegisteredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan hospital: %w", err)
	}
	hospital.ID = id.Identity(rawID)
	return &hospital, nil
}
