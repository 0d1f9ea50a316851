package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vaxledger/internal/record/models"
	id "vaxledger/pkg/domain"
	"vaxledger/pkg/platform/sentinel"
)

// PostgresStore persists the record ledger in PostgreSQL. Identifier
// allocation rides the identity column; row locks on the child give
// appends the same serialization the in-memory store gets from its mutex.
//
// Schema:
//
//	CREATE TABLE children (
//	    id            BIGINT GENERATED ALWAYS AS IDENTITY (START WITH 1) PRIMARY KEY,
//	    name          TEXT NOT NULL,
//	    date_of_birth TIMESTAMPTZ NOT NULL,
//	    parent_name   TEXT NOT NULL DEFAULT '',
//	    contact_info  TEXT NOT NULL DEFAULT '',
//	    parent_id     UUID NOT NULL,
//	    hospital_id   UUID NOT NULL,
//	    hospital_name TEXT NOT NULL,
//	    record_uri    TEXT NOT NULL DEFAULT '',
//	    registered_at TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX children_parent_idx ON children (parent_id, id);
//
//	CREATE TABLE vaccinations (
//	    child_id        BIGINT NOT NULL REFERENCES children (id),
//	    position        INT NOT NULL,
//	    vaccine         TEXT NOT NULL,
//	    administered_at TIMESTAMPTZ NOT NULL,
//	    hospital_id     UUID NOT NULL,
//	    hospital_name   TEXT NOT NULL,
//	    batch           TEXT NOT NULL,
//	    next_due        TIMESTAMPTZ,
//	    verified        BOOLEAN NOT NULL,
//	    reference_hash  TEXT NOT NULL DEFAULT '',
//	    qr_summary      TEXT NOT NULL,
//	    PRIMARY KEY (child_id, position)
//	);
//
//	CREATE TABLE reminders (
//	    seq      BIGSERIAL PRIMARY KEY,
//	    child_id BIGINT NOT NULL REFERENCES children (id),
//	    due_at   TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed record store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateChild(ctx context.Context, record *models.ChildRecord) (*models.ChildRecord, error) {
	// The guard runs before any row is written; the assigned identifier is
	// patched into the token after RETURNING.
	if _, err := models.MintToken(1, record.ParentID); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO children (name, date_of_birth, parent_name, contact_info, parent_id, hospital_id, hospital_name, record_uri, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	var assigned uint64
	err := s.db.QueryRowContext(ctx, query,
		record.Name,
		record.DateOfBirth,
		record.ParentName,
		record.ContactInfo,
		uuid.UUID(record.ParentID),
		uuid.UUID(record.HospitalID),
		record.HospitalName,
		record.RecordURI,
		record.RegisteredAt,
	).Scan(&assigned)
	if err != nil {
		return nil, fmt.Errorf("insert child record: %w", err)
	}

	clone := *record
	clone.ID = id.ChildID(assigned)
	return &clone, nil
}

func (s *PostgresStore) FindChild(ctx context.Context, childID id.ChildID) (*models.ChildRecord, error) {
	return scanChild(s.db.QueryRowContext(ctx, childSelect+` WHERE id = $1`, uint64(childID)))
}

func (s *PostgresStore) ExecuteChild(ctx context.Context, childID id.ChildID,
	validate func(c *models.ChildRecord) error,
	mutate func(c *models.ChildRecord),
) (*models.ChildRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	record, err := scanChild(tx.QueryRowContext(ctx, childSelect+` WHERE id = $1 FOR UPDATE`, uint64(childID)))
	if err != nil {
		return nil, err
	}
	if err := validate(record); err != nil {
		return nil, err
	}
	mutate(record)

	update := `UPDATE children SET contact_info = $2 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, update, uint64(record.ID), record.ContactInfo); err != nil {
		return nil, fmt.Errorf("update child record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) AppendVaccination(ctx context.Context, childID id.ChildID, entry models.VaccinationEntry, reminderAt time.Time) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	// Lock the child row so concurrent appends to one history serialize.
	var locked uint64
	err = tx.QueryRowContext(ctx, `SELECT id FROM children WHERE id = $1 FOR UPDATE`, uint64(childID)).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, sentinel.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lock child record: %w", err)
	}

	var position int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM vaccinations WHERE child_id = $1`, uint64(childID)).Scan(&position); err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}

	insert := `
		INSERT INTO vaccinations (child_id, position, vaccine, administered_at, hospital_id, hospital_name, batch, next_due, verified, reference_hash, qr_summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	if _, err := tx.ExecContext(ctx, insert,
		uint64(childID),
		position,
		entry.Vaccine,
		entry.AdministeredAt,
		uuid.UUID(entry.HospitalID),
		entry.HospitalName,
		entry.Batch,
		nullTime(entry.NextDue),
		entry.Verified,
		entry.ReferenceHash,
		entry.QRSummary,
	); err != nil {
		return 0, fmt.Errorf("insert vaccination: %w", err)
	}

	if !reminderAt.IsZero() {
		if _, err := tx.ExecContext(ctx, `INSERT INTO reminders (child_id, due_at) VALUES ($1, $2)`, uint64(childID), reminderAt); err != nil {
			return 0, fmt.Errorf("insert reminder: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return position, nil
}

func (s *PostgresStore) History(ctx context.Context, childID id.ChildID) ([]models.VaccinationEntry, error) {
	if err := s.ensureExists(ctx, childID); err != nil {
		return nil, err
	}

	query := `
		SELECT vaccine, administered_at, hospital_id, hospital_name, batch, next_due, verified, reference_hash, qr_summary
		FROM vaccinations WHERE child_id = $1 ORDER BY position
	`
	rows, err := s.db.QueryContext(ctx, query, uint64(childID))
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []models.VaccinationEntry
	for rows.Next() {
		var (
			entry   models.VaccinationEntry
			rawID   uuid.UUID
			nextDue sql.NullTime
		)
		if err := rows.Scan(&entry.Vaccine, &entry.AdministeredAt, &rawID, &entry.HospitalName, &entry.Batch, &nextDue, &entry.Verified, &entry.ReferenceHash, &entry.QRSummary); err != nil {
			return nil, fmt.Errorf("scan vaccination: %w", err)
		}
		entry.HospitalID = id.Identity(rawID)
		if nextDue.Valid {
			entry.NextDue = nextDue.Time
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Reminders(ctx context.Context, childID id.ChildID) ([]time.Time, error) {
	if err := s.ensureExists(ctx, childID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT due_at FROM reminders WHERE child_id = $1 ORDER BY seq`, uint64(childID))
	if err != nil {
		return nil, fmt.Errorf("query reminders: %w", err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var dueAt time.Time
		if err := rows.Scan(&dueAt); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		out = append(out, dueAt)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ChildrenOf(ctx context.Context, parentID id.Identity) ([]id.ChildID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM children WHERE parent_id = $1 ORDER BY id`, uuid.UUID(parentID))
	if err != nil {
		return nil, fmt.Errorf("query children of parent: %w", err)
	}
	defer rows.Close()

	var out []id.ChildID
	for rows.Next() {
		var childID uint64
		if err := rows.Scan(&childID); err != nil {
			return nil, fmt.Errorf("scan child id: %w", err)
		}
		out = append(out, id.ChildID(childID))
	}
	return out, rows.Err()
}

func (s *PostgresStore) OwnerOf(ctx context.Context, childID id.ChildID) (id.Identity, error) {
	var rawID uuid.UUID
	err := s.db.QueryRowContext(ctx, `SELECT parent_id FROM children WHERE id = $1`, uint64(childID)).Scan(&rawID)
	if errors.Is(err, sql.ErrNoRows) {
		return id.NilIdentity, sentinel.ErrNotFound
	}
	if err != nil {
		return id.NilIdentity, fmt.Errorf("query owner: %w", err)
	}
	return id.Identity(rawID), nil
}

func (s *PostgresStore) ensureExists(ctx context.Context, childID id.ChildID) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM children WHERE id = $1`, uint64(childID)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check child record: %w", err)
	}
	return nil
}

const childSelect = `
	SELECT id, name, date_of_birth, parent_name, contact_info, parent_id, hospital_id, hospital_name, record_uri, registered_at
	FROM children
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChild(row rowScanner) (*models.ChildRecord, error) {
	var (
		record   models.ChildRecord
		rawID    uint64
		parentID uuid.UUID
		hospital uuid.UUID
	)
	err := row.Scan(&rawID, &record.Name, &record.DateOfBirth, &record.ParentName, &record.ContactInfo, &parentID, &hospital, &record.HospitalName, &record.RecordURI, &record.RegisteredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan child record: %w", err)
	}
	record.ID = id.ChildID(rawID)
	record.ParentID = id.Identity(parentID)
	record.HospitalID = id.Identity(hospital)
	return &record, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
