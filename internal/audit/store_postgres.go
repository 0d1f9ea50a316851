package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	id "vaxledger/pkg/domain"
)

// PostgresStore persists the event trail in PostgreSQL. Rows are insert-only;
// no code path updates or deletes them.
//
// Schema:
//
//	CREATE TABLE audit_events (
//	    id         UUID PRIMARY KEY,
//	    occurred_at TIMESTAMPTZ NOT NULL,
//	    action     TEXT NOT NULL,
//	    actor      UUID NOT NULL,
//	    child_id   BIGINT NOT NULL DEFAULT 0,
//	    payload    JSONB NOT NULL,
//	    seq        BIGSERIAL
//	);
//	CREATE INDEX audit_events_child_idx ON audit_events (child_id, seq);
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed event store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	query := `
		INSERT INTO audit_events (id, occurred_at, action, actor, child_id, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.db.ExecContext(ctx, query,
		uuid.New(),
		event.Timestamp,
		string(event.Action),
		uuid.UUID(event.Actor),
		uint64(event.ChildID),
		payload,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Event, error) {
	return s.list(ctx, `SELECT payload FROM audit_events ORDER BY seq`)
}

func (s *PostgresStore) ListByChild(ctx context.Context, childID id.ChildID) ([]Event, error) {
	return s.list(ctx, `SELECT payload FROM audit_events WHERE child_id = $1 ORDER BY seq`, uint64(childID))
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		var event Event
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("unmarshal audit event: %w", err)
		}
		out = append(out, event)
	}
	return out, rows.Err()
}
