package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostgresStore persists audit events in an append-only table. Rows are only
// ever inserted; ordering is preserved by a sequence column rather than by
// timestamp so concurrent emitters cannot reorder the trail.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const auditSchema = `
CREATE TABLE IF NOT EXISTS audit_events (
	seq        BIGSERIAL PRIMARY KEY,
	id         UUID NOT NULL,
	kind       TEXT NOT NULL,
	subject    TEXT NOT NULL,
	grantee    TEXT NOT NULL DEFAULT '',
	content_id TEXT NOT NULL DEFAULT '',
	expires_at TIMESTAMPTZ,
	ts         TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS audit_events_subject_idx ON audit_events (subject, seq);
`

// EnsureSchema creates the audit table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, auditSchema)
	return err
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	var expiresAt sql.NullTime
	if !event.ExpiresAt.IsZero() {
		expiresAt = sql.NullTime{Time: event.ExpiresAt, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_events (id, kind, subject, grantee, content_id, expires_at, ts)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID, string(event.Kind), event.Subject, event.Grantee, event.ContentID, expiresAt, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListBySubject(ctx context.Context, subject string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, subject, grantee, content_id, expires_at, ts
		 FROM audit_events WHERE subject = $1 ORDER BY seq`,
		subject,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		return []Event{}, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, subject, grantee, content_id, expires_at, ts
		 FROM (
			SELECT * FROM audit_events ORDER BY seq DESC LIMIT $1
		 ) recent ORDER BY seq`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var (
			event     Event
			kind      string
			expiresAt sql.NullTime
			ts        time.Time
		)
		if err := rows.Scan(&event.ID, &kind, &event.Subject, &event.Grantee, &event.ContentID, &expiresAt, &ts); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Kind = Kind(kind)
		if expiresAt.Valid {
			event.ExpiresAt = expiresAt.Time
		}
		event.Timestamp = ts
		events = append(events, event)
	}
	return events, rows.Err()
}
