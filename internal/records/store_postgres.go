package records

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore persists record pointers in an append-only table. The seq
// column preserves append order; created_at is clamped forward against the
// subject's current maximum so it never decreases within a subject's
// sequence. Appends for the same subject are serialized with an advisory
// lock, since the clamp's MAX(created_at) read cannot see rows another
// session has inserted but not yet committed.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const recordsSchema = `
CREATE TABLE IF NOT EXISTS records (
	seq        BIGSERIAL PRIMARY KEY,
	subject    TEXT NOT NULL,
	content_id TEXT NOT NULL,
	metadata   TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS records_subject_idx ON records (subject, seq);
`

// EnsureSchema creates the records table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, recordsSchema)
	return err
}

func (s *PostgresStore) Append(ctx context.Context, record Record) (Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Held until commit, so the clamp below always sees the latest committed
	// created_at for the subject.
	if _, err := tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1))`, record.Subject,
	); err != nil {
		return Record{}, fmt.Errorf("lock subject: %w", err)
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO records (subject, content_id, metadata, created_at)
		 VALUES ($1, $2, $3, GREATEST(
			$4::timestamptz,
			COALESCE((SELECT MAX(created_at) FROM records WHERE subject = $1), $4::timestamptz)
		 ))
		 RETURNING created_at`,
		record.Subject, record.ContentID, record.Metadata, record.CreatedAt,
	).Scan(&record.CreatedAt)
	if err != nil {
		return Record{}, fmt.Errorf("append record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Record{}, fmt.Errorf("commit append: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) ListBySubject(ctx context.Context, subject string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT subject, content_id, metadata, created_at
		 FROM records WHERE subject = $1 ORDER BY seq`,
		subject,
	)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Subject, &r.ContentID, &r.Metadata, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
