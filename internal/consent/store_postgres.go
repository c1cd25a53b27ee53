package consent

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"healthledger/pkg/platform/sentinel"
)

// PostgresStore keeps grants in a table keyed by (subject, grantee). Upserts
// implement replace-on-regrant; lapsed rows stay until revoked or
// overwritten so ExpiryOf can still report them.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const grantsSchema = `
CREATE TABLE IF NOT EXISTS grants (
	subject    TEXT NOT NULL,
	grantee    TEXT NOT NULL,
	granted_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (subject, grantee)
);
`

// EnsureSchema creates the grants table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, grantsSchema)
	return err
}

func (s *PostgresStore) Put(ctx context.Context, grant Grant) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO grants (subject, grantee, granted_at, expires_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (subject, grantee)
		 DO UPDATE SET granted_at = EXCLUDED.granted_at, expires_at = EXCLUDED.expires_at`,
		grant.Subject, grant.Grantee, grant.GrantedAt, grant.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("put grant: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, subject, grantee string) (Grant, error) {
	grant := Grant{Subject: subject, Grantee: grantee}
	err := s.db.QueryRowContext(ctx,
		`SELECT granted_at, expires_at FROM grants WHERE subject = $1 AND grantee = $2`,
		subject, grantee,
	).Scan(&grant.GrantedAt, &grant.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Grant{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Grant{}, fmt.Errorf("get grant: %w", err)
	}
	return grant, nil
}

func (s *PostgresStore) Delete(ctx context.Context, subject, grantee string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM grants WHERE subject = $1 AND grantee = $2`,
		subject, grantee,
	)
	if err != nil {
		return fmt.Errorf("delete grant: %w", err)
	}
	return nil
}
