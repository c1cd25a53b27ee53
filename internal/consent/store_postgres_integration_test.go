//go:build integration

package consent_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"healthledger/internal/consent"
	"healthledger/pkg/platform/sentinel"
	"healthledger/pkg/testutil/containers"
)

type GrantStorePostgresSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *consent.PostgresStore
}

func TestGrantStorePostgresSuite(t *testing.T) {
	suite.Run(t, new(GrantStorePostgresSuite))
}

func (s *GrantStorePostgresSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = consent.NewPostgresStore(s.pg.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *GrantStorePostgresSuite) SetupTest() {
	_, err := s.pg.DB.Exec(`TRUNCATE grants`)
	s.Require().NoError(err)
}

func (s *GrantStorePostgresSuite) TestPutGetRoundTrip() {
	ctx := context.Background()
	grant := consent.Grant{
		Subject:   "p1",
		Grantee:   "d1",
		GrantedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		ExpiresAt: time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(s.store.Put(ctx, grant))

	got, err := s.store.Get(ctx, "p1", "d1")
	s.Require().NoError(err)
	s.True(got.ExpiresAt.Equal(grant.ExpiresAt))
}

func (s *GrantStorePostgresSuite) TestGetMissingReturnsNotFound() {
	_, err := s.store.Get(context.Background(), "p1", "nobody")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *GrantStorePostgresSuite) TestPutOverwritesExistingPair() {
	ctx := context.Background()
	granted := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	s.Require().NoError(s.store.Put(ctx, consent.Grant{
		Subject: "p1", Grantee: "d1", GrantedAt: granted, ExpiresAt: granted.Add(time.Hour),
	}))
	s.Require().NoError(s.store.Put(ctx, consent.Grant{
		Subject: "p1", Grantee: "d1", GrantedAt: granted.Add(time.Minute), ExpiresAt: granted.Add(15 * time.Second),
	}))

	got, err := s.store.Get(ctx, "p1", "d1")
	s.Require().NoError(err)
	s.True(got.ExpiresAt.Equal(granted.Add(15 * time.Second)))

	var count int
	s.Require().NoError(s.pg.DB.QueryRow(`SELECT COUNT(*) FROM grants`).Scan(&count))
	s.Equal(1, count)
}

func (s *GrantStorePostgresSuite) TestDeleteIsIdempotent() {
	ctx := context.Background()
	granted := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	s.Require().NoError(s.store.Put(ctx, consent.Grant{
		Subject: "p1", Grantee: "d1", GrantedAt: granted, ExpiresAt: granted.Add(time.Hour),
	}))
	s.Require().NoError(s.store.Delete(ctx, "p1", "d1"))
	s.Require().NoError(s.store.Delete(ctx, "p1", "d1"))

	_, err := s.store.Get(ctx, "p1", "d1")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
