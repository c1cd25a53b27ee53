//go:build integration

package records_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"healthledger/internal/records"
	"healthledger/pkg/testutil/containers"
)

type RecordStorePostgresSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *records.PostgresStore
}

func TestRecordStorePostgresSuite(t *testing.T) {
	suite.Run(t, new(RecordStorePostgresSuite))
}

func (s *RecordStorePostgresSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = records.NewPostgresStore(s.pg.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *RecordStorePostgresSuite) SetupTest() {
	_, err := s.pg.DB.Exec(`TRUNCATE records`)
	s.Require().NoError(err)
}

func (s *RecordStorePostgresSuite) TestAppendAndListPreservesOrder() {
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i, cid := range []string{"cidA", "cidB", "cidC"} {
		_, err := s.store.Append(ctx, records.Record{
			Subject:   "p1",
			ContentID: cid,
			Metadata:  "{}",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		s.Require().NoError(err)
	}

	list, err := s.store.ListBySubject(ctx, "p1")
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal("cidA", list[0].ContentID)
	s.Equal("cidB", list[1].ContentID)
	s.Equal("cidC", list[2].ContentID)
}

func (s *RecordStorePostgresSuite) TestCreatedAtClampedForward() {
	ctx := context.Background()
	later := time.Date(2025, 6, 1, 12, 0, 10, 0, time.UTC)
	earlier := later.Add(-5 * time.Second)

	first, err := s.store.Append(ctx, records.Record{Subject: "p1", ContentID: "cidA", CreatedAt: later})
	s.Require().NoError(err)

	// A backwards clock reading must not produce a decreasing timestamp.
	second, err := s.store.Append(ctx, records.Record{Subject: "p1", ContentID: "cidB", CreatedAt: earlier})
	s.Require().NoError(err)
	s.False(second.CreatedAt.Before(first.CreatedAt))
	s.True(second.CreatedAt.Equal(later))
}

func (s *RecordStorePostgresSuite) TestConcurrentAppendsKeepTimestampsNonDecreasing() {
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Sessions race with deliberately skewed timestamps: some carry an
	// earlier created_at than appends already in flight. The subject lock
	// must serialize them so the clamp sees every committed row.
	const appends = 40
	var wg sync.WaitGroup
	errs := make(chan error, appends)
	for i := 0; i < appends; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			skew := time.Duration(i%7-3) * time.Second
			_, err := s.store.Append(ctx, records.Record{
				Subject:   "p1",
				ContentID: fmt.Sprintf("cid-%d", i),
				CreatedAt: base.Add(skew),
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	list, err := s.store.ListBySubject(ctx, "p1")
	s.Require().NoError(err)
	s.Require().Len(list, appends)
	for i := 1; i < len(list); i++ {
		s.False(list[i].CreatedAt.Before(list[i-1].CreatedAt),
			"created_at decreased at position %d", i)
	}
}

func (s *RecordStorePostgresSuite) TestSubjectsAreIsolated() {
	ctx := context.Background()
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	_, err := s.store.Append(ctx, records.Record{Subject: "p1", ContentID: "cidA", CreatedAt: ts})
	s.Require().NoError(err)

	list, err := s.store.ListBySubject(ctx, "p2")
	s.Require().NoError(err)
	s.Empty(list)
	s.NotNil(list)
}
