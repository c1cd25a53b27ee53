package consent

import (
	"context"
	"errors"
	"time"

	"healthledger/internal/audit"
	"healthledger/pkg/clock"
	dErrors "healthledger/pkg/domain-errors"
	"healthledger/pkg/platform/sentinel"

	"github.com/google/uuid"
)

// Service owns grant, revoke, check and request for (subject, grantee)
// pairs, plus the audit trail for all of them. Expiry is evaluated lazily on
// every Check and ExpiryOf against the injected clock; there is no
// background sweep, so Check is always consistent with "now" at call time.
type Service struct {
	store Store
	clock clock.Clock
	sink  audit.Sink
}

func NewService(store Store, clk clock.Clock, sink audit.Sink) *Service {
	return &Service{store: store, clock: clk, sink: sink}
}

func validatePair(subject, grantee string) error {
	if subject == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "subject must not be empty")
	}
	if grantee == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "grantee must not be empty")
	}
	return nil
}

// Grant authorizes the grantee to read the subject's records until
// now+duration. A second grant for the same pair replaces the first; expiry
// is overwritten, never extended additively. Returns the new expiry.
func (s *Service) Grant(ctx context.Context, subject, grantee string, duration time.Duration) (time.Time, error) {
	if err := validatePair(subject, grantee); err != nil {
		return time.Time{}, err
	}
	if duration <= 0 {
		return time.Time{}, dErrors.New(dErrors.CodeInvalidDuration, "grant duration must be positive")
	}

	now := s.clock.Now()
	grant := Grant{
		Subject:   subject,
		Grantee:   grantee,
		GrantedAt: now,
		ExpiresAt: now.Add(duration),
	}
	if err := s.store.Put(ctx, grant); err != nil {
		return time.Time{}, err
	}

	s.sink.Emit(audit.Event{
		ID:        uuid.New(),
		Kind:      audit.KindAccessGranted,
		Subject:   subject,
		Grantee:   grantee,
		ExpiresAt: grant.ExpiresAt,
		Timestamp: now,
	})
	return grant.ExpiresAt, nil
}

// Revoke removes the grant for the pair. Revoking an absent or lapsed grant
// is a no-op that still emits an event, so every revocation attempt is
// observable in the trail.
func (s *Service) Revoke(ctx context.Context, subject, grantee string) error {
	if err := validatePair(subject, grantee); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, subject, grantee); err != nil {
		return err
	}

	s.sink.Emit(audit.Event{
		ID:        uuid.New(),
		Kind:      audit.KindAccessRevoked,
		Subject:   subject,
		Grantee:   grantee,
		Timestamp: s.clock.Now(),
	})
	return nil
}

// Check reports whether the grantee currently holds access. It is a pure
// query: no state change, no event. Denied access is a result, not an error.
func (s *Service) Check(ctx context.Context, subject, grantee string) (bool, error) {
	if err := validatePair(subject, grantee); err != nil {
		return false, err
	}
	grant, err := s.store.Get(ctx, subject, grantee)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return grant.Active(s.clock.Now()), nil
}

// Request records a grantee's intent to be granted access. It is advisory
// only: nothing changes in the registry and Check outcomes are unaffected.
func (s *Service) Request(ctx context.Context, subject, grantee string) error {
	if err := validatePair(subject, grantee); err != nil {
		return err
	}

	s.sink.Emit(audit.Event{
		ID:        uuid.New(),
		Kind:      audit.KindAccessRequested,
		Subject:   subject,
		Grantee:   grantee,
		Timestamp: s.clock.Now(),
	})
	return nil
}

// ExpiryOf returns the stored expiry for the pair whether or not it has
// lapsed, and false when no grant exists. Callers wanting "is it valid now"
// must use Check; comparing timestamps themselves invites clock-skew bugs.
func (s *Service) ExpiryOf(ctx context.Context, subject, grantee string) (time.Time, bool, error) {
	if err := validatePair(subject, grantee); err != nil {
		return time.Time{}, false, err
	}
	grant, err := s.store.Get(ctx, subject, grantee)
	if errors.Is(err, sentinel.ErrNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return grant.ExpiresAt, true, nil
}
