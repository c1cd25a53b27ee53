package consent

import (
	"context"
	"sync"

	"healthledger/pkg/platform/sentinel"
)

type grantKey struct {
	subject string
	grantee string
}

// InMemoryStore keeps grants in a single map under one lock. Lapsed entries
// linger until revoked or overwritten; the key space is bounded by the
// (subject, grantee) pairs ever granted, so this is not an unbounded leak.
type InMemoryStore struct {
	mu     sync.RWMutex
	grants map[grantKey]Grant
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{grants: make(map[grantKey]Grant)}
}

func (s *InMemoryStore) Put(_ context.Context, grant Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[grantKey{grant.Subject, grant.Grantee}] = grant
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, subject, grantee string) (Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	grant, ok := s.grants[grantKey{subject, grantee}]
	if !ok {
		return Grant{}, sentinel.ErrNotFound
	}
	return grant, nil
}

func (s *InMemoryStore) Delete(_ context.Context, subject, grantee string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.grants, grantKey{subject, grantee})
	return nil
}
