package records

import (
	"context"
	"sync"
)

// InMemoryStore keeps per-subject record sequences under a single lock.
// Operations are O(1)-O(n) and never touch I/O, so one mutex is enough.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string][]Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string][]Record)}
}

func (s *InMemoryStore) Append(_ context.Context, record Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.records[record.Subject]
	// Timestamps never step backwards within a subject's sequence. Two
	// callers can read the clock in one order and reach the lock in the
	// other; append order wins.
	if n := len(seq); n > 0 && record.CreatedAt.Before(seq[n-1].CreatedAt) {
		record.CreatedAt = seq[n-1].CreatedAt
	}
	s.records[record.Subject] = append(seq, record)
	return record, nil
}

func (s *InMemoryStore) ListBySubject(_ context.Context, subject string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Record{}, s.records[subject]...), nil
}
