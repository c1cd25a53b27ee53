package audit

import "context"

// Store persists audit events. Implementations are append-only: events are
// never mutated or deleted once written.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)

	// ListRecent returns the last limit events in append order. A limit of
	// zero or less yields an empty slice.
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
