package records

import "context"

// Store persists record pointers. Implementations are append-only: there is
// no update or delete, and ListBySubject returns records in append order.
//
// Append returns the stored record. Implementations must keep CreatedAt
// non-decreasing within a subject's sequence even under concurrent appends,
// clamping the timestamp forward if needed; append order is authoritative.
type Store interface {
	Append(ctx context.Context, record Record) (Record, error)
	ListBySubject(ctx context.Context, subject string) ([]Record, error)
}
