package consent

import "context"

// Store persists access grants keyed by (subject, grantee).
//
// Put overwrites any existing entry for the pair. Get returns
// sentinel.ErrNotFound when no entry exists; it returns lapsed grants as-is,
// since expiry is evaluated lazily by the service, never by the store.
// Delete is idempotent: removing an absent entry is not an error.
type Store interface {
	Put(ctx context.Context, grant Grant) error
	Get(ctx context.Context, subject, grantee string) (Grant, error)
	Delete(ctx context.Context, subject, grantee string) error
}
