package consent

import "time"

// Grant is a time-bounded read authorization for a (subject, grantee) pair.
// The pair is the key: re-granting replaces the entry rather than stacking.
type Grant struct {
	Subject   string    `json:"subject"`
	Grantee   string    `json:"grantee"`
	GrantedAt time.Time `json:"granted_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Active reports whether the grant authorizes access at the given instant.
// The comparison is strict: a check at the exact expiry instant is denied.
func (g Grant) Active(now time.Time) bool {
	return g.ExpiresAt.After(now)
}
