package audit

import (
	"time"

	"github.com/google/uuid"
)

// Kind labels what happened. The audit trail is the only compliance surface:
// current registry state is never trusted for audit purposes.
type Kind string

const (
	KindRecordAppended  Kind = "record_appended"
	KindAccessRequested Kind = "access_requested"
	KindAccessGranted   Kind = "access_granted"
	KindAccessRevoked   Kind = "access_revoked"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Kind      Kind      `json:"kind"`
	Subject   string    `json:"subject"`
	Grantee   string    `json:"grantee,omitempty"`    // empty for record_appended
	ContentID string    `json:"content_id,omitempty"` // set for record_appended only
	ExpiresAt time.Time `json:"expires_at,omitzero"`  // set for access_granted only
	Timestamp time.Time `json:"timestamp"`
}
