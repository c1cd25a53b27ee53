package records

import "time"

// Record is an immutable pointer to externally stored content. The registry
// never fetches or validates what the content ID references; payload bytes
// live in a content-addressed store owned by the caller.
type Record struct {
	Subject   string    `json:"subject"`
	ContentID string    `json:"content_id"`
	Metadata  string    `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}
