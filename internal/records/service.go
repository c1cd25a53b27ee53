package records

import (
	"context"

	"healthledger/internal/audit"
	"healthledger/pkg/clock"
	dErrors "healthledger/pkg/domain-errors"

	"github.com/google/uuid"
)

// Service owns the append-only ledger of record pointers per subject. It
// validates input, assigns timestamps from the injected clock, and emits one
// audit event per append. It keeps orchestration out of handlers and domain
// logic thin.
type Service struct {
	store Store
	clock clock.Clock
	sink  audit.Sink
}

func NewService(store Store, clk clock.Clock, sink audit.Sink) *Service {
	return &Service{store: store, clock: clk, sink: sink}
}

// Append stores a new record pointer for the subject and returns it with the
// assigned timestamp. The caller never supplies createdAt.
func (s *Service) Append(ctx context.Context, subject, contentID, metadata string) (Record, error) {
	if subject == "" {
		return Record{}, dErrors.New(dErrors.CodeInvalidInput, "subject must not be empty")
	}
	if contentID == "" {
		return Record{}, dErrors.New(dErrors.CodeInvalidInput, "content id must not be empty")
	}

	record := Record{
		Subject:   subject,
		ContentID: contentID,
		Metadata:  metadata,
		CreatedAt: s.clock.Now(),
	}
	stored, err := s.store.Append(ctx, record)
	if err != nil {
		return Record{}, err
	}

	// The append is authoritative at this point; event delivery is
	// best-effort logging, never a second phase of the write.
	s.sink.Emit(audit.Event{
		ID:        uuid.New(),
		Kind:      audit.KindRecordAppended,
		Subject:   stored.Subject,
		ContentID: stored.ContentID,
		Timestamp: stored.CreatedAt,
	})
	return stored, nil
}

// List returns the subject's records in append order. A subject with no
// records yields an empty slice, not an error. List performs no access
// check; callers gate disclosure through the consent registry.
func (s *Service) List(ctx context.Context, subject string) ([]Record, error) {
	if subject == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "subject must not be empty")
	}
	return s.store.ListBySubject(ctx, subject)
}
