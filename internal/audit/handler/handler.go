package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"healthledger/internal/audit"
	"healthledger/internal/transport/http/shared"
	dErrors "healthledger/pkg/domain-errors"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 500
)

// Handler exposes the audit trail read side. The trail is the only
// compliance surface; this endpoint is read-only by construction.
type Handler struct {
	store  audit.Store
	logger *slog.Logger
}

func New(store audit.Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Register registers the audit routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/audit/recent", h.handleRecent)
	r.Get("/audit/{subject}", h.handleTrail)
}

func (h *Handler) handleTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subject := chi.URLParam(r, "subject")
	if subject == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "subject must not be empty"))
		return
	}

	events, err := h.store.ListBySubject(ctx, subject)
	if err != nil {
		h.logger.ErrorContext(ctx, "audit trail lookup failed", "error", err.Error())
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "audit trail unavailable"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"subject": subject,
		"events":  events,
	})
}

// handleRecent returns the tail of the trail across all subjects, for
// operators eyeballing recent activity. The limit is clamped, never an error.
func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	events, err := h.store.ListRecent(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "recent audit lookup failed", "error", err.Error())
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "audit trail unavailable"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"limit":  limit,
		"events": events,
	})
}
