package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"healthledger/internal/platform/metrics"
	"healthledger/internal/platform/middleware"
	"healthledger/internal/records"
	"healthledger/internal/transport/http/shared"
	dErrors "healthledger/pkg/domain-errors"
)

// Service defines the record operations the handler needs.
type Service interface {
	Append(ctx context.Context, subject, contentID, metadata string) (records.Record, error)
	List(ctx context.Context, subject string) ([]records.Record, error)
}

// AccessChecker gates record disclosure to non-subjects. Satisfied by the
// consent service.
type AccessChecker interface {
	Check(ctx context.Context, subject, grantee string) (bool, error)
}

// Handler exposes the record ledger over HTTP. Who the caller is comes from
// the X-Actor-ID header: identity verification belongs to an upstream
// signer, not this service.
type Handler struct {
	records Service
	access  AccessChecker
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(recordsSvc Service, access AccessChecker, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{records: recordsSvc, access: access, logger: logger, metrics: m}
}

// Register registers the record routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/records", h.handleAppend)
	r.Get("/records/{subject}", h.handleList)
}

type appendRequest struct {
	Subject   string `json:"subject"`
	ContentID string `json:"content_id"`
	Metadata  string `json:"metadata"`
}

func (h *Handler) handleAppend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req appendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	record, err := h.records.Append(ctx, req.Subject, req.ContentID, req.Metadata)
	if err != nil {
		h.logger.WarnContext(ctx, "append failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	h.metrics.RecordsAppended.Inc()

	shared.WriteJSON(w, http.StatusCreated, record)
}

// handleList returns the subject's records. The subject reads its own list
// freely; any other actor must hold an active grant. Denial is a 403, which
// is an authorization outcome, not a validation failure.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subject := chi.URLParam(r, "subject")
	actor := r.Header.Get("X-Actor-ID")
	if actor == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "X-Actor-ID header required"))
		return
	}

	if actor != subject {
		allowed, err := h.access.Check(ctx, subject, actor)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		h.metrics.ObserveCheck(allowed)
		if !allowed {
			shared.WriteError(w, dErrors.New(dErrors.CodeForbidden, "access not granted"))
			return
		}
	}

	list, err := h.records.List(ctx, subject)
	if err != nil {
		h.logger.WarnContext(ctx, "list failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"subject": subject,
		"records": list,
	})
}
