package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"healthledger/internal/platform/metrics"
	"healthledger/internal/platform/middleware"
	"healthledger/internal/transport/http/shared"
	dErrors "healthledger/pkg/domain-errors"
)

//go:generate mockgen -destination=mock_service_test.go -package=handler_test healthledger/internal/consent/handler Service

// Service defines the consent operations the handler needs.
type Service interface {
	Grant(ctx context.Context, subject, grantee string, duration time.Duration) (time.Time, error)
	Revoke(ctx context.Context, subject, grantee string) error
	Check(ctx context.Context, subject, grantee string) (bool, error)
	Request(ctx context.Context, subject, grantee string) error
	ExpiryOf(ctx context.Context, subject, grantee string) (time.Time, bool, error)
}

// Handler exposes the consent registry over HTTP. It delegates to the
// service without embedding business logic.
type Handler struct {
	consent Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(consent Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{consent: consent, logger: logger, metrics: m}
}

// Register registers the consent routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/consent/grant", h.handleGrant)
	r.Post("/consent/revoke", h.handleRevoke)
	r.Post("/consent/request", h.handleRequest)
	r.Get("/consent/check", h.handleCheck)
	r.Get("/consent/expiry", h.handleExpiry)
}

type pairRequest struct {
	Subject string `json:"subject"`
	Grantee string `json:"grantee"`
}

type grantRequest struct {
	pairRequest
	DurationSeconds int64 `json:"duration_seconds"`
}

func (h *Handler) handleGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	expiresAt, err := h.consent.Grant(ctx, req.Subject, req.Grantee, time.Duration(req.DurationSeconds)*time.Second)
	if err != nil {
		h.logWarn(ctx, "grant failed", err)
		shared.WriteError(w, err)
		return
	}
	h.metrics.GrantsIssued.Inc()

	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"subject":    req.Subject,
		"grantee":    req.Grantee,
		"expires_at": expiresAt,
	})
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req pairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.consent.Revoke(ctx, req.Subject, req.Grantee); err != nil {
		h.logWarn(ctx, "revoke failed", err)
		shared.WriteError(w, err)
		return
	}
	h.metrics.GrantsRevoked.Inc()

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req pairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.consent.Request(ctx, req.Subject, req.Grantee); err != nil {
		h.logWarn(ctx, "access request failed", err)
		shared.WriteError(w, err)
		return
	}
	h.metrics.AccessRequests.Inc()

	w.WriteHeader(http.StatusAccepted)
}

// handleCheck answers whether the grantee currently holds access. A denial
// is a 200 with allowed=false, never an error status.
func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subject := r.URL.Query().Get("subject")
	grantee := r.URL.Query().Get("grantee")

	allowed, err := h.consent.Check(ctx, subject, grantee)
	if err != nil {
		h.logWarn(ctx, "check failed", err)
		shared.WriteError(w, err)
		return
	}
	h.metrics.ObserveCheck(allowed)

	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"subject": subject,
		"grantee": grantee,
		"allowed": allowed,
	})
}

func (h *Handler) handleExpiry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subject := r.URL.Query().Get("subject")
	grantee := r.URL.Query().Get("grantee")

	expiresAt, present, err := h.consent.ExpiryOf(ctx, subject, grantee)
	if err != nil {
		h.logWarn(ctx, "expiry lookup failed", err)
		shared.WriteError(w, err)
		return
	}
	if !present {
		shared.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no grant for pair"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"subject":    subject,
		"grantee":    grantee,
		"expires_at": expiresAt,
	})
}

func (h *Handler) logWarn(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
}
