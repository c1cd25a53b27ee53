package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	audithandler "healthledger/internal/audit/handler"
	consenthandler "healthledger/internal/consent/handler"
	"healthledger/internal/platform/metrics"
	"healthledger/internal/platform/middleware"
	recordshandler "healthledger/internal/records/handler"
)

// NewRouter wires all public endpoints. Handlers stay thin; business logic
// lives in the domain services.
func NewRouter(
	recordsH *recordshandler.Handler,
	consentH *consenthandler.Handler,
	auditH *audithandler.Handler,
	logger *slog.Logger,
	m *metrics.Metrics,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Latency(m))

	recordsH.Register(r)
	consentH.Register(r)
	auditH.Register(r)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
