package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	RecordsAppended prometheus.Counter
	GrantsIssued    prometheus.Counter
	GrantsRevoked   prometheus.Counter
	AccessRequests  prometheus.Counter
	AccessChecks    *prometheus.CounterVec
	AuditEmitted    prometheus.Counter
	AuditDropped    prometheus.Counter
	RequestLatency  *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RecordsAppended: promauto.NewCounter(prometheus.CounterOpts{
			Name: "healthledger_records_appended_total",
			Help: "Total number of record pointers appended",
		}),
		GrantsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "healthledger_grants_issued_total",
			Help: "Total number of access grants issued or renewed",
		}),
		GrantsRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "healthledger_grants_revoked_total",
			Help: "Total number of access revocations (including no-ops)",
		}),
		AccessRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "healthledger_access_requests_total",
			Help: "Total number of advisory access requests",
		}),
		AccessChecks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "healthledger_access_checks_total",
			Help: "Total number of access checks by outcome",
		}, []string{"outcome"}),
		AuditEmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "healthledger_audit_events_emitted_total",
			Help: "Total number of audit events handed to the sink",
		}),
		AuditDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "healthledger_audit_events_dropped_total",
			Help: "Total number of audit events dropped by the bounded queue",
		}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "healthledger_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// ObserveCheck records an access check outcome ("allowed" or "denied").
func (m *Metrics) ObserveCheck(allowed bool) {
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	m.AccessChecks.WithLabelValues(outcome).Inc()
}
