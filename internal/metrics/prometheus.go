package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TenantResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenant_resolutions_total",
			Help: "Total host-to-tenant resolution attempts by outcome",
		},
		[]string{"outcome"},
	)

	TenantCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenant_cache_lookups_total",
			Help: "Tenant cache lookups by result (hit or miss)",
		},
		[]string{"result"},
	)

	RateLimitDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_decisions_total",
			Help: "Rate limit decisions by operation class and outcome",
		},
		[]string{"class", "decision"},
	)

	SecurityEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "security_events_total",
			Help: "Security-relevant events recorded by the audit pipeline",
		},
		[]string{"type"},
	)

	AuditDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_events_dropped_total",
			Help: "Security events dropped because the dispatcher buffer was full",
		},
	)
)

// Init registers metrics with Prometheus
func Init() {
	prometheus.MustRegister(TenantResolutions)
	prometheus.MustRegister(TenantCacheLookups)
	prometheus.MustRegister(RateLimitDecisions)
	prometheus.MustRegister(SecurityEvents)
	prometheus.MustRegister(AuditDropped)
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
