// Package audit is the security event pipeline: guard decisions and
// domain-configuration changes are appended here, never read back by this
// service.
package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"stayfront/internal/metrics"
)

// Event types recorded by the platform core.
const (
	EventSuperAdminAccess = "super_admin_access"
	EventCrossTenantLeak  = "cross_tenant_leak"
	EventDomainConfigured = "domain_configured"
	EventDomainVerified   = "domain_verified"
)

// SecurityEvent is one append-only audit record.
type SecurityEvent struct {
	Type        string            `json:"type"`
	TenantID    string            `json:"tenant_id,omitempty"`
	PrincipalID string            `json:"principal_id,omitempty"`
	Details     map[string]string `json:"details,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

// Sink appends security events somewhere durable-ish. Implementations
// must not block the request path for long.
type Sink interface {
	Record(ctx context.Context, ev SecurityEvent)
}

// LogSink writes events to the structured log. It is always present, so
// an audit trail survives even when the queue is down.
type LogSink struct {
	Logger zerolog.Logger
}

func (s LogSink) Record(_ context.Context, ev SecurityEvent) {
	metrics.SecurityEvents.WithLabelValues(ev.Type).Inc()
	s.Logger.Warn().
		Str("event_type", ev.Type).
		Str("tenant_id", ev.TenantID).
		Str("principal_id", ev.PrincipalID).
		Fields(map[string]any{"details": ev.Details}).
		Time("at", ev.Timestamp).
		Msg("security event")
}
