// Package ratelimit is a fixed-window, process-local request throttle.
//
// Counters are not shared across processes: a deployment running N
// replicas effectively multiplies every limit by N. This is a best-effort
// noisy-neighbor control, not a quota billing mechanism, and the
// inaccuracy is a documented property of the design.
package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"stayfront/internal/metrics"
)

// Config is one named operation-class limit.
type Config struct {
	Name   string
	Limit  int
	Window time.Duration
}

// Operation classes. Callers pick the config matching the work they are
// about to do, not a single global limit.
var (
	ReadConfig  = Config{Name: "read", Limit: 200, Window: time.Minute}
	WriteConfig = Config{Name: "write", Limit: 50, Window: time.Minute}
	AuthConfig  = Config{Name: "auth", Limit: 10, Window: time.Minute}
	EmailConfig = Config{Name: "email", Limit: 20, Window: time.Minute}
	EmbedConfig = Config{Name: "embed", Limit: 500, Window: time.Minute}
	AIConfig    = Config{Name: "ai", Limit: 20, Window: time.Minute}
)

// Result reports one check decision.
type Result struct {
	Success   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// LimitExceededError maps to a 429; ResetAt feeds the Retry-After hint.
type LimitExceededError struct {
	Identifier string
	ResetAt    time.Time
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, resets at %s", e.Identifier, e.ResetAt.Format(time.RFC3339))
}

const sweepInterval = 60 * time.Second

type entry struct {
	count   int
	resetAt time.Time
}

// Limiter keeps fixed-window counters keyed by an opaque identifier
// (typically "tenantID:userID" or a client IP).
type Limiter struct {
	mu        sync.Mutex
	entries   map[string]*entry
	lastSweep time.Time

	now func() time.Time
}

func NewLimiter() *Limiter {
	return &Limiter{
		entries:   make(map[string]*entry),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Check counts one attempt against identifier under cfg and reports the
// decision. The attempt is counted even when it exceeds the limit.
func (l *Limiter) Check(identifier string, cfg Config) Result {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.maybeSweep(now)

	key := cfg.Name + ":" + identifier
	ent, ok := l.entries[key]
	if !ok || !now.Before(ent.resetAt) {
		ent = &entry{resetAt: now.Add(cfg.Window)}
		l.entries[key] = ent
	}
	ent.count++

	success := ent.count <= cfg.Limit
	remaining := cfg.Limit - ent.count
	if remaining < 0 {
		remaining = 0
	}

	decision := "allow"
	if !success {
		decision = "deny"
	}
	metrics.RateLimitDecisions.WithLabelValues(cfg.Name, decision).Inc()

	return Result{
		Success:   success,
		Limit:     cfg.Limit,
		Remaining: remaining,
		ResetAt:   ent.resetAt,
	}
}

// maybeSweep drops expired windows, amortized to at most once per
// sweepInterval so no single check pays for a full scan.
func (l *Limiter) maybeSweep(now time.Time) {
	if now.Sub(l.lastSweep) < sweepInterval {
		return
	}
	l.lastSweep = now
	for key, ent := range l.entries {
		if !now.Before(ent.resetAt) {
			delete(l.entries, key)
		}
	}
}
