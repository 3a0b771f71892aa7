// Package tenancy maps inbound request hosts to tenant records.
//
// Resolution state (the host cache) is process-local: a deployment with
// multiple processes does not share cache warmth. That is a known
// limitation of the design, not something to paper over here.
package tenancy

import (
	"context"
	"net"
	"strings"

	"github.com/rs/zerolog"

	"stayfront/internal/metrics"
	"stayfront/internal/model"
)

// Directory is the read-only tenant lookup the resolver runs against,
// filtered to enabled tenants by the implementation.
type Directory interface {
	TenantByCustomDomain(ctx context.Context, domain string) (*model.TenantRecord, error)
	TenantBySubdomain(ctx context.Context, subdomain string) (*model.TenantRecord, error)
}

// reservedSubdomains are labels that are never tenant subdomains, even if
// a tenant happens to have the literal value stored.
var reservedSubdomains = map[string]bool{
	"www":   true,
	"app":   true,
	"admin": true,
	"api":   true,
	"mail":  true,
}

type Resolver struct {
	dir         Directory
	baseDomains []string
	logger      zerolog.Logger
}

// NewResolver builds a resolver over the given directory. baseDomains are
// tried in order; the first that structurally matches the host wins.
func NewResolver(dir Directory, baseDomains []string, logger zerolog.Logger) *Resolver {
	return &Resolver{
		dir:         dir,
		baseDomains: baseDomains,
		logger:      logger,
	}
}

// Resolve maps a raw request host to an enabled tenant. A nil record with
// a nil error means the host is not a tenant host: that is a normal
// outcome, not a failure.
func (r *Resolver) Resolve(ctx context.Context, host string) (*model.TenantRecord, error) {
	host = stripPort(host)
	if host == "" {
		return nil, nil
	}

	tenant, err := r.dir.TenantByCustomDomain(ctx, host)
	if err != nil {
		return nil, err
	}
	if tenant != nil {
		metrics.TenantResolutions.WithLabelValues("custom_domain").Inc()
		return tenant, nil
	}

	sub, ok := r.extractSubdomain(host)
	if !ok {
		metrics.TenantResolutions.WithLabelValues("none").Inc()
		return nil, nil
	}
	if reservedSubdomains[sub] {
		metrics.TenantResolutions.WithLabelValues("reserved").Inc()
		return nil, nil
	}

	tenant, err = r.dir.TenantBySubdomain(ctx, sub)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		metrics.TenantResolutions.WithLabelValues("none").Inc()
		r.logger.Debug().Str("host", host).Str("subdomain", sub).Msg("subdomain has no enabled tenant")
		return nil, nil
	}
	metrics.TenantResolutions.WithLabelValues("subdomain").Inc()
	return tenant, nil
}

// extractSubdomain returns the label in front of the first base domain
// that structurally matches the host. Once a base domain matches, later
// base domains are not tried even if the directory lookup comes up empty.
func (r *Resolver) extractSubdomain(host string) (string, bool) {
	for _, base := range r.baseDomains {
		suffix := "." + base
		if !strings.HasSuffix(host, suffix) {
			continue
		}
		sub := strings.TrimSuffix(host, suffix)
		if sub == "" || strings.Contains(sub, ".") {
			continue
		}
		return sub, true
	}
	return "", false
}

func stripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}
