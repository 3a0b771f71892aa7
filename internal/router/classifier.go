// Package router classifies inbound requests as platform-shell or
// tenant-site traffic before any handler runs. It decides which tenant's
// content is being requested, never who is requesting it; authentication
// happens downstream.
package router

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"stayfront/internal/model"
	"stayfront/internal/tenancy"
)

// Headers attached to rewritten tenant requests. Downstream handlers read
// these two values to establish request-scoped tenant context.
const (
	TenantIdentifierHeader = "x-tenant-identifier"
	TenantTypeHeader       = "x-tenant-type"
)

// TenantSitePrefix is the tenant-scoped root tenant traffic is rewritten
// under.
const TenantSitePrefix = "/site"

// bypassPrefixes manage their own tenant context internally and pass
// through regardless of host.
var bypassPrefixes = []string{
	"/api/",
	"/admin",
	"/static/",
	"/assets/",
	"/metrics",
	"/healthz",
	"/swagger",
	"/favicon.ico",
}

// bypassed matches bare entries on segment boundaries, so "/admin" covers
// "/admin" and "/admin/users" but not "/administrator-suite".
func bypassed(path string) bool {
	for _, p := range bypassPrefixes {
		if strings.HasSuffix(p, "/") {
			if strings.HasPrefix(path, p) {
				return true
			}
			continue
		}
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

type Classifier struct {
	cache           *tenancy.Cache
	platformHosts   map[string]bool
	previewSuffixes []string
	logger          zerolog.Logger
}

func NewClassifier(cache *tenancy.Cache, platformHosts, previewSuffixes []string, logger zerolog.Logger) *Classifier {
	hosts := make(map[string]bool, len(platformHosts))
	for _, h := range platformHosts {
		hosts[strings.ToLower(h)] = true
	}
	return &Classifier{
		cache:           cache,
		platformHosts:   hosts,
		previewSuffixes: previewSuffixes,
		logger:          logger,
	}
}

// Classify decides how a (host, path) pair routes. Bypass paths and
// platform hosts stay on the platform shell, as does any host that
// resolves to nothing: the classifier never guesses a tenant.
func (c *Classifier) Classify(ctx context.Context, host, path string) (model.RouteClassification, error) {
	if bypassed(path) {
		return model.RouteClassification{Kind: model.RoutePlatform}, nil
	}

	host = strings.ToLower(stripPort(host))
	if c.isPlatformHost(host) {
		return model.RouteClassification{Kind: model.RoutePlatform}, nil
	}

	tenant, err := c.cache.GetOrResolve(ctx, host)
	if err != nil {
		return model.RouteClassification{}, err
	}
	if tenant == nil {
		return model.RouteClassification{Kind: model.RoutePlatform}, nil
	}

	matchedBy := model.IdentifierSubdomain
	if tenant.CustomDomain != nil && *tenant.CustomDomain == host {
		matchedBy = model.IdentifierCustomDomain
	}
	return model.RouteClassification{
		Kind:             model.RouteTenant,
		TenantIdentifier: identifierFor(tenant, matchedBy),
		IdentifierType:   matchedBy,
	}, nil
}

// Middleware runs once per inbound request. Tenant hosts get their path
// rewritten under TenantSitePrefix with the two tenant headers attached;
// unknown hosts fall through untouched and hit the default not-found
// behavior.
func (c *Classifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The tenant headers are edge-attached only. Strip any inbound
		// copies so a client cannot forge tenant context on requests the
		// classifier does not rewrite.
		r.Header.Del(TenantIdentifierHeader)
		r.Header.Del(TenantTypeHeader)

		rc, err := c.Classify(r.Context(), r.Host, r.URL.Path)
		if err != nil {
			// Directory outage: serving the platform shell on a tenant host
			// would be wrong content, so fail the request instead.
			c.logger.Error().Err(err).Str("host", r.Host).Msg("tenant resolution failed")
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}

		if rc.Kind == model.RouteTenant {
			r.Header.Set(TenantIdentifierHeader, rc.TenantIdentifier)
			r.Header.Set(TenantTypeHeader, string(rc.IdentifierType))
			r.URL.Path = TenantSitePrefix + r.URL.Path
		}

		next.ServeHTTP(w, r)
	})
}

// isPlatformHost reports whether host belongs to the SaaS operator
// itself: loopback and dev hosts, ephemeral preview deployments, or the
// configured apex/admin hostnames.
func (c *Classifier) isPlatformHost(host string) bool {
	if host == "localhost" || host == "127.0.0.1" || host == "::1" {
		return true
	}
	if c.platformHosts[host] {
		return true
	}
	for _, suffix := range c.previewSuffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}

func identifierFor(tenant *model.TenantRecord, matchedBy model.IdentifierType) string {
	if matchedBy == model.IdentifierCustomDomain && tenant.CustomDomain != nil {
		return *tenant.CustomDomain
	}
	if tenant.Subdomain != nil {
		return *tenant.Subdomain
	}
	return tenant.Slug
}

func stripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}
