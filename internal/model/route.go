// internal/model/route.go
package model

// RouteKind says whether a request belongs to the platform shell or to a
// tenant site.
type RouteKind string

const (
	RoutePlatform RouteKind = "platform"
	RouteTenant   RouteKind = "tenant"
)

// IdentifierType records how a tenant host was matched.
type IdentifierType string

const (
	IdentifierSubdomain    IdentifierType = "subdomain"
	IdentifierCustomDomain IdentifierType = "customDomain"
)

// RouteClassification is the per-request routing decision. It lives only
// for the duration of request handling.
type RouteClassification struct {
	Kind             RouteKind
	TenantIdentifier string
	IdentifierType   IdentifierType
}
