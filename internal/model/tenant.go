// internal/model/tenant.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// DomainStatus tracks the lifecycle of a tenant's custom domain.
type DomainStatus string

const (
	DomainNotSet              DomainStatus = "not_set"
	DomainPendingVerification DomainStatus = "pending_verification"
	DomainVerified            DomainStatus = "verified"
)

// TenantRecord is one hotel property on the platform. Subdomain and
// CustomDomain are globally unique across tenants; either may be unset.
type TenantRecord struct {
	ID                      uuid.UUID      `json:"id"`
	Name                    string         `json:"name"`
	Slug                    string         `json:"slug"`
	Subdomain               *string        `json:"subdomain,omitempty"`
	CustomDomain            *string        `json:"custom_domain,omitempty"`
	DomainStatus            DomainStatus   `json:"domain_status"`
	DomainVerificationToken string         `json:"-"`
	FrontendEnabled         bool           `json:"frontend_enabled"`
	Settings                map[string]any `json:"settings,omitempty"`
	CreatedAt               time.Time      `json:"created_at"`
	UpdatedAt               time.Time      `json:"updated_at"`
}

// TenantID implements guard.TenantScoped so tenant records can flow
// through post-read verification like any other scoped row.
func (t *TenantRecord) TenantID() string {
	return t.ID.String()
}
