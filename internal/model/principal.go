// internal/model/principal.go
package model

import "github.com/google/uuid"

// Principal is an authenticated actor. A platform super admin is unscoped;
// every other principal is scoped to exactly one tenant via TenantID.
type Principal struct {
	ID                   uuid.UUID  `json:"id"`
	Email                string     `json:"email"`
	IsPlatformSuperAdmin bool       `json:"is_platform_super_admin"`
	TenantID             *uuid.UUID `json:"tenant_id,omitempty"`
}

// ScopedTenantID returns the tenant id a scoped principal belongs to, or
// "" for a super admin.
func (p *Principal) ScopedTenantID() string {
	if p.TenantID == nil {
		return ""
	}
	return p.TenantID.String()
}
