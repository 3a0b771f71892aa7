// internal/manager/tenant_admin.go
package manager

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"stayfront/internal/audit"
	"stayfront/internal/model"
	"stayfront/internal/tenancy"
)

// Store is the slice of the tenant directory the admin needs to write.
type Store interface {
	CreateTenant(ctx context.Context, t *model.TenantRecord) error
	GetTenant(ctx context.Context, id uuid.UUID) (*model.TenantRecord, error)
	UpdateDomainConfig(ctx context.Context, id uuid.UUID, subdomain, customDomain *string, status model.DomainStatus, token string) error
	MarkDomainVerified(ctx context.Context, id uuid.UUID) error
}

// TenantAdmin coordinates tenant administration: directory writes, host
// cache invalidation, and the audit trail. Tenant records are created and
// edited here; the routing core never deletes them.
type TenantAdmin struct {
	storage Store
	cache   *tenancy.Cache
	sink    audit.Sink
	logger  zerolog.Logger
}

func NewTenantAdmin(st Store, cache *tenancy.Cache, sink audit.Sink, logger zerolog.Logger) *TenantAdmin {
	return &TenantAdmin{
		storage: st,
		cache:   cache,
		sink:    sink,
		logger:  logger,
	}
}

// CreateTenant registers a new property with no domains configured.
func (ta *TenantAdmin) CreateTenant(ctx context.Context, name, slug string) (*model.TenantRecord, error) {
	if name == "" || slug == "" {
		return nil, fmt.Errorf("tenant name and slug are required")
	}
	t := &model.TenantRecord{
		ID:              uuid.New(),
		Name:            name,
		Slug:            slug,
		DomainStatus:    model.DomainNotSet,
		FrontendEnabled: true,
	}
	if err := ta.storage.CreateTenant(ctx, t); err != nil {
		return nil, err
	}
	ta.logger.Info().Str("tenant_id", t.ID.String()).Str("slug", slug).Msg("tenant created")
	return t, nil
}

// UpdateDomainConfig replaces a tenant's subdomain and custom domain,
// resets verification to pending with a fresh token, and clears the host
// cache so stale mappings cannot serve another tenant's site.
func (ta *TenantAdmin) UpdateDomainConfig(ctx context.Context, id uuid.UUID, subdomain, customDomain *string) (*model.TenantRecord, error) {
	status := model.DomainNotSet
	token := ""
	if customDomain != nil && *customDomain != "" {
		status = model.DomainPendingVerification
		token = uuid.NewString()
	}

	if err := ta.storage.UpdateDomainConfig(ctx, id, subdomain, customDomain, status, token); err != nil {
		return nil, err
	}

	// Domain edits can free a host previously pointing at this tenant; a
	// single-entry invalidation cannot know every affected host.
	ta.cache.InvalidateAll()

	ta.sink.Record(ctx, audit.SecurityEvent{
		Type:     audit.EventDomainConfigured,
		TenantID: id.String(),
		Details: map[string]string{
			"subdomain":     deref(subdomain),
			"custom_domain": deref(customDomain),
		},
		Timestamp: time.Now(),
	})

	return ta.storage.GetTenant(ctx, id)
}

// MarkDomainVerified flips a pending custom domain to verified once the
// external DNS/ACME workflow confirms the token.
func (ta *TenantAdmin) MarkDomainVerified(ctx context.Context, id uuid.UUID) error {
	tenant, err := ta.storage.GetTenant(ctx, id)
	if err != nil {
		return err
	}
	if tenant == nil {
		return fmt.Errorf("tenant not found: %s", id)
	}
	if tenant.DomainStatus != model.DomainPendingVerification {
		return fmt.Errorf("tenant %s has no pending domain verification", id)
	}

	if err := ta.storage.MarkDomainVerified(ctx, id); err != nil {
		return err
	}
	if tenant.CustomDomain != nil {
		ta.cache.Invalidate(*tenant.CustomDomain)
	}

	ta.sink.Record(ctx, audit.SecurityEvent{
		Type:      audit.EventDomainVerified,
		TenantID:  id.String(),
		Details:   map[string]string{"custom_domain": deref(tenant.CustomDomain)},
		Timestamp: time.Now(),
	})
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
