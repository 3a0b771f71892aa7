package manager

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayfront/internal/audit"
	"stayfront/internal/model"
	"stayfront/internal/tenancy"
)

// fakeStore backs both the admin write side and the resolver directory.
type fakeStore struct {
	tenants        map[uuid.UUID]*model.TenantRecord
	subdomainCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{tenants: make(map[uuid.UUID]*model.TenantRecord)}
}

func (s *fakeStore) CreateTenant(_ context.Context, t *model.TenantRecord) error {
	s.tenants[t.ID] = t
	return nil
}

func (s *fakeStore) GetTenant(_ context.Context, id uuid.UUID) (*model.TenantRecord, error) {
	return s.tenants[id], nil
}

func (s *fakeStore) UpdateDomainConfig(_ context.Context, id uuid.UUID, subdomain, customDomain *string, status model.DomainStatus, token string) error {
	t, ok := s.tenants[id]
	if !ok {
		return fmt.Errorf("tenant not found: %s", id)
	}
	t.Subdomain = subdomain
	t.CustomDomain = customDomain
	t.DomainStatus = status
	t.DomainVerificationToken = token
	return nil
}

func (s *fakeStore) MarkDomainVerified(_ context.Context, id uuid.UUID) error {
	t, ok := s.tenants[id]
	if !ok {
		return fmt.Errorf("tenant not found: %s", id)
	}
	t.DomainStatus = model.DomainVerified
	return nil
}

func (s *fakeStore) TenantByCustomDomain(_ context.Context, domain string) (*model.TenantRecord, error) {
	for _, t := range s.tenants {
		if t.FrontendEnabled && t.CustomDomain != nil && *t.CustomDomain == domain {
			return t, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) TenantBySubdomain(_ context.Context, sub string) (*model.TenantRecord, error) {
	s.subdomainCalls++
	for _, t := range s.tenants {
		if t.FrontendEnabled && t.Subdomain != nil && *t.Subdomain == sub {
			return t, nil
		}
	}
	return nil, nil
}

type captureSink struct {
	events []audit.SecurityEvent
}

func (s *captureSink) Record(_ context.Context, ev audit.SecurityEvent) {
	s.events = append(s.events, ev)
}

func strptr(s string) *string { return &s }

func newTestAdmin() (*TenantAdmin, *fakeStore, *tenancy.Cache, *captureSink) {
	store := newFakeStore()
	sink := &captureSink{}
	resolver := tenancy.NewResolver(store, []string{"stayfront.app"}, zerolog.Nop())
	cache := tenancy.NewCache(resolver, tenancy.DefaultCacheTTL)
	return NewTenantAdmin(store, cache, sink, zerolog.Nop()), store, cache, sink
}

func TestCreateTenantDefaults(t *testing.T) {
	admin, store, _, _ := newTestAdmin()

	tenant, err := admin.CreateTenant(context.Background(), "Grand Hotel", "grand-hotel")
	require.NoError(t, err)
	assert.True(t, tenant.FrontendEnabled)
	assert.Equal(t, model.DomainNotSet, tenant.DomainStatus)
	assert.NotNil(t, store.tenants[tenant.ID])

	_, err = admin.CreateTenant(context.Background(), "", "grand-hotel")
	assert.Error(t, err)
}

func TestUpdateDomainConfigInvalidatesCache(t *testing.T) {
	admin, store, cache, sink := newTestAdmin()
	tenant, err := admin.CreateTenant(context.Background(), "Grand Hotel", "grand-hotel")
	require.NoError(t, err)
	require.NoError(t, store.UpdateDomainConfig(context.Background(), tenant.ID, strptr("grand"), nil, model.DomainNotSet, ""))

	// Warm the cache for the subdomain host.
	_, err = cache.GetOrResolve(context.Background(), "grand.stayfront.app")
	require.NoError(t, err)
	_, err = cache.GetOrResolve(context.Background(), "grand.stayfront.app")
	require.NoError(t, err)
	require.Equal(t, 1, store.subdomainCalls)

	custom := "grandhotel.com"
	updated, err := admin.UpdateDomainConfig(context.Background(), tenant.ID, strptr("grand"), &custom)
	require.NoError(t, err)
	assert.Equal(t, model.DomainPendingVerification, updated.DomainStatus)
	assert.NotEmpty(t, updated.DomainVerificationToken)

	// The stale mapping must be gone: next lookup hits the directory.
	_, err = cache.GetOrResolve(context.Background(), "grand.stayfront.app")
	require.NoError(t, err)
	assert.Equal(t, 2, store.subdomainCalls)

	require.Len(t, sink.events, 1)
	assert.Equal(t, audit.EventDomainConfigured, sink.events[0].Type)
	assert.Equal(t, "grandhotel.com", sink.events[0].Details["custom_domain"])
}

func TestUpdateDomainConfigClearingCustomDomain(t *testing.T) {
	admin, _, _, _ := newTestAdmin()
	tenant, err := admin.CreateTenant(context.Background(), "Grand Hotel", "grand-hotel")
	require.NoError(t, err)

	updated, err := admin.UpdateDomainConfig(context.Background(), tenant.ID, strptr("grand"), nil)
	require.NoError(t, err)
	assert.Equal(t, model.DomainNotSet, updated.DomainStatus)
	assert.Empty(t, updated.DomainVerificationToken)
}

func TestMarkDomainVerified(t *testing.T) {
	admin, store, _, sink := newTestAdmin()
	tenant, err := admin.CreateTenant(context.Background(), "Grand Hotel", "grand-hotel")
	require.NoError(t, err)

	// Not pending yet.
	require.Error(t, admin.MarkDomainVerified(context.Background(), tenant.ID))

	custom := "grandhotel.com"
	_, err = admin.UpdateDomainConfig(context.Background(), tenant.ID, nil, &custom)
	require.NoError(t, err)

	require.NoError(t, admin.MarkDomainVerified(context.Background(), tenant.ID))
	assert.Equal(t, model.DomainVerified, store.tenants[tenant.ID].DomainStatus)

	last := sink.events[len(sink.events)-1]
	assert.Equal(t, audit.EventDomainVerified, last.Type)
}
