package tenancy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayfront/internal/model"
)

func newTestCache(dir *fakeDirectory) (*Cache, *time.Time) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewCache(newTestResolver(dir), DefaultCacheTTL)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestCacheHitWithinTTL(t *testing.T) {
	tenant := newTenant("grand", "", true)
	dir := &fakeDirectory{tenants: []*model.TenantRecord{tenant}}
	c, _ := newTestCache(dir)

	first, err := c.GetOrResolve(context.Background(), "grand.stayfront.app")
	require.NoError(t, err)
	second, err := c.GetOrResolve(context.Background(), "grand.stayfront.app")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, dir.subdomainCalls, "second lookup must be served from cache")
}

func TestCacheNegativeResultCached(t *testing.T) {
	dir := &fakeDirectory{}
	c, _ := newTestCache(dir)

	for i := 0; i < 3; i++ {
		got, err := c.GetOrResolve(context.Background(), "ghost.stayfront.app")
		require.NoError(t, err)
		assert.Nil(t, got)
	}
	assert.Equal(t, 1, dir.subdomainCalls, "a host known not to resolve is cached too")
}

func TestCacheExpiry(t *testing.T) {
	tenant := newTenant("grand", "", true)
	dir := &fakeDirectory{tenants: []*model.TenantRecord{tenant}}
	c, now := newTestCache(dir)

	_, err := c.GetOrResolve(context.Background(), "grand.stayfront.app")
	require.NoError(t, err)

	*now = now.Add(DefaultCacheTTL + time.Second)

	_, err = c.GetOrResolve(context.Background(), "grand.stayfront.app")
	require.NoError(t, err)
	assert.Equal(t, 2, dir.subdomainCalls, "expired entry must be re-resolved")
}

func TestCacheInvalidate(t *testing.T) {
	tenant := newTenant("grand", "", true)
	dir := &fakeDirectory{tenants: []*model.TenantRecord{tenant}}
	c, _ := newTestCache(dir)

	_, err := c.GetOrResolve(context.Background(), "grand.stayfront.app")
	require.NoError(t, err)

	c.Invalidate("grand.stayfront.app")

	_, err = c.GetOrResolve(context.Background(), "grand.stayfront.app")
	require.NoError(t, err)
	assert.Equal(t, 2, dir.subdomainCalls, "invalidated entry must be re-resolved even within TTL")
}

func TestCacheInvalidateAll(t *testing.T) {
	grand := newTenant("grand", "", true)
	plaza := newTenant("plaza", "", true)
	dir := &fakeDirectory{tenants: []*model.TenantRecord{grand, plaza}}
	c, _ := newTestCache(dir)

	_, err := c.GetOrResolve(context.Background(), "grand.stayfront.app")
	require.NoError(t, err)
	_, err = c.GetOrResolve(context.Background(), "plaza.stayfront.app")
	require.NoError(t, err)
	require.Equal(t, 2, dir.subdomainCalls)

	c.InvalidateAll()

	_, err = c.GetOrResolve(context.Background(), "grand.stayfront.app")
	require.NoError(t, err)
	_, err = c.GetOrResolve(context.Background(), "plaza.stayfront.app")
	require.NoError(t, err)
	assert.Equal(t, 4, dir.subdomainCalls)
}
