package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter() (*Limiter, *time.Time) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewLimiter()
	l.now = func() time.Time { return now }
	l.lastSweep = now
	return l, &now
}

func TestCheckFixedWindowSequence(t *testing.T) {
	l, now := newTestLimiter()
	cfg := Config{Name: "test", Limit: 3, Window: 60 * time.Second}

	wantSuccess := []bool{true, true, true, false}
	wantRemaining := []int{2, 1, 0, 0}
	for i := range wantSuccess {
		res := l.Check("tenant-a:user-1", cfg)
		assert.Equal(t, wantSuccess[i], res.Success, "call %d", i+1)
		assert.Equal(t, wantRemaining[i], res.Remaining, "call %d", i+1)
		assert.Equal(t, 3, res.Limit)
		assert.Equal(t, now.Add(60*time.Second), res.ResetAt)
	}

	// A fresh window starts after the reset timestamp passes.
	*now = now.Add(61 * time.Second)
	res := l.Check("tenant-a:user-1", cfg)
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.Remaining)
}

func TestCheckIdentifiersIndependent(t *testing.T) {
	l, _ := newTestLimiter()
	cfg := Config{Name: "test", Limit: 1, Window: time.Minute}

	require.True(t, l.Check("tenant-a:user-1", cfg).Success)
	require.False(t, l.Check("tenant-a:user-1", cfg).Success)
	assert.True(t, l.Check("tenant-b:user-1", cfg).Success, "other identifiers keep their own window")
}

func TestCheckConfigsIndependent(t *testing.T) {
	l, _ := newTestLimiter()
	readCfg := Config{Name: "read", Limit: 1, Window: time.Minute}
	writeCfg := Config{Name: "write", Limit: 1, Window: time.Minute}

	require.True(t, l.Check("tenant-a:user-1", readCfg).Success)
	require.False(t, l.Check("tenant-a:user-1", readCfg).Success)
	assert.True(t, l.Check("tenant-a:user-1", writeCfg).Success, "operation classes are counted separately")
}

func TestSweepRemovesExpiredEntries(t *testing.T) {
	l, now := newTestLimiter()
	cfg := Config{Name: "test", Limit: 5, Window: time.Second}

	l.Check("a", cfg)
	l.Check("b", cfg)
	require.Len(t, l.entries, 2)

	// Within the sweep interval nothing is scanned.
	*now = now.Add(30 * time.Second)
	l.Check("c", cfg)
	assert.Len(t, l.entries, 3)

	*now = now.Add(31 * time.Second)
	l.Check("d", cfg)
	assert.Len(t, l.entries, 1, "expired windows are swept once the interval passes")
}

func TestNamedConfigs(t *testing.T) {
	assert.Equal(t, 200, ReadConfig.Limit)
	assert.Equal(t, 50, WriteConfig.Limit)
	assert.Equal(t, 10, AuthConfig.Limit)
	assert.Equal(t, 20, EmailConfig.Limit)
	assert.Equal(t, 500, EmbedConfig.Limit)
	assert.Equal(t, 20, AIConfig.Limit)
	for _, cfg := range []Config{ReadConfig, WriteConfig, AuthConfig, EmailConfig, EmbedConfig, AIConfig} {
		assert.Equal(t, time.Minute, cfg.Window, cfg.Name)
	}
}
