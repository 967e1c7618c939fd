package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusCache_Unprimed(t *testing.T) {
	cache := NewStatusCache(time.Minute)

	_, _, ok := cache.Get()
	assert.False(t, ok)
}

func TestStatusCache_WithinTTL(t *testing.T) {
	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	now := base
	cache := NewStatusCache(time.Minute)
	cache.now = func() time.Time { return now }

	expiry := base.Add(time.Hour)
	cache.Set(true, expiry)

	now = base.Add(59 * time.Second)
	authenticated, expiresAt, ok := cache.Get()
	assert.True(t, ok)
	assert.True(t, authenticated)
	assert.Equal(t, expiry, expiresAt)
}

func TestStatusCache_ExpiresAfterTTL(t *testing.T) {
	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	now := base
	cache := NewStatusCache(time.Minute)
	cache.now = func() time.Time { return now }

	cache.Set(true, base.Add(time.Hour))

	now = base.Add(61 * time.Second)
	_, _, ok := cache.Get()
	assert.False(t, ok, "entries older than the TTL are not trusted")
}

func TestStatusCache_PositiveEntryBoundedByTokenExpiry(t *testing.T) {
	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	now := base
	cache := NewStatusCache(time.Minute)
	cache.now = func() time.Time { return now }

	// The token expires before the cache TTL does.
	cache.Set(true, base.Add(10*time.Second))

	now = base.Add(30 * time.Second)
	_, _, ok := cache.Get()
	assert.False(t, ok, "a positive entry past the token expiry must be re-checked")
}

func TestStatusCache_NegativeEntryIgnoresTokenExpiry(t *testing.T) {
	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	now := base
	cache := NewStatusCache(time.Minute)
	cache.now = func() time.Time { return now }

	cache.Set(false, time.Time{})

	now = base.Add(30 * time.Second)
	authenticated, _, ok := cache.Get()
	assert.True(t, ok)
	assert.False(t, authenticated)
}

func TestStatusCache_Invalidate(t *testing.T) {
	cache := NewStatusCache(time.Minute)
	cache.Set(true, time.Now().Add(time.Hour))

	cache.Invalidate()

	_, _, ok := cache.Get()
	assert.False(t, ok)
}
