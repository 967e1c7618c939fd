package client

import (
	"sync"
	"time"
)

// StatusCache memoizes the outcome of the most recent authentication check so
// UI elements asking "are we logged in" in quick succession do not each
// round-trip to the server. It never holds token material. The cache is
// advisory: gated operations still go through the server's live check.
type StatusCache struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time

	primed        bool
	authenticated bool
	expiresAt     time.Time
	checkedAt     time.Time
}

// NewStatusCache creates a cache whose entries are valid for at most ttl.
func NewStatusCache(ttl time.Duration) *StatusCache {
	return &StatusCache{ttl: ttl, now: time.Now}
}

// Get returns the cached outcome and whether it is still trustworthy. A
// positive entry is additionally bounded by the reported token expiry: past
// it the cache is not trusted and a fresh check is required.
func (c *StatusCache) Get() (authenticated bool, expiresAt time.Time, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.primed {
		return false, time.Time{}, false
	}

	now := c.now()
	if now.After(c.checkedAt.Add(c.ttl)) {
		return false, time.Time{}, false
	}
	if c.authenticated && now.After(c.expiresAt) {
		return false, time.Time{}, false
	}

	return c.authenticated, c.expiresAt, true
}

// Set records the outcome of a status check.
func (c *StatusCache) Set(authenticated bool, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.primed = true
	c.authenticated = authenticated
	c.expiresAt = expiresAt
	c.checkedAt = c.now()
}

// Invalidate drops the cached outcome, forcing the next check to hit the server.
func (c *StatusCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.primed = false
}
