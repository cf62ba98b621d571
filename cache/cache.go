package cache

import (
	"sync"
	"time"
)

// RevokedTokenCache is the in-process fallback revocation store used
// when no Redis address is configured. Entries live until the token's
// own expiry; a sweep drops stale ones so the map stays bounded by the
// number of logouts within one token lifetime.
//
// Being in-memory it does not survive restarts and is not shared
// between instances; deployments that need either should configure
// Redis instead.
type RevokedTokenCache struct {
	mu      sync.RWMutex
	revoked map[string]time.Time // tokenID -> expiry of the token itself
}

func NewRevokedTokenCache() *RevokedTokenCache {
	return &RevokedTokenCache{
		revoked: make(map[string]time.Time),
	}
}

// StartSweeper drops expired entries on the given interval.
func (c *RevokedTokenCache) StartSweeper(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			c.sweep(time.Now())
		}
	}()
}

func (c *RevokedTokenCache) Revoke(tokenID string, until time.Time) error {
	if !until.After(time.Now()) {
		// Already expired; nothing to remember.
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revoked[tokenID] = until
	return nil
}

func (c *RevokedTokenCache) IsRevoked(tokenID string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	until, ok := c.revoked[tokenID]
	if !ok {
		return false, nil
	}
	// A stale entry counts as not revoked; the token is dead anyway.
	return time.Now().Before(until), nil
}

func (c *RevokedTokenCache) sweep(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, until := range c.revoked {
		if !now.Before(until) {
			delete(c.revoked, id)
		}
	}
}

// Len reports the current number of remembered revocations.
func (c *RevokedTokenCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.revoked)
}
