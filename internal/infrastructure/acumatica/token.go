package acumatica

import (
	"sync"
	"time"
)

// tokenSkew renews tokens slightly before the server-reported expiry
const tokenSkew = 60 * time.Second

// tokenCache holds a bearer token together with its expiry. Each client
// owns its own cache; tokens are never shared across client instances.
type tokenCache struct {
	mu     sync.Mutex
	token  string
	expiry time.Time
}

// get returns the cached token if it is still valid at now.
func (c *tokenCache) get(now time.Time) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" || !now.Before(c.expiry) {
		return "", false
	}
	return c.token, true
}

// set stores a fresh token valid for ttl, minus a renewal skew.
func (c *tokenCache) set(token string, ttl time.Duration, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.expiry = now.Add(ttl - tokenSkew)
}

// clear drops the cached token, forcing the next call to reauthenticate.
func (c *tokenCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.expiry = time.Time{}
}
