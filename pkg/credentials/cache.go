package credentials

import (
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/agentworks/console/pkg/authz"
)

const (
	// DefaultMaxEntries bounds the cache size.
	DefaultMaxEntries = 100

	// DefaultTTL is assumed for credentials whose issuer reported no expiry.
	// It sits safely inside the real token lifetime (~60 minutes) given the
	// safety margin.
	DefaultTTL = 50 * time.Minute

	// DefaultSafetyMargin is how long before expiry an entry stops being
	// served. An entry inside the margin is treated as absent and purged so
	// a caller never receives a token about to expire mid-call.
	DefaultSafetyMargin = 5 * time.Minute
)

// TokenCache is a process-wide LRU+TTL cache of scoped credentials keyed by
// (workspace, role). It is safe for concurrent use: expiry eviction on Get
// and capacity eviction on Set both mutate shared state, so every operation
// runs under one lock.
//
// The cache holds a plain LRU rather than a TTL-expiring one because expiry
// here is per entry (issuers report real token expiries) and lookups must
// apply the safety margin, not the raw deadline.
type TokenCache struct {
	mu  sync.Mutex
	lru *simplelru.LRU[string, Credential]

	maxEntries   int
	defaultTTL   time.Duration
	safetyMargin time.Duration

	metrics *Metrics
	now     func() time.Time
}

// CacheStats is a point-in-time snapshot of the cache for introspection.
type CacheStats struct {
	Size       int           `json:"size"`
	MaxSize    int           `json:"max_size"`
	DefaultTTL time.Duration `json:"default_ttl"`
}

// CacheOption customizes a TokenCache.
type CacheOption func(*TokenCache)

// WithMaxEntries overrides the capacity bound.
func WithMaxEntries(n int) CacheOption {
	return func(c *TokenCache) { c.maxEntries = n }
}

// WithDefaultTTL overrides the TTL assumed when an issuer reports no expiry.
func WithDefaultTTL(ttl time.Duration) CacheOption {
	return func(c *TokenCache) { c.defaultTTL = ttl }
}

// WithSafetyMargin overrides the expiry safety margin.
func WithSafetyMargin(margin time.Duration) CacheOption {
	return func(c *TokenCache) { c.safetyMargin = margin }
}

// WithCacheMetrics attaches Prometheus metrics.
func WithCacheMetrics(m *Metrics) CacheOption {
	return func(c *TokenCache) { c.metrics = m }
}

// withClock overrides the time source, for tests.
func withClock(now func() time.Time) CacheOption {
	return func(c *TokenCache) { c.now = now }
}

// NewTokenCache creates an empty cache.
func NewTokenCache(opts ...CacheOption) *TokenCache {
	c := &TokenCache{
		maxEntries:   DefaultMaxEntries,
		defaultTTL:   DefaultTTL,
		safetyMargin: DefaultSafetyMargin,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	// simplelru only errors on a non-positive size.
	lru, err := simplelru.NewLRU[string, Credential](c.maxEntries, nil)
	if err != nil {
		panic(err)
	}
	c.lru = lru
	return c
}

// cacheKey builds the "{workspace}:{role}" key.
func cacheKey(workspace string, role authz.WorkspaceRole) string {
	return workspace + ":" + role.String()
}

// Get returns the cached token for (workspace, role). Entries inside the
// safety margin of expiry are purged and reported as absent. A hit refreshes
// the entry's recency.
func (c *TokenCache) Get(workspace string, role authz.WorkspaceRole) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(workspace, role)
	cred, ok := c.lru.Peek(key)
	if !ok {
		c.metrics.recordCacheMiss()
		return "", false
	}
	if c.expiring(cred) {
		c.lru.Remove(key)
		c.metrics.recordCacheMiss()
		return "", false
	}

	// Refresh recency.
	c.lru.Get(key)
	c.metrics.recordCacheHit()
	return cred.Token, true
}

// Set stores a credential. A zero ExpiresAt gets the default TTL. At
// capacity the least-recently-used entry is evicted first.
func (c *TokenCache) Set(workspace string, role authz.WorkspaceRole, cred Credential) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cred.ExpiresAt.IsZero() {
		cred.ExpiresAt = c.now().Add(c.defaultTTL)
	}
	if evicted := c.lru.Add(cacheKey(workspace, role), cred); evicted {
		c.metrics.recordCacheEviction()
	}
}

// Invalidate removes the entry for (workspace, role), if present.
func (c *TokenCache) Invalidate(workspace string, role authz.WorkspaceRole) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(cacheKey(workspace, role))
}

// InvalidateWorkspace removes every entry belonging to the workspace, across
// all roles.
func (c *TokenCache) InvalidateWorkspace(workspace string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := workspace + ":"
	for _, key := range c.lru.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.lru.Remove(key)
		}
	}
}

// Clear removes everything. Used in process teardown and test isolation.
func (c *TokenCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

// PruneExpired removes all expired-or-expiring entries and returns how many
// were removed. Intended to be driven by a periodic scheduler.
func (c *TokenCache) PruneExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for _, key := range c.lru.Keys() {
		cred, ok := c.lru.Peek(key)
		if ok && c.expiring(cred) {
			c.lru.Remove(key)
			removed++
		}
	}
	return removed
}

// Stats returns a snapshot for introspection.
func (c *TokenCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Size:       c.lru.Len(),
		MaxSize:    c.maxEntries,
		DefaultTTL: c.defaultTTL,
	}
}

// expiring reports whether the credential is inside the safety margin.
// Callers must hold c.mu (the clock is shared state under test).
func (c *TokenCache) expiring(cred Credential) bool {
	return cred.ExpiresAt.Sub(c.now()) <= c.safetyMargin
}
