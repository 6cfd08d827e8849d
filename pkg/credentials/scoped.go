package credentials

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/agentworks/console/pkg/authz"
	"github.com/agentworks/console/pkg/workspace"
)

// Operation is a downstream call parameterized by a bearer token. It fails
// with an error wrapping ErrCredentialRejected when the downstream rejects
// the credential itself; any other failure is a business error and is
// propagated verbatim.
type Operation func(token string) error

// ScopedCaller executes downstream operations under a cached scoped
// credential, minting one on cache misses and recovering once from stale
// credentials. It is the only retry policy in this layer: bounded to one
// retry, scoped strictly to credential staleness.
type ScopedCaller struct {
	cache   *TokenCache
	issuer  Issuer
	group   singleflight.Group
	metrics *Metrics
	log     *logrus.Entry
}

// NewScopedCaller wires a cache and an issuer together.
func NewScopedCaller(cache *TokenCache, issuer Issuer, opts ...CallerOption) *ScopedCaller {
	c := &ScopedCaller{
		cache:  cache,
		issuer: issuer,
		log:    logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CallerOption customizes a ScopedCaller.
type CallerOption func(*ScopedCaller)

// WithCallerMetrics attaches Prometheus metrics.
func WithCallerMetrics(m *Metrics) CallerOption {
	return func(c *ScopedCaller) { c.metrics = m }
}

// WithLogger sets the logger used for issuance and retry events.
func WithLogger(log *logrus.Entry) CallerOption {
	return func(c *ScopedCaller) { c.log = log }
}

// WithScopedCredential runs op with a credential scoped to (workspace, role).
//
// The credential comes from the cache when possible; a miss triggers one
// issuance, coalesced across concurrent callers of the same key. If op fails
// because the downstream rejected the credential, the cache entry is
// invalidated, a fresh credential is issued and op is retried exactly once.
// A second rejection, an issuance failure, or any business error propagates
// to the caller unchanged.
func (c *ScopedCaller) WithScopedCredential(ctx context.Context, ws *workspace.Workspace, role authz.WorkspaceRole, op Operation) error {
	token, ok := c.cache.Get(ws.Name, role)
	if !ok {
		var err error
		token, err = c.issue(ctx, ws, role)
		if err != nil {
			return err
		}
	}

	err := op(token)
	if err == nil || !errors.Is(err, ErrCredentialRejected) {
		return err
	}

	// The downstream rejected a credential the resolver already authorized:
	// the cached token has gone stale. Invalidate, reissue and retry once.
	c.log.WithFields(logrus.Fields{
		"workspace": ws.Name,
		"role":      role.String(),
	}).Warn("scoped credential rejected, reissuing")
	c.metrics.recordRetry()
	c.cache.Invalidate(ws.Name, role)

	token, issueErr := c.issue(ctx, ws, role)
	if issueErr != nil {
		return issueErr
	}
	return op(token)
}

// issue mints and caches a credential for (workspace, role). Concurrent
// misses for the same key share one upstream call. The cache write happens
// only after issuance completes, so a cancelled call leaves the cache
// untouched.
func (c *ScopedCaller) issue(ctx context.Context, ws *workspace.Workspace, role authz.WorkspaceRole) (string, error) {
	key := cacheKey(ws.Name, role)
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		start := time.Now()
		cred, err := c.issuer.Issue(ctx, ws, role)
		c.metrics.recordIssuance(time.Since(start), err)
		if err != nil {
			return nil, err
		}
		c.cache.Set(ws.Name, role, cred)
		return cred, nil
	})
	if err != nil {
		return "", err
	}
	return v.(Credential).Token, nil
}
