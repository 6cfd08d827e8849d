// Package credentials mints, caches and applies short-lived Kubernetes
// credentials scoped to a workspace role.
//
// # Overview
//
// Every downstream Kubernetes call the console makes on behalf of a user runs
// under a ServiceAccount token scoped to the user's effective role in the
// target workspace, never under the console's own identity. Three pieces
// cooperate:
//
//	TokenCache   - in-process LRU+TTL cache of (workspace, role) -> token
//	Issuer       - mints fresh tokens via the TokenRequest API
//	ScopedCaller - get-or-mint, invoke, recover once from staleness
//
// # Usage
//
//	cache := credentials.NewTokenCache()
//	issuer := credentials.NewKubeIssuer(clientset)
//	caller := credentials.NewScopedCaller(cache, issuer)
//
//	err := caller.WithScopedCredential(ctx, ws, authz.RoleEditor, func(token string) error {
//		return lister.List(ctx, token, ws.Namespace)
//	})
//
// # Cache contract
//
// Lookups never return an entry within five minutes of its expiry; such
// entries are purged on sight. The cache holds at most 100 entries and evicts
// the least-recently-touched one first -- both insertion and lookup refresh
// recency. Entries without an issuer-reported expiry are assumed to live 50
// minutes.
//
// # Failure handling
//
// A downstream rejection of the credential itself (ErrCredentialRejected)
// triggers exactly one invalidate-reissue-retry cycle. Issuance failures
// (IssuanceError) and business errors are never retried here.
package credentials
