// Package auth provides request authentication for the console API.
//
// # Overview
//
// This package turns inbound HTTP credentials into a Principal: the identity
// the authorization layer reasons about. Two authenticators are supported and
// can run side by side -- OIDC bearer tokens verified against an external
// identity provider, and builtin HMAC-signed session tokens issued by the
// console itself. Requests carrying no credential (or an invalid one) proceed
// as the anonymous principal rather than being rejected outright; whether
// anonymous access is enough is the authorization layer's call, not this
// package's.
//
// # Key Components
//
// Principal: the resolved identity carried through the request context
//
//	p := auth.FromContext(r.Context())
//	if p.IsAnonymous() {
//		// no credential presented
//	}
//
// Middleware: tries each configured authenticator in order
//
//	mw := auth.NewMiddleware(oidcAuth, builtinAuth)
//	handler = mw.Handler(handler)
//
// OIDCAuthenticator: verifies bearer tokens against an OIDC issuer and maps
// the preferred_username, email and groups claims onto the principal.
//
// BuiltinAuthenticator: validates HS256 session tokens minted by
// IssueSession, for deployments without an external identity provider.
package auth
