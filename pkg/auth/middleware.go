package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is the type for context keys owned by this package.
type contextKey string

// principalKey is the context key under which the request principal lives.
const principalKey contextKey = "auth_principal"

// WithPrincipal returns a context carrying the given principal.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// FromContext returns the principal stored in the context, or the anonymous
// principal when none was set.
func FromContext(ctx context.Context) *Principal {
	if p, ok := ctx.Value(principalKey).(*Principal); ok && p != nil {
		return p
	}
	return Anonymous()
}

// Authenticator turns a bearer credential into a principal.
type Authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (*Principal, error)
}

// Middleware resolves the request principal from the Authorization header.
// Authenticators are tried in order; the first success wins. Requests without
// a credential, or with one no authenticator accepts, proceed as anonymous --
// rejecting them is the job of the authorization layer, which knows whether
// the route allows anonymous access.
type Middleware struct {
	authenticators []Authenticator
}

// NewMiddleware creates authentication middleware over the given
// authenticators.
func NewMiddleware(authenticators ...Authenticator) *Middleware {
	return &Middleware{authenticators: authenticators}
}

// Handler wraps an HTTP handler with principal resolution.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := Anonymous()

		if raw := bearerToken(r); raw != "" {
			for _, a := range m.authenticators {
				if p, err := a.Authenticate(r.Context(), raw); err == nil {
					principal = p
					break
				}
			}
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

// bearerToken extracts the token from an "Authorization: Bearer ..." header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
