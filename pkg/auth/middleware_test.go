package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticAuthenticator accepts exactly one token.
type staticAuthenticator struct {
	token     string
	principal *Principal
}

func (a staticAuthenticator) Authenticate(_ context.Context, rawToken string) (*Principal, error) {
	if rawToken != a.token {
		return nil, errors.New("unknown token")
	}
	return a.principal, nil
}

func capturePrincipal(t *testing.T) (http.Handler, **Principal) {
	t.Helper()
	var captured *Principal
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return handler, &captured
}

func TestMiddleware_ResolvesPrincipal(t *testing.T) {
	alice := &Principal{ID: "u-1", Username: "alice", Provider: ProviderOAuth}
	mw := NewMiddleware(staticAuthenticator{token: "good-token", principal: alice})

	handler, captured := capturePrincipal(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/workspaces/demo/access", nil)
	req.Header.Set("Authorization", "Bearer good-token")

	mw.Handler(handler).ServeHTTP(rec, req)

	require.NotNil(t, *captured)
	assert.Equal(t, "alice", (*captured).Username)
}

func TestMiddleware_NoCredentialIsAnonymous(t *testing.T) {
	mw := NewMiddleware(staticAuthenticator{token: "good-token", principal: &Principal{ID: "u-1"}})

	handler, captured := capturePrincipal(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	mw.Handler(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, "requests proceed without a credential")
	assert.True(t, (*captured).IsAnonymous())
}

func TestMiddleware_BadCredentialIsAnonymous(t *testing.T) {
	mw := NewMiddleware(staticAuthenticator{token: "good-token", principal: &Principal{ID: "u-1"}})

	handler, captured := capturePrincipal(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/workspaces/demo/access", nil)
	req.Header.Set("Authorization", "Bearer forged-token")

	mw.Handler(handler).ServeHTTP(rec, req)

	assert.True(t, (*captured).IsAnonymous())
}

func TestMiddleware_AuthenticatorOrder(t *testing.T) {
	first := staticAuthenticator{token: "shared", principal: &Principal{ID: "from-first"}}
	second := staticAuthenticator{token: "shared", principal: &Principal{ID: "from-second"}}
	mw := NewMiddleware(first, second)

	handler, captured := capturePrincipal(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer shared")

	mw.Handler(handler).ServeHTTP(rec, req)

	assert.Equal(t, "from-first", (*captured).ID)
}

func TestMiddleware_FallsThroughToLaterAuthenticator(t *testing.T) {
	oauth := staticAuthenticator{token: "oauth-token", principal: &Principal{ID: "u-oauth", Provider: ProviderOAuth}}
	builtin := NewBuiltinAuthenticator([]byte("test-secret"))
	session, err := builtin.IssueSession("u-builtin", "bob", nil, time.Hour)
	require.NoError(t, err)

	mw := NewMiddleware(oauth, builtin)

	handler, captured := capturePrincipal(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+session)

	mw.Handler(handler).ServeHTTP(rec, req)

	assert.Equal(t, "u-builtin", (*captured).ID)
	assert.Equal(t, ProviderBuiltin, (*captured).Provider)
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"standard", "Bearer abc123", "abc123"},
		{"lowercase scheme", "bearer abc123", "abc123"},
		{"missing header", "", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz", ""},
		{"scheme only", "Bearer", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			assert.Equal(t, tc.want, bearerToken(req))
		})
	}
}

func TestFromContext_Defaults(t *testing.T) {
	p := FromContext(context.Background())
	require.NotNil(t, p)
	assert.True(t, p.IsAnonymous())
}

func TestPrincipal_InGroup(t *testing.T) {
	p := &Principal{Groups: []string{"team-ml", "platform-admins"}}
	assert.True(t, p.InGroup("team-ml"))
	assert.False(t, p.InGroup("team-web"))

	var nilP *Principal
	assert.False(t, nilP.InGroup("team-ml"))
}
