package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// sessionClaims is the payload of a built-in session token.
type sessionClaims struct {
	Username string   `json:"username"`
	Groups   []string `json:"groups,omitempty"`
	RoleHint string   `json:"role_hint,omitempty"`
	jwt.RegisteredClaims
}

// BuiltinAuthenticator validates session tokens issued by the built-in
// username/password login. Tokens are HMAC-signed JWTs; the signing secret is
// shared with the login handler.
type BuiltinAuthenticator struct {
	secret []byte
}

// NewBuiltinAuthenticator creates an authenticator for built-in sessions.
func NewBuiltinAuthenticator(secret []byte) *BuiltinAuthenticator {
	return &BuiltinAuthenticator{secret: secret}
}

// IssueSession mints a session token for a locally authenticated user.
func (a *BuiltinAuthenticator) IssueSession(userID, username string, groups []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Username: username,
		Groups:   groups,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Authenticate validates a session token and returns its principal.
func (a *BuiltinAuthenticator) Authenticate(_ context.Context, rawToken string) (*Principal, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(rawToken, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse session token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("session token is not valid")
	}

	return &Principal{
		ID:       claims.Subject,
		Username: claims.Username,
		Provider: ProviderBuiltin,
		Groups:   claims.Groups,
		RoleHint: claims.RoleHint,
	}, nil
}
