package credentials

import "time"

// Credential is a short-lived bearer token scoped to one (workspace, role)
// pair, together with its expiry.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}
