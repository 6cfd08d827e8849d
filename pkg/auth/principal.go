package auth

// Provider identifies how a principal was authenticated.
type Provider string

const (
	ProviderOAuth     Provider = "oauth"     // OIDC/OAuth session
	ProviderBuiltin   Provider = "builtin"   // Built-in username/password session
	ProviderAnonymous Provider = "anonymous" // No session present
)

// Principal is the authenticated actor for one request. It is constructed
// once from session state and must not be mutated afterwards.
type Principal struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Provider Provider `json:"provider"`
	Groups   []string `json:"groups,omitempty"`

	// RoleHint is an optional pre-resolved role carried by the session.
	// It is advisory only; access resolution never trusts it over the
	// workspace's declared bindings.
	RoleHint string `json:"role_hint,omitempty"`
}

// Anonymous returns the principal used for unauthenticated requests.
func Anonymous() *Principal {
	return &Principal{Provider: ProviderAnonymous}
}

// IsAnonymous reports whether the principal carries no identity.
func (p *Principal) IsAnonymous() bool {
	return p == nil || p.Provider == ProviderAnonymous
}

// InGroup reports whether the principal is a member of the named group.
func (p *Principal) InGroup(name string) bool {
	if p == nil {
		return false
	}
	for _, g := range p.Groups {
		if g == name {
			return true
		}
	}
	return false
}
