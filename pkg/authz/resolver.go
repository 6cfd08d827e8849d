package authz

import (
	"github.com/agentworks/console/pkg/auth"
)

// RoleBinding grants a role to every member of a group.
type RoleBinding struct {
	GroupName string        `json:"groupName"`
	Role      WorkspaceRole `json:"role"`
}

// DirectGrant grants a role to a single principal.
type DirectGrant struct {
	PrincipalID string        `json:"principalId"`
	Role        WorkspaceRole `json:"role"`
}

// Bindings is the declared access surface of a workspace: group role-bindings
// plus direct per-principal grants.
type Bindings struct {
	RoleBindings []RoleBinding `json:"roleBindings,omitempty"`
	DirectGrants []DirectGrant `json:"directGrants,omitempty"`
}

// AccessDecision is the outcome of resolving a principal's access to a
// workspace. Granted is true exactly when Role is non-nil, and Permissions is
// always the table value for Role (all-false when denied).
type AccessDecision struct {
	Granted     bool           `json:"granted"`
	Role        *WorkspaceRole `json:"role,omitempty"`
	Permissions Permissions    `json:"permissions"`
}

// denied is the decision for principals holding no role.
func denied() AccessDecision {
	return AccessDecision{}
}

// ResolveAccess computes the single effective role a principal holds in a
// workspace, or a denial when it holds none. Anonymous principals are always
// denied; shared read-only resources that allow anonymous access bypass this
// resolver entirely.
func ResolveAccess(p *auth.Principal, b Bindings) AccessDecision {
	if p.IsAnonymous() {
		return denied()
	}

	role, ok := resolveEffectiveRole(p, b)
	if !ok {
		return denied()
	}

	return AccessDecision{
		Granted:     true,
		Role:        &role,
		Permissions: PermissionsFor(role),
	}
}

// resolveEffectiveRole combines group bindings and direct grants into one
// role. The policy is most-privilege-among-sources: the maximum role from any
// matching source wins. A direct grant of a lower role never downgrades a
// role granted through a group. Swapping this policy (e.g. for intersection)
// only requires changing this function.
func resolveEffectiveRole(p *auth.Principal, b Bindings) (WorkspaceRole, bool) {
	var best WorkspaceRole
	found := false

	for _, rb := range b.RoleBindings {
		if !rb.Role.Valid() || !p.InGroup(rb.GroupName) {
			continue
		}
		if rb.Role > best {
			best = rb.Role
		}
		found = true
	}

	for _, g := range b.DirectGrants {
		if !g.Role.Valid() || g.PrincipalID != p.ID {
			continue
		}
		if g.Role > best {
			best = g.Role
		}
		found = true
	}

	return best, found
}

// RequireMinimumRole resolves access and rejects principals below minRole.
// The returned error is an *AccessDeniedError suitable for a forbidden
// response; whether the workspace exists at all is decided by the caller
// before this check.
func RequireMinimumRole(p *auth.Principal, workspaceName string, b Bindings, minRole WorkspaceRole) (AccessDecision, error) {
	decision := ResolveAccess(p, b)
	if !RoleSatisfiesMinimum(decision.Role, minRole) {
		return denied(), &AccessDeniedError{
			Workspace: workspaceName,
			Principal: p.ID,
			Required:  minRole,
			Held:      decision.Role,
		}
	}
	return decision, nil
}
