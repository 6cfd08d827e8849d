// Package authz resolves workspace access for authenticated principals.
//
// # Overview
//
// A workspace declares its access surface as group role-bindings plus direct
// per-principal grants. This package computes the single effective role a
// principal holds in a workspace and the permission set that role implies.
//
// # Roles and Permissions
//
// Roles are totally ordered (owner > editor > viewer) and map to a fixed
// permission table:
//
//	RoleViewer - read
//	RoleEditor - read, write, delete
//	RoleOwner  - read, write, delete, manageMembers
//
// # Resolution Policy
//
// Access resolution combines all matching sources and takes the maximum role:
//
//	decision := authz.ResolveAccess(principal, workspace.Bindings)
//	if !decision.Granted {
//		// forbidden
//	}
//
// The max-wins policy is deliberate: a direct grant of a lower role never
// downgrades a role obtained through a group binding. The policy lives in a
// single function (resolveEffectiveRole) so it can be swapped without
// touching call sites.
//
// Handlers that need a floor on the role use RequireMinimumRole, which
// returns an *AccessDeniedError carrying enough context for a 403 response.
// Whether the workspace exists at all is decided by the workspace lookup
// before any access check, so a denial never leaks existence information.
package authz
