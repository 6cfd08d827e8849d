package authz

import "fmt"

// WorkspaceRole is a role a principal can hold in a workspace. Roles are
// totally ordered: owner > editor > viewer.
type WorkspaceRole int

const (
	RoleViewer WorkspaceRole = iota + 1
	RoleEditor
	RoleOwner
)

// String returns the wire name of the role.
func (r WorkspaceRole) String() string {
	switch r {
	case RoleViewer:
		return "viewer"
	case RoleEditor:
		return "editor"
	case RoleOwner:
		return "owner"
	default:
		return fmt.Sprintf("WorkspaceRole(%d)", int(r))
	}
}

// Valid reports whether r is one of the defined roles.
func (r WorkspaceRole) Valid() bool {
	return r >= RoleViewer && r <= RoleOwner
}

// MarshalText implements encoding.TextMarshaler.
func (r WorkspaceRole) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("unknown workspace role %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *WorkspaceRole) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRole parses a role name as it appears in workspace specs.
func ParseRole(name string) (WorkspaceRole, error) {
	switch name {
	case "viewer":
		return RoleViewer, nil
	case "editor":
		return RoleEditor, nil
	case "owner":
		return RoleOwner, nil
	default:
		return 0, fmt.Errorf("unknown workspace role %q", name)
	}
}

// Permissions is the set of capabilities a role grants in a workspace.
type Permissions struct {
	Read          bool `json:"read"`
	Write         bool `json:"write"`
	Delete        bool `json:"delete"`
	ManageMembers bool `json:"manageMembers"`
}

// PermissionsFor maps a role to its permission set. The mapping is fixed:
//
//	viewer -> read
//	editor -> read, write, delete
//	owner  -> read, write, delete, manageMembers
//
// Unknown roles get no permissions.
func PermissionsFor(role WorkspaceRole) Permissions {
	switch role {
	case RoleViewer:
		return Permissions{Read: true}
	case RoleEditor:
		return Permissions{Read: true, Write: true, Delete: true}
	case RoleOwner:
		return Permissions{Read: true, Write: true, Delete: true, ManageMembers: true}
	default:
		return Permissions{}
	}
}

// RoleSatisfiesMinimum reports whether role meets or exceeds minRole. A nil
// role (no access) satisfies nothing.
func RoleSatisfiesMinimum(role *WorkspaceRole, minRole WorkspaceRole) bool {
	return role != nil && *role >= minRole
}
