package authz

import (
	"errors"
	"fmt"
)

// AccessDeniedError reports that an authenticated principal holds no
// sufficient role for a workspace. It maps to a forbidden response at the
// HTTP boundary and is never retried.
type AccessDeniedError struct {
	Workspace string
	Principal string
	Required  WorkspaceRole
	Held      *WorkspaceRole
}

// Error implements the error interface.
func (e *AccessDeniedError) Error() string {
	if e.Held == nil {
		return fmt.Sprintf("access denied: principal %q has no role in workspace %q (requires %s)",
			e.Principal, e.Workspace, e.Required)
	}
	return fmt.Sprintf("access denied: principal %q holds %s in workspace %q (requires %s)",
		e.Principal, *e.Held, e.Workspace, e.Required)
}

// IsAccessDenied reports whether err is an access denial.
func IsAccessDenied(err error) bool {
	var denied *AccessDeniedError
	return errors.As(err, &denied)
}
