package credentials

import (
	"errors"
	"fmt"

	"github.com/agentworks/console/pkg/authz"
)

// ErrCredentialRejected marks a downstream failure caused by a stale or
// revoked credential, as opposed to a legitimate permission denial. Wrapped
// calls that fail with it get exactly one invalidate-and-retry cycle;
// everything else propagates unchanged. Collaborators produce it once at
// their boundary (see sessions.KubeLister) so nothing downstream has to
// re-parse error shapes.
var ErrCredentialRejected = errors.New("credential rejected by downstream")

// IssuanceError reports that minting a credential failed upstream. It is not
// retried: retrying issuance indefinitely would mask a real outage. Callers
// surface it as an internal error.
type IssuanceError struct {
	Workspace string
	Role      authz.WorkspaceRole
	Err       error
}

// Error implements the error interface.
func (e *IssuanceError) Error() string {
	return fmt.Sprintf("failed to issue credential for workspace %q role %s: %v", e.Workspace, e.Role, e.Err)
}

// Unwrap returns the upstream cause.
func (e *IssuanceError) Unwrap() error {
	return e.Err
}
