package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/agentworks/console/pkg/audit"
	"github.com/agentworks/console/pkg/auth"
	"github.com/agentworks/console/pkg/authz"
	"github.com/agentworks/console/pkg/credentials"
	"github.com/agentworks/console/pkg/httputil"
	"github.com/agentworks/console/pkg/sessions"
	"github.com/agentworks/console/pkg/workspace"
)

// lookupWorkspace fetches the named workspace and writes the not-found
// response on absence. Existence is always checked before access, so a 404
// and a 403 are consistently distinguishable across all routes.
func (s *Server) lookupWorkspace(w http.ResponseWriter, r *http.Request) (*workspace.Workspace, bool) {
	name := mux.Vars(r)["name"]
	ws, err := s.store.Get(r.Context(), name)
	if err != nil {
		if errors.Is(err, workspace.ErrNotFound) {
			httputil.WriteNotFound(w, "workspace not found")
			return nil, false
		}
		s.log.WithError(err).WithField("workspace", name).Error("workspace lookup failed")
		httputil.WriteInternalError(w)
		return nil, false
	}
	return ws, true
}

// getAccess returns the caller's effective access to a workspace.
func (s *Server) getAccess(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.lookupWorkspace(w, r)
	if !ok {
		return
	}

	principal := auth.FromContext(r.Context())
	decision := authz.ResolveAccess(principal, ws.Bindings)
	_ = httputil.WriteSuccess(w, decision)
}

// listSessions lists the agent sessions of a workspace through a credential
// scoped to the caller's role.
func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.lookupWorkspace(w, r)
	if !ok {
		return
	}

	principal := auth.FromContext(r.Context())
	decision, err := authz.RequireMinimumRole(principal, ws.Name, ws.Bindings, authz.RoleViewer)
	auditCtx := audit.NewContext(s.sink, ws.Name, ws.Namespace, principal.ID, decision.Role, "agentsessions")
	if err != nil {
		auditCtx.Denied(r.Context(), "list", "", err.Error())
		httputil.WriteForbidden(w, "insufficient workspace role")
		return
	}

	var result []sessions.Session
	err = s.caller.WithScopedCredential(r.Context(), ws, *decision.Role, func(token string) error {
		var listErr error
		result, listErr = s.sessions.List(r.Context(), token, ws.Namespace)
		return listErr
	})
	if err != nil {
		s.writeScopedCallError(w, r, auditCtx, "list", err)
		return
	}

	auditCtx.Success(r.Context(), "list", "", "")
	_ = httputil.WriteSuccess(w, map[string]interface{}{"sessions": result})
}

// invalidateWorkspaceTokens drops every cached credential for a workspace.
// Owners use this after changing role bindings so stale scopes die early.
func (s *Server) invalidateWorkspaceTokens(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.lookupWorkspace(w, r)
	if !ok {
		return
	}

	principal := auth.FromContext(r.Context())
	decision, err := authz.RequireMinimumRole(principal, ws.Name, ws.Bindings, authz.RoleOwner)
	auditCtx := audit.NewContext(s.sink, ws.Name, ws.Namespace, principal.ID, decision.Role, "tokens")
	if err != nil {
		auditCtx.Denied(r.Context(), "invalidate", "", err.Error())
		httputil.WriteForbidden(w, "insufficient workspace role")
		return
	}

	s.cache.InvalidateWorkspace(ws.Name)
	auditCtx.Success(r.Context(), "invalidate", "", "workspace tokens invalidated")
	_ = httputil.WriteSuccess(w, map[string]string{"status": "invalidated"})
}

// writeScopedCallError maps a scoped-call failure onto a response and an
// audit record. Issuance failures and exhausted credential retries are
// internal errors; anything else is a downstream business failure surfaced
// as a bad gateway.
func (s *Server) writeScopedCallError(w http.ResponseWriter, r *http.Request, auditCtx audit.Context, action string, err error) {
	var issuance *credentials.IssuanceError
	switch {
	case errors.As(err, &issuance):
		s.log.WithError(err).Error("credential issuance failed")
		auditCtx.Error(r.Context(), action, "", err, http.StatusInternalServerError)
		httputil.WriteInternalError(w)
	case errors.Is(err, credentials.ErrCredentialRejected):
		s.log.WithError(err).Error("scoped credential rejected after retry")
		auditCtx.Error(r.Context(), action, "", err, http.StatusInternalServerError)
		httputil.WriteInternalError(w)
	default:
		s.log.WithError(err).Error("downstream call failed")
		auditCtx.Error(r.Context(), action, "", err, http.StatusBadGateway)
		httputil.WriteErrorMessage(w, http.StatusBadGateway, "downstream call failed")
	}
}
