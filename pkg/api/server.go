package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/agentworks/console/pkg/audit"
	"github.com/agentworks/console/pkg/credentials"
	"github.com/agentworks/console/pkg/sessions"
	"github.com/agentworks/console/pkg/workspace"
)

// Server exposes the workspace authorization layer to the console frontend.
type Server struct {
	router *mux.Router
	log    *logrus.Logger

	store       workspace.Store
	caller      *credentials.ScopedCaller
	cache       *credentials.TokenCache
	sessions    sessions.Lister
	sink        audit.Sink
	adminGroups []string
}

// ServerOption customizes a Server.
type ServerOption func(*Server)

// WithAdminGroups names the groups whose members may use the token cache
// admin routes. With no groups configured those routes deny everyone.
func WithAdminGroups(groups ...string) ServerOption {
	return func(s *Server) { s.adminGroups = groups }
}

// NewServer creates an API server over the given collaborators.
func NewServer(store workspace.Store, caller *credentials.ScopedCaller, cache *credentials.TokenCache, lister sessions.Lister, sink audit.Sink, log *logrus.Logger, opts ...ServerOption) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if sink == nil {
		sink = audit.NopSink{}
	}
	s := &Server{
		router:   mux.NewRouter(),
		log:      log,
		store:    store,
		caller:   caller,
		cache:    cache,
		sessions: lister,
		sink:     sink,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes.
func (s *Server) setupRoutes() {
	// Workspace routes
	s.router.HandleFunc("/api/v1/workspaces/{name}/access", s.getAccess).Methods("GET")
	s.router.HandleFunc("/api/v1/workspaces/{name}/sessions", s.listSessions).Methods("GET")
	s.router.HandleFunc("/api/v1/workspaces/{name}/tokens", s.invalidateWorkspaceTokens).Methods("DELETE")

	// Token cache maintenance, restricted to platform administrators
	s.router.HandleFunc("/api/v1/admin/tokens/stats", s.requireAdmin(s.tokenCacheStats)).Methods("GET")
	s.router.HandleFunc("/api/v1/admin/tokens/prune", s.requireAdmin(s.pruneTokens)).Methods("POST")

	s.router.HandleFunc("/healthz", s.health).Methods("GET")
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// health reports liveness.
func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
