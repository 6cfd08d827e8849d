package api

import (
	"net/http"

	"github.com/agentworks/console/pkg/auth"
	"github.com/agentworks/console/pkg/httputil"
)

// requireAdmin only admits members of the configured admin groups. Workspace
// roles do not apply here: these routes span every workspace's cached tokens,
// so the gate is platform-level, not per workspace.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := auth.FromContext(r.Context())
		for _, group := range s.adminGroups {
			if principal.InGroup(group) {
				next(w, r)
				return
			}
		}
		httputil.WriteForbidden(w, "administrator access required")
	}
}

// tokenCacheStats returns a snapshot of the token cache.
func (s *Server) tokenCacheStats(w http.ResponseWriter, _ *http.Request) {
	stats := s.cache.Stats()
	_ = httputil.WriteSuccess(w, map[string]interface{}{
		"size":           stats.Size,
		"max_size":       stats.MaxSize,
		"default_ttl_ms": stats.DefaultTTL.Milliseconds(),
	})
}

// pruneTokens removes expired-or-expiring cache entries.
func (s *Server) pruneTokens(w http.ResponseWriter, _ *http.Request) {
	removed := s.cache.PruneExpired()
	_ = httputil.WriteSuccess(w, map[string]int{"removed": removed})
}
