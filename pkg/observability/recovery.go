package observability

import (
	"net/http"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/agentworks/console/pkg/httputil"
)

// RecoveryMiddleware contains handler panics: the panic is logged with its
// stack trace and the client gets a plain 500, while every other request
// keeps being served.
type RecoveryMiddleware struct {
	log *logrus.Logger
}

// NewRecoveryMiddleware creates panic-recovery middleware.
func NewRecoveryMiddleware(log *logrus.Logger) *RecoveryMiddleware {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RecoveryMiddleware{log: log}
}

// Handler wraps an HTTP handler with panic recovery.
func (m *RecoveryMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				m.log.WithFields(logrus.Fields{
					"panic":  rec,
					"stack":  string(debug.Stack()),
					"method": r.Method,
					"path":   r.URL.Path,
				}).Error("panic recovered in handler")
				httputil.WriteInternalError(w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
