package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"workstack/backend/internal/audit"
)

// Audit records an audit log entry after each successful mutating request
// against an organization's resources. Reads and requests outside an org
// scope are not audited. Writes are best-effort and never fail the request.
func Audit(logger audit.AuditLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sr, r)

			if !mutating(r.Method) || sr.status >= http.StatusBadRequest {
				return
			}
			orgID := chi.URLParam(r, "orgID")
			if orgID == "" {
				return
			}
			var userID string
			if u := UserFromContext(r.Context()); u != nil {
				userID = u.ID
			}
			pattern := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					pattern = p
				}
			}
			ar := audit.ParseRoute(r.Method, pattern)
			logger.LogEvent(r.Context(), orgID, userID, ar.Action, ar.Resource, clientIP(r), "")
		})
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
