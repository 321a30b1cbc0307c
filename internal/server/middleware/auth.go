package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"workstack/backend/internal/security"
	userdomain "workstack/backend/internal/user/domain"
)

// UserGetter resolves the token subject to a user record.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// Auth validates the Bearer access token and puts the resolved user on the
// request context. Every failure mode short of a database outage answers the
// same 401: a caller cannot tell a malformed token from an expired one, a
// refresh token used as access, or a deleted user.
func Auth(tokens *security.TokenProvider, users UserGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				unauthorized(w)
				return
			}
			claims, err := tokens.ValidateAccess(raw)
			if err != nil {
				unauthorized(w)
				return
			}
			u, err := users.GetByID(r.Context(), claims.Subject)
			if err != nil {
				slog.Error("auth user lookup", "error", err)
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if u == nil {
				unauthorized(w)
				return
			}
			if u.Status != userdomain.StatusActive {
				writeError(w, http.StatusForbidden, "account is not active")
				return
			}
			ctx := WithIdentity(r.Context(), u, claims.SessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "authentication required")
}

// writeError mirrors the handler-level error body so middleware rejections
// look the same as handler rejections.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
