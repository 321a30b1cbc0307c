package middleware

import (
	"context"

	"workstack/backend/internal/user/domain"
)

type contextKey string

const (
	userKey    contextKey = "auth.user"
	sessionKey contextKey = "auth.session_id"
)

// WithIdentity returns a context carrying the authenticated user and session id.
func WithIdentity(ctx context.Context, u *domain.User, sessionID string) context.Context {
	ctx = context.WithValue(ctx, userKey, u)
	return context.WithValue(ctx, sessionKey, sessionID)
}

// UserFromContext returns the authenticated user, or nil when the request
// did not pass the auth middleware.
func UserFromContext(ctx context.Context) *domain.User {
	u, _ := ctx.Value(userKey).(*domain.User)
	return u
}

// SessionIDFromContext returns the session id of the authenticated request.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(sessionKey).(string)
	return s, ok && s != ""
}
