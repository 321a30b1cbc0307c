package domain

import "time"

// Session is a server-side login session. One row per issued refresh token
// lineage: Refresh rotates RefreshJti/RefreshTokenHash in place, so a stale
// rotated token can be recognized as reuse.
type Session struct {
	ID               string
	UserID           string
	RefreshJti       string
	RefreshTokenHash string
	ExpiresAt        time.Time
	RevokedAt        *time.Time
	LastSeenAt       *time.Time
	CreatedAt        time.Time
}
