package security

import "time"

// NewTestTokenProvider returns a TokenProvider with a fixed secret and short TTLs.
// For unit tests only. Callers must not use in production.
func NewTestTokenProvider() *TokenProvider {
	return NewTokenProvider([]byte("test-secret-0123456789abcdef"), "test-issuer", "test-audience", 15*time.Minute, 24*time.Hour)
}

// NewExpiringTestTokenProvider is like NewTestTokenProvider but with the given TTLs,
// so tests can mint already-short-lived or negative-lifetime tokens.
func NewExpiringTestTokenProvider(accessTTL, refreshTTL time.Duration) *TokenProvider {
	return NewTokenProvider([]byte("test-secret-0123456789abcdef"), "test-issuer", "test-audience", accessTTL, refreshTTL)
}
