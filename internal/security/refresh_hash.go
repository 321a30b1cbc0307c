package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashRefreshToken returns the hex-encoded SHA-256 digest of a refresh token.
// Session rows store only this digest; the raw token never touches the database.
func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// RefreshTokenHashEqual reports whether token hashes to storedHash.
// The comparison is constant-time.
func RefreshTokenHashEqual(token, storedHash string) bool {
	hash := HashRefreshToken(token)
	return subtle.ConstantTimeCompare([]byte(hash), []byte(storedHash)) == 1
}
