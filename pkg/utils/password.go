package utils

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashPassword returns the hex-encoded SHA-256 digest of password.
//
// Digests are deliberately unsalted: the credential store detects the
// compiled-in placeholder admin password by comparing stored digests, which
// only works when hashing is deterministic. The trade-off is that identical
// passwords across accounts produce identical stored digests.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword reports whether password hashes to the stored digest.
// Comparison is constant-time.
func VerifyPassword(password, digest string) bool {
	computed := HashPassword(password)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}
