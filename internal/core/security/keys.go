package security

import (
	"crypto/sha256"
	"crypto/subtle"
)

// SecretsEqual compares two secrets in constant time.
// Both sides are hashed first so the comparison does not leak length.
func SecretsEqual(provided, stored string) bool {
	a := sha256.Sum256([]byte(provided))
	b := sha256.Sum256([]byte(stored))
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}
