package normalizer

import (
	"crypto/sha256"
	"encoding/hex"
)

const (
	// FallbackUser is returned instead of a pseudonym when no identity is known
	FallbackUser = "Quantum User"

	// DefaultInstance is hashed when a job carries no instance identity
	DefaultInstance = "default"

	userPrefix    = "user_"
	userHexLength = 6
)

// MaskUser derives a stable, non-reversible pseudonym from a raw identity:
// "user_" followed by the first 6 hex characters of its SHA-256 digest.
func MaskUser(id string) string {
	if id == "" {
		return FallbackUser
	}
	sum := sha256.Sum256([]byte(id))
	return userPrefix + hex.EncodeToString(sum[:])[:userHexLength]
}
