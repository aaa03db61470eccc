// Package auth contains the credential and token primitives of the auth
// system: password hashing/verification and JWT issuance/parsing.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/ttttiu/WAS/internal/common"
)

// GenerateSalt returns a random hex-encoded salt of size random bytes
// (the encoded string is twice that length).
func GenerateSalt(size int) (string, error) {
	return common.MakeRandHexString(size)
}

// HashPassword returns the hex-encoded SHA-256 digest of password||salt.
// The scheme is deterministic for a given pair; stored rows keep both the
// digest and the salt, so it must stay stable across releases.
func HashPassword(password, salt string) string {
	sum := sha256.Sum256([]byte(password + salt))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword recomputes the digest for the candidate password and
// compares it with the expected hash in constant time.
func VerifyPassword(password, salt, expectedHash string) bool {
	candidate := HashPassword(password, salt)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(expectedHash)) == 1
}
