package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashPassword returns the hex encoded SHA-256 digest of the UTF-8 plaintext.
// Plaintext passwords are never stored or compared directly.
func HashPassword(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// CheckPassword reports whether plaintext hashes to the stored digest.
func CheckPassword(hash, plaintext string) bool {
	return hash != "" && hash == HashPassword(plaintext)
}
