// Package cryptox implements password credential hashing for the identity
// backend. Passwords are never stored: a random per-user salt plus an
// argon2id-derived verifier are kept instead.
package cryptox

import (
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// DeriveVerifier derives a 32-byte argon2id verifier from a password and a
// per-user salt. The parameters follow the library's recommended interactive
// settings (1 pass, 64 MiB, 4 lanes).
func DeriveVerifier(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// CheckVerifier compares a stored verifier against a candidate in constant
// time.
func CheckVerifier(verifier []byte, candidate []byte) bool {
	return subtle.ConstantTimeCompare(verifier, candidate) == 1
}
