// Package hasher derives the digest under which phone numbers are stored in
// the submissions table.
package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const keyLen = 32

// PBKDF2 hashes values with PBKDF2-HMAC-SHA256 and a fixed salt, so equal
// inputs always produce equal digests.
type PBKDF2 struct {
	salt       []byte
	iterations int
}

func NewPBKDF2(salt string, iterations int) *PBKDF2 {
	if iterations < 1 {
		iterations = 1
	}
	return &PBKDF2{salt: []byte(salt), iterations: iterations}
}

// Hash returns the uppercase hex digest of value.
func (h *PBKDF2) Hash(value string) string {
	key := pbkdf2.Key([]byte(value), h.salt, h.iterations, keyLen, sha256.New)
	return strings.ToUpper(hex.EncodeToString(key))
}
