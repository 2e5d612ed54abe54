package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	dErrors "vertical/pkg/domain-errors"
)

// TokenBytes is the entropy of a generated contract token.
const TokenBytes = 32

// Generate creates a cryptographically secure random token rendered as
// lowercase hex (64 characters), suitable for bearer credentials.
func Generate() (string, error) {
	buf := make([]byte, TokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate secret")
	}
	return hex.EncodeToString(buf), nil
}

// Fingerprint returns a short digest of a secret for logs. The secret itself
// must never be logged.
func Fingerprint(secret string) string {
	if secret == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:6])
}
