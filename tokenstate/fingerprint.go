package tokenstate

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns the lowercase hex SHA-256 digest of the raw
// token bytes. Raw tokens are never persisted; this digest stands in
// for them in every key.
func Fingerprint(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}
