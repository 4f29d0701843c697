package hashutil

import (
	"crypto/sha256"
	"fmt"
)

// ShortHash returns the first 16 hex characters of the SHA256 of s.
// Used to derive stable per-vault file names.
func ShortHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", sum[:8])
}
