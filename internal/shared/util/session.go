package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const sessionKeyLen = 16

// SessionKey derives a stable local session name from an identity so the
// identity itself is never written to disk.
func SessionKey(identity string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(identity)))
	return hex.EncodeToString(sum[:])[:sessionKeyLen]
}
