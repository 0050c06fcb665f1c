package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash returns the lowercase hex SHA-256 of the trimmed, lowercased value, or nil when value is empty.
func Hash(value string) *string {
	if value == "" {
		return nil
	}
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(value))))
	out := hex.EncodeToString(sum[:])
	return &out
}

// HashPtr is Hash for optional values.
func HashPtr(value *string) *string {
	if value == nil {
		return nil
	}
	return Hash(*value)
}
