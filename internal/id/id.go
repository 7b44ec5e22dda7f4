package id

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// FormatTxnRef returns a transaction reference like "#42".
func FormatTxnRef(txnID int64) string {
	return "#" + strconv.FormatInt(txnID, 10)
}

// ParseTxnRef parses "#42" or "42" into a transaction ID.
func ParseTxnRef(ref string) (int64, error) {
	s := strings.TrimPrefix(strings.TrimSpace(ref), "#")
	if s == "" {
		return 0, fmt.Errorf("invalid transaction reference: %q", ref)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid transaction reference %q: %w", ref, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid transaction reference %q: must be positive", ref)
	}
	return n, nil
}

// NewCorrelationID returns a random identifier for postings that did not come
// with a message reference of their own (CLI, HTTP).
func NewCorrelationID() string {
	return uuid.NewString()
}

// ContentRef returns a stable reference derived from parts, used to
// recognize rows that were already imported. Parts are joined with a unit
// separator before hashing.
func ContentRef(prefix string, parts ...string) string {
	h := sha1.Sum([]byte(strings.Join(parts, "\x1f")))
	return prefix + ":" + hex.EncodeToString(h[:8])
}
