package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Fingerprint computes the deterministic identity of a listing from its
// normalized (marketplace, title, price) triple: sha256, truncated to
// 16 hex characters. Two listings with equal fingerprints are the same
// observation and collapse to one during fusion. No timestamps and no
// randomness enter the hash, so the value is stable across runs.
func Fingerprint(l Listing) string {
	title := strings.Join(strings.Fields(strings.ToLower(l.Title)), " ")
	raw := fmt.Sprintf("%s|%s|%d", l.Marketplace, title, l.Price)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])[:16]
}
