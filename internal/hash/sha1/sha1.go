// Package sha1 provides SHA-1 hashing utilities.
//
// SHA-1 is the archive's deduplication key, for both whole-site listings
// and individual downloaded files. It is used as a fingerprint, not for
// anything security sensitive.
package sha1

import (
	"crypto/sha1" //nolint:gosec // content fingerprint, not a security boundary
	"encoding/hex"
)

// Hasher implements scraper.Hasher using SHA-1.
type Hasher struct{}

// New returns a SHA-1 hasher.
func New() *Hasher {
	return &Hasher{}
}

// Hash hashes the input and returns a hex digest.
func (h *Hasher) Hash(data []byte) (string, error) {
	sum := sha1.Sum(data) //nolint:gosec
	return hex.EncodeToString(sum[:]), nil
}
