// Package commit computes the digests the journal carries. Every hash in the
// protocol uses one presentation: "sha256:" followed by lowercase hex.
package commit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ppiankov/zksum/internal/canon"
	"github.com/ppiankov/zksum/internal/model"
)

// DigestPrefix names the digest algorithm in every rendered hash.
const DigestPrefix = "sha256:"

// Digest fingerprints raw bytes.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return DigestPrefix + hex.EncodeToString(sum[:])
}

// InputDigest commits to the exact input bytes, before any normalization.
func InputDigest(raw []byte) string {
	return Digest(raw)
}

// OutputDigest commits to the ranked keyword list via its canonical
// encoding. A nil list digests the same as an empty one.
func OutputDigest(keywords []model.Keyword) (string, error) {
	if keywords == nil {
		keywords = []model.Keyword{}
	}
	data, err := canon.Marshal(keywords)
	if err != nil {
		return "", fmt.Errorf("encode keywords: %w", err)
	}
	return Digest(data), nil
}

// Valid reports whether s is a well-formed rendered digest.
func Valid(s string) bool {
	if !strings.HasPrefix(s, DigestPrefix) {
		return false
	}
	body := strings.TrimPrefix(s, DigestPrefix)
	if len(body) != sha256.Size*2 {
		return false
	}
	if _, err := hex.DecodeString(body); err != nil {
		return false
	}
	return body == strings.ToLower(body)
}
