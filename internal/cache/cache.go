// Package cache stores verified receipts so re-proving an already-proven
// input can be skipped. Proving is deterministic, so a receipt is fully
// identified by the program image and the input digest.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for receipt caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// ReceiptKey derives the cache key for one (program image, input) pair.
func ReceiptKey(imageID, inputHash string) string {
	h := sha256.New()
	h.Write([]byte(imageID))
	h.Write([]byte{0x00})
	h.Write([]byte(inputHash))
	return "zksum:v1:" + hex.EncodeToString(h.Sum(nil))
}
