package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestReceiptKey_Derivation(t *testing.T) {
	key := ReceiptKey("sha256:aa", "sha256:bb")

	if !strings.HasPrefix(key, "zksum:v1:") {
		t.Errorf("Expected zksum:v1: prefix, got %s", key)
	}
	if key != ReceiptKey("sha256:aa", "sha256:bb") {
		t.Error("Expected stable key for same inputs")
	}
	if key == ReceiptKey("sha256:aa", "sha256:cc") {
		t.Error("Expected different key for different input hash")
	}
	if key == ReceiptKey("sha256:ab", "sha256:bb") {
		t.Error("Expected different key for different image id")
	}
	// Field boundary must be part of the derivation.
	if ReceiptKey("ab", "c") == ReceiptKey("a", "bc") {
		t.Error("Expected field boundary to change the key")
	}
}

func TestMemoryCache_SetGetDelete(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	key := ReceiptKey("img", "in")

	if _, found := c.Get(key); found {
		t.Error("Expected miss on empty cache")
	}

	if err := c.Set(key, []byte("receipt"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	val, found := c.Get(key)
	if !found || !bytes.Equal(val, []byte("receipt")) {
		t.Errorf("Expected hit with stored bytes, got %q found=%v", val, found)
	}

	if err := c.Delete(key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found := c.Get(key); found {
		t.Error("Expected miss after delete")
	}
}

func TestMemoryCache_CopiesOnBothSides(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	key := ReceiptKey("img", "in")

	stored := []byte("receipt")
	if err := c.Set(key, stored, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	stored[0] = 'X'

	first, found := c.Get(key)
	if !found {
		t.Fatal("Expected hit after set")
	}
	if !bytes.Equal(first, []byte("receipt")) {
		t.Errorf("Expected cached bytes to be immune to writer mutation, got %q", first)
	}

	first[0] = 'Y'
	second, _ := c.Get(key)
	if !bytes.Equal(second, []byte("receipt")) {
		t.Errorf("Expected cached bytes to be immune to reader mutation, got %q", second)
	}
}

func TestDiskCache_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := ReceiptKey("img", "in")

	if err := c.Set(key, []byte{0xd9, 0x01, 0x02}, 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, found := c.Get(key)
	if !found {
		t.Fatal("Expected hit after set")
	}
	if !bytes.Equal(val, []byte{0xd9, 0x01, 0x02}) {
		t.Errorf("Expected binary receipt to round trip, got %v", val)
	}

	// A new instance over the same directory sees the entry.
	again := NewDiskCache(dir, time.Hour)
	if _, found := again.Get(key); !found {
		t.Error("Expected persisted entry to survive instance recreation")
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	key := ReceiptKey("img", "in")

	if err := c.Set(key, []byte("x"), -time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, found := c.Get(key); found {
		t.Error("Expected expired entry to miss")
	}
}

func TestDiskCache_CorruptEntryDropped(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := ReceiptKey("img", "in")

	path := filepath.Join(dir, key+".receipt")
	if err := os.WriteFile(path, []byte("{corrupt"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, found := c.Get(key); found {
		t.Error("Expected corrupt entry to miss")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected corrupt entry to be removed")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	key := ReceiptKey("img", "in")

	// Seed only the disk layer.
	seed := NewDiskCache(dir, time.Hour)
	if err := seed.Set(key, []byte("receipt"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	layered := NewLayeredCache(time.Minute, dir, time.Hour)
	val, found := layered.Get(key)
	if !found || !bytes.Equal(val, []byte("receipt")) {
		t.Fatalf("Expected disk hit through layered cache, got found=%v", found)
	}

	// After promotion the memory layer alone must answer.
	if _, found := layered.memory.Get(key); !found {
		t.Error("Expected promoted entry in memory layer")
	}
}

func TestLayeredCache_SetWritesBothLayers(t *testing.T) {
	dir := t.TempDir()
	key := ReceiptKey("img", "in")

	layered := NewLayeredCache(time.Minute, dir, time.Hour)
	if err := layered.Set(key, []byte("receipt"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, found := layered.memory.Get(key); !found {
		t.Error("Expected entry in memory layer")
	}
	if _, found := NewDiskCache(dir, time.Hour).Get(key); !found {
		t.Error("Expected entry in disk layer")
	}
}
