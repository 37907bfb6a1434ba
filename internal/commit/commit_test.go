package commit

import (
	"strings"
	"testing"

	"github.com/ppiankov/zksum/internal/model"
)

func TestDigest_KnownVectors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{
			"empty input",
			[]byte{},
			"sha256:e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			"abc",
			[]byte("abc"),
			"sha256:ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Digest(tt.input)
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestDigest_Format(t *testing.T) {
	got := Digest([]byte("anything"))

	if !strings.HasPrefix(got, "sha256:") {
		t.Errorf("Expected sha256: prefix, got %s", got)
	}
	if len(got) != len("sha256:")+64 {
		t.Errorf("Expected 64 hex chars after prefix, got %d", len(got)-len("sha256:"))
	}
	if got != strings.ToLower(got) {
		t.Errorf("Expected lowercase hex, got %s", got)
	}
}

func TestInputDigest_SensitiveToRawBytes(t *testing.T) {
	a := InputDigest([]byte("Dog"))
	b := InputDigest([]byte("dog"))

	if a == b {
		t.Error("Expected different digests for different raw bytes")
	}
}

func TestOutputDigest_CommitsToOrder(t *testing.T) {
	ab := []model.Keyword{{Word: "a", Count: 1}, {Word: "b", Count: 1}}
	ba := []model.Keyword{{Word: "b", Count: 1}, {Word: "a", Count: 1}}

	da, err := OutputDigest(ab)
	if err != nil {
		t.Fatalf("OutputDigest failed: %v", err)
	}
	db, err := OutputDigest(ba)
	if err != nil {
		t.Fatalf("OutputDigest failed: %v", err)
	}

	if da == db {
		t.Error("Expected order to change the digest")
	}
}

func TestOutputDigest_NilEqualsEmpty(t *testing.T) {
	dn, err := OutputDigest(nil)
	if err != nil {
		t.Fatalf("OutputDigest failed: %v", err)
	}
	de, err := OutputDigest([]model.Keyword{})
	if err != nil {
		t.Fatalf("OutputDigest failed: %v", err)
	}

	if dn != de {
		t.Errorf("Expected nil and empty lists to digest equally, got %s vs %s", dn, de)
	}
	// An empty list canonically encodes as the two-byte text [].
	if de != Digest([]byte("[]")) {
		t.Errorf("Expected digest of literal [], got %s", de)
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"real digest", Digest([]byte("x")), true},
		{"empty", "", false},
		{"no prefix", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", false},
		{"wrong prefix", "sha512:e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", false},
		{"short body", "sha256:abcd", false},
		{"non-hex body", "sha256:" + strings.Repeat("zz", 32), false},
		{"uppercase body", "sha256:" + strings.Repeat("AB", 32), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Valid(tt.in); got != tt.want {
				t.Errorf("Valid(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
