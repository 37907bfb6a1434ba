package zkvm

import (
	"bytes"
	"errors"
	"testing"
)

func sampleReceipt() *Receipt {
	return &Receipt{
		Version: receiptVersion,
		Backend: "dev",
		ImageID: "sha256:aabb",
		Journal: []byte(`{"k":"v"}`),
		Seal:    []byte{1, 2, 3},
	}
}

func TestReceipt_EncodeDecodeRoundTrip(t *testing.T) {
	in := sampleReceipt()
	in.PubKey = []byte{9, 9}

	data, err := EncodeReceipt(in)
	if err != nil {
		t.Fatalf("EncodeReceipt failed: %v", err)
	}

	out, err := DecodeReceipt(data)
	if err != nil {
		t.Fatalf("DecodeReceipt failed: %v", err)
	}

	if out.Backend != in.Backend || out.ImageID != in.ImageID {
		t.Errorf("Metadata mismatch: %+v vs %+v", in, out)
	}
	if !bytes.Equal(out.Journal, in.Journal) {
		t.Errorf("Journal mismatch: %v vs %v", in.Journal, out.Journal)
	}
	if !bytes.Equal(out.Seal, in.Seal) || !bytes.Equal(out.PubKey, in.PubKey) {
		t.Error("Seal or public key did not round trip")
	}
}

func TestDecodeReceipt_Garbage(t *testing.T) {
	_, err := DecodeReceipt([]byte("definitely not cbor"))
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !errors.Is(err, ErrVerify) {
		t.Errorf("Expected ErrVerify, got %v", err)
	}
}

func TestDecodeReceipt_StructuralValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Receipt)
	}{
		{"wrong version", func(r *Receipt) { r.Version = 99 }},
		{"missing backend", func(r *Receipt) { r.Backend = "" }},
		{"missing image id", func(r *Receipt) { r.ImageID = "" }},
		{"missing journal", func(r *Receipt) { r.Journal = nil }},
		{"missing seal", func(r *Receipt) { r.Seal = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := sampleReceipt()
			tt.mutate(r)

			data, err := EncodeReceipt(r)
			if err != nil {
				t.Fatalf("EncodeReceipt failed: %v", err)
			}

			if _, err := DecodeReceipt(data); !errors.Is(err, ErrVerify) {
				t.Errorf("Expected ErrVerify, got %v", err)
			}
		})
	}
}

func TestBindingDigest_SeparatesFields(t *testing.T) {
	// Moving a byte across the field boundary must change the digest.
	a := bindingDigest("ab", []byte("c"))
	b := bindingDigest("a", []byte("bc"))

	if a == b {
		t.Error("Expected field boundary to be part of the commitment")
	}
}
