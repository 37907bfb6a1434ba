// Package zkvm defines the proving collaborator contract and its receipt
// envelope. The host never inspects how a backend seals an execution; it
// hands over image and input, gets a receipt, and asks the backend whether
// that receipt verifies against the expected image. Backends are the only
// code that understands seal internals.
package zkvm

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var (
	// ErrProve indicates the collaborator failed to produce a receipt.
	ErrProve = errors.New("prover failed")

	// ErrVerify indicates a receipt that fails verification or a
	// collaborator error while verifying.
	ErrVerify = errors.New("receipt verification failed")
)

// GuestFunc executes the guest program on an input and returns the canonical
// journal bytes it commits. In-process backends run the guest through this.
type GuestFunc func(input []byte) ([]byte, error)

// Prover produces receipts for executions of a program image.
type Prover interface {
	// Name returns the backend name
	Name() string

	// Prove executes the program on input and returns a sealed receipt
	Prove(ctx context.Context, image, input []byte) (*Receipt, error)

	// IsAvailable checks if the backend can prove right now
	IsAvailable(ctx context.Context) bool
}

// Verifier checks that a receipt attests an execution of the expected image.
type Verifier interface {
	Verify(ctx context.Context, receipt *Receipt, image []byte) (bool, error)
}

// Backend is a proving collaborator: both halves of the contract.
type Backend interface {
	Prover
	Verifier
}

const receiptVersion = 1

// Receipt binds a program image and one execution's committed journal to a
// backend seal. Outside this package it is opaque: callers read the journal
// bytes and otherwise pass receipts around whole.
type Receipt struct {
	Version int    `cbor:"version"`
	Backend string `cbor:"backend"`
	ImageID string `cbor:"imageId"`
	Journal []byte `cbor:"journal"`
	PubKey  []byte `cbor:"pubKey,omitempty"`
	Seal    []byte `cbor:"seal"`
}

// JournalBytes returns the committed journal bytes.
func (r *Receipt) JournalBytes() []byte {
	return r.Journal
}

func (r *Receipt) validate() error {
	if r.Version != receiptVersion {
		return fmt.Errorf("unsupported receipt version %d", r.Version)
	}
	if r.Backend == "" {
		return errors.New("missing backend name")
	}
	if r.ImageID == "" {
		return errors.New("missing image id")
	}
	if len(r.Journal) == 0 {
		return errors.New("missing journal")
	}
	if len(r.Seal) == 0 {
		return errors.New("missing seal")
	}
	return nil
}

// EncodeReceipt renders a receipt in its opaque on-disk form (CBOR).
func EncodeReceipt(r *Receipt) ([]byte, error) {
	data, err := cbor.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode receipt: %w", err)
	}
	return data, nil
}

// DecodeReceipt parses an on-disk receipt. Unreadable or structurally
// incomplete receipts can never verify, so failures carry ErrVerify.
func DecodeReceipt(data []byte) (*Receipt, error) {
	var r Receipt
	if err := cbor.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: decode receipt: %v", ErrVerify, err)
	}
	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVerify, err)
	}
	return &r, nil
}

// bindingDigest commits the image identity and journal bytes a seal covers.
// The zero byte separates the fields so neither can absorb the other.
func bindingDigest(imageID string, journal []byte) [sha256.Size]byte {
	h := sha256.New()
	h.Write([]byte(imageID))
	h.Write([]byte{0x00})
	h.Write(journal)
	var out [sha256.Size]byte
	copy(out[:], h.Sum(nil))
	return out
}
