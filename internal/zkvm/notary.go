package zkvm

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"

	"github.com/ppiankov/zksum/internal/commit"
)

// NotaryBackend runs the guest in-process and signs the binding digest with
// EdDSA over the bn254 twisted Edwards curve, MiMC as the signature hash.
// A receipt attests that the holder of the notary key observed the
// execution. Verification trusts only the backend's own key, so this is
// attested execution, not a zero-knowledge proof.
type NotaryBackend struct {
	image   []byte
	imageID string
	run     GuestFunc
	key     *eddsa.PrivateKey
}

// NewNotaryBackend creates a notary backend bound to one program image. The
// signing key is loaded from keyPath, or generated there on first use.
func NewNotaryBackend(image []byte, run GuestFunc, keyPath string) (*NotaryBackend, error) {
	key, err := loadOrCreateKey(keyPath)
	if err != nil {
		return nil, fmt.Errorf("notary key: %w", err)
	}
	return &NotaryBackend{
		image:   append([]byte(nil), image...),
		imageID: commit.Digest(image),
		run:     run,
		key:     key,
	}, nil
}

// loadOrCreateKey reads the signing key, generating and persisting a fresh
// one (0600, parent directory created) when none exists yet.
func loadOrCreateKey(path string) (*eddsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		var key eddsa.PrivateKey
		if _, err := key.SetBytes(data); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return &key, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	key, err := eddsa.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create key directory: %w", err)
		}
	}
	if err := os.WriteFile(path, key.Bytes(), 0600); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	return key, nil
}

// sealMessage reduces the binding digest into the bn254 scalar field so it
// forms one valid MiMC block for signing.
func sealMessage(imageID string, journal []byte) []byte {
	sum := bindingDigest(imageID, journal)
	var el fr.Element
	el.SetBigInt(new(big.Int).SetBytes(sum[:]))
	msg := el.Bytes()
	return msg[:]
}

// Name returns the backend name
func (b *NotaryBackend) Name() string {
	return "notary"
}

// IsAvailable checks if the backend can prove
func (b *NotaryBackend) IsAvailable(ctx context.Context) bool {
	return b.run != nil && b.key != nil
}

// Prove executes the guest and signs the journal it commits.
func (b *NotaryBackend) Prove(ctx context.Context, image, input []byte) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProve, err)
	}
	if commit.Digest(image) != b.imageID {
		return nil, fmt.Errorf("%w: unknown program image %s", ErrProve, commit.Digest(image))
	}

	journal, err := b.run(input)
	if err != nil {
		return nil, fmt.Errorf("%w: guest execution: %v", ErrProve, err)
	}

	sig, err := b.key.Sign(sealMessage(b.imageID, journal), mimc.NewMiMC())
	if err != nil {
		return nil, fmt.Errorf("%w: sign journal: %v", ErrProve, err)
	}

	return &Receipt{
		Version: receiptVersion,
		Backend: b.Name(),
		ImageID: b.imageID,
		Journal: journal,
		PubKey:  b.key.PublicKey.Bytes(),
		Seal:    sig,
	}, nil
}

// Verify checks the image binding and the EdDSA seal under the notary's own
// key. Receipts sealed by any other key do not verify.
func (b *NotaryBackend) Verify(ctx context.Context, receipt *Receipt, image []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrVerify, err)
	}
	if receipt.Backend != b.Name() {
		return false, nil
	}
	if receipt.ImageID != commit.Digest(image) {
		return false, nil
	}
	if !bytes.Equal(receipt.PubKey, b.key.PublicKey.Bytes()) {
		return false, nil
	}

	var pub eddsa.PublicKey
	if _, err := pub.SetBytes(receipt.PubKey); err != nil {
		return false, nil
	}
	ok, err := pub.Verify(receipt.Seal, sealMessage(receipt.ImageID, receipt.Journal), mimc.NewMiMC())
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrVerify, err)
	}
	return ok, nil
}
