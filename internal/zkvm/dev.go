package zkvm

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ppiankov/zksum/internal/commit"
)

// DevBackend runs the guest in-process and seals receipts with a bare
// structural digest. Its receipts prove nothing to a third party; the
// backend exists so the whole prove/verify/persist flow can run without a
// proving system, the way zkVM toolchains ship a dev mode.
type DevBackend struct {
	image   []byte
	imageID string
	run     GuestFunc
}

// NewDevBackend creates a dev backend bound to one program image.
func NewDevBackend(image []byte, run GuestFunc) *DevBackend {
	return &DevBackend{
		image:   append([]byte(nil), image...),
		imageID: commit.Digest(image),
		run:     run,
	}
}

// Name returns the backend name
func (b *DevBackend) Name() string {
	return "dev"
}

// IsAvailable checks if the backend can prove
func (b *DevBackend) IsAvailable(ctx context.Context) bool {
	return b.run != nil
}

// Prove executes the guest and seals the journal it commits.
func (b *DevBackend) Prove(ctx context.Context, image, input []byte) (*Receipt, error) {
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

	seal := bindingDigest(b.imageID, journal)
	return &Receipt{
		Version: receiptVersion,
		Backend: b.Name(),
		ImageID: b.imageID,
		Journal: journal,
		Seal:    seal[:],
	}, nil
}

// Verify checks the structural seal and the image binding.
func (b *DevBackend) Verify(ctx context.Context, receipt *Receipt, image []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrVerify, err)
	}
	if receipt.Backend != b.Name() {
		return false, nil
	}
	if receipt.ImageID != commit.Digest(image) {
		return false, nil
	}
	want := bindingDigest(receipt.ImageID, receipt.Journal)
	return bytes.Equal(want[:], receipt.Seal), nil
}
