package zkvm

import (
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/zksum/internal/model"
)

// NewBackend creates the proving backend named in configuration, bound to
// the given program image and guest entrypoint.
func NewBackend(cfg *model.Config, image []byte, run GuestFunc) (Backend, error) {
	backend := strings.ToLower(cfg.Prover.Backend)

	switch backend {
	case "dev", "":
		return NewDevBackend(image, run), nil

	case "notary":
		return NewNotaryBackend(image, run, cfg.NotaryKeyPath())

	case "remote":
		if cfg.Prover.Remote.BaseURL == "" {
			return nil, fmt.Errorf("%w: remote backend requires prover.remote.base_url", model.ErrConfig)
		}
		return NewRemoteBackend(
			cfg.Prover.Remote.BaseURL,
			time.Duration(cfg.Prover.Remote.Timeout)*time.Second,
			cfg.RateLimiting.RequestsPerSecond,
			cfg.RateLimiting.BurstSize,
		), nil

	default:
		return nil, fmt.Errorf("%w: unknown prover backend %q (supported: dev, notary, remote)", model.ErrConfig, cfg.Prover.Backend)
	}
}
