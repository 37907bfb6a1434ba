package zkvm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ppiankov/zksum/internal/commit"
)

// Proving service wire format. Byte fields travel base64-encoded per
// encoding/json convention.
type proveRequest struct {
	ImageID string `json:"imageId"`
	Image   []byte `json:"image"`
	Input   []byte `json:"input"`
}

type proveAck struct {
	SessionID string `json:"sessionId"`
}

type sessionStatus struct {
	Status  string `json:"status"`
	Receipt []byte `json:"receipt,omitempty"`
	Error   string `json:"error,omitempty"`
}

type verifyRequest struct {
	Receipt []byte `json:"receipt"`
	Image   []byte `json:"image"`
}

type verifyResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

type remoteError struct {
	Error string `json:"error"`
}

// Session states reported by the proving service.
const (
	sessionPending   = "pending"
	sessionRunning   = "running"
	sessionSucceeded = "succeeded"
	sessionFailed    = "failed"
)

// RemoteBackend delegates proving to an external service. Submission opens a
// proving session; the backend then polls, paced by a rate limiter, until
// the session reaches a terminal state or the context ends.
type RemoteBackend struct {
	baseURL    string
	httpClient *http.Client
	poller     *rate.Limiter
}

// NewRemoteBackend creates a client for the proving service at baseURL.
func NewRemoteBackend(baseURL string, timeout time.Duration, pollsPerSecond float64, burst int) *RemoteBackend {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if pollsPerSecond <= 0 {
		pollsPerSecond = 2.0
	}
	if burst < 1 {
		burst = 1
	}

	return &RemoteBackend{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		poller:     rate.NewLimiter(rate.Limit(pollsPerSecond), burst),
	}
}

// Name returns the backend name
func (b *RemoteBackend) Name() string {
	return "remote"
}

// IsAvailable checks if the proving service is reachable
func (b *RemoteBackend) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/v1/health", nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Proving service availability check failed (request creation): %v\n", err)
		return false
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Proving service availability check failed (connection to %s): %v\n", b.baseURL, err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Proving service availability check failed (HTTP %d from %s)\n", resp.StatusCode, b.baseURL)
		return false
	}

	return true
}

// Prove submits the image and input, then polls the session to completion.
func (b *RemoteBackend) Prove(ctx context.Context, image, input []byte) (*Receipt, error) {
	ack, err := b.submit(ctx, image, input)
	if err != nil {
		return nil, fmt.Errorf("%w: submit: %v", ErrProve, err)
	}

	for {
		if err := b.poller.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProve, err)
		}

		status, err := b.session(ctx, ack.SessionID)
		if err != nil {
			return nil, fmt.Errorf("%w: poll session %s: %v", ErrProve, ack.SessionID, err)
		}

		switch status.Status {
		case sessionSucceeded:
			receipt, err := DecodeReceipt(status.Receipt)
			if err != nil {
				return nil, fmt.Errorf("%w: service returned unreadable receipt: %v", ErrProve, err)
			}
			return receipt, nil

		case sessionFailed:
			return nil, fmt.Errorf("%w: service reported failure: %s", ErrProve, status.Error)

		case sessionPending, sessionRunning:
			// Not terminal yet; keep polling.

		default:
			return nil, fmt.Errorf("%w: unknown session status %q", ErrProve, status.Status)
		}
	}
}

// Verify asks the service to check the receipt against the expected image.
func (b *RemoteBackend) Verify(ctx context.Context, receipt *Receipt, image []byte) (bool, error) {
	if receipt.Backend != b.Name() {
		return false, nil
	}

	data, err := EncodeReceipt(receipt)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrVerify, err)
	}

	var resp verifyResponse
	if err := b.postJSON(ctx, "/v1/verify", verifyRequest{Receipt: data, Image: image}, &resp); err != nil {
		return false, fmt.Errorf("%w: %v", ErrVerify, err)
	}
	if resp.Error != "" {
		return false, fmt.Errorf("%w: service reported: %s", ErrVerify, resp.Error)
	}
	return resp.Valid, nil
}

func (b *RemoteBackend) submit(ctx context.Context, image, input []byte) (*proveAck, error) {
	req := proveRequest{
		ImageID: commit.Digest(image),
		Image:   image,
		Input:   input,
	}

	var ack proveAck
	if err := b.postJSON(ctx, "/v1/sessions", req, &ack); err != nil {
		return nil, err
	}
	if ack.SessionID == "" {
		return nil, fmt.Errorf("service returned no session id")
	}
	return &ack, nil
}

func (b *RemoteBackend) session(ctx context.Context, id string) (*sessionStatus, error) {
	var status sessionStatus
	if err := b.getJSON(ctx, "/v1/sessions/"+url.PathEscape(id), &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (b *RemoteBackend) postJSON(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return b.do(req, out)
}

func (b *RemoteBackend) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return b.do(req, out)
}

func (b *RemoteBackend) do(req *http.Request, out interface{}) error {
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		var apiErr remoteError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
