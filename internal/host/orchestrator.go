// Package host drives the proving lifecycle: load an input, obtain a receipt
// from the proving backend, verify it, extract and finalize the journal, and
// persist the journal/receipt pair. Nothing is ever written for a receipt
// that did not verify.
package host

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/ppiankov/zksum/internal/cache"
	"github.com/ppiankov/zksum/internal/commit"
	"github.com/ppiankov/zksum/internal/model"
	"github.com/ppiankov/zksum/internal/text"
	"github.com/ppiankov/zksum/internal/zkvm"
)

// ErrIO indicates artifact input/output failure.
var ErrIO = errors.New("artifact io failed")

// State names a stage of the proving lifecycle.
type State string

// Lifecycle states, in run order. Failed is terminal and reachable from any
// stage.
const (
	StateIdle             State = "idle"
	StateInputLoaded      State = "input_loaded"
	StateProving          State = "proving"
	StateProved           State = "proved"
	StateVerified         State = "verified"
	StateJournalExtracted State = "journal_extracted"
	StateFinalized        State = "finalized"
	StatePersisted        State = "persisted"
	StateFailed           State = "failed"
)

// Options configures an orchestrator.
type Options struct {
	// Cache enables receipt reuse for already-proven inputs (nil disables)
	Cache cache.Cache

	// Verbose prints stage progress to stderr
	Verbose bool
}

// Orchestrator runs one input through the lifecycle. It is single-use and
// not safe for concurrent use: every run gets its own orchestrator.
type Orchestrator struct {
	backend zkvm.Backend
	image   []byte
	imageID string
	store   cache.Cache
	verbose bool

	state   State
	failure error
}

// NewOrchestrator creates an orchestrator bound to a backend and a program
// image.
func NewOrchestrator(backend zkvm.Backend, image []byte, opts Options) *Orchestrator {
	return &Orchestrator{
		backend: backend,
		image:   append([]byte(nil), image...),
		imageID: commit.Digest(image),
		store:   opts.Cache,
		verbose: opts.Verbose,
		state:   StateIdle,
	}
}

// State reports the current lifecycle state.
func (o *Orchestrator) State() State {
	return o.state
}

// Failure reports why the run failed; nil if it has not.
func (o *Orchestrator) Failure() error {
	return o.failure
}

// fail marks the orchestrator failed and returns the reason.
func (o *Orchestrator) fail(err error) error {
	o.state = StateFailed
	o.failure = err
	return err
}

// RunResult summarizes a persisted run.
type RunResult struct {
	Journal     *model.Journal
	JournalPath string
	ReceiptPath string
	ImageID     string
	FromCache   bool
	Duration    time.Duration
}

// Run executes the full lifecycle for one input file. All errors are fatal
// to the run: there are no retries, and a failed run persists nothing.
func (o *Orchestrator) Run(ctx context.Context, inputPath, journalPath, receiptPath string) (*RunResult, error) {
	if o.state != StateIdle {
		return nil, fmt.Errorf("orchestrator already used (state %s)", o.state)
	}
	start := time.Now()

	// 1. Load input
	if o.verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Loading input: %s\n", inputPath)
	}
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, o.fail(fmt.Errorf("%w: read input: %v", ErrIO, err))
	}
	// The guest would reject this anyway; checking here names the failure
	// precisely and skips a pointless proving round trip.
	if !utf8.Valid(raw) {
		return nil, o.fail(fmt.Errorf("input %s: %w", inputPath, text.ErrInvalidEncoding))
	}
	o.state = StateInputLoaded

	// 2. Obtain a receipt: verified cache entry or fresh proof
	key := cache.ReceiptKey(o.imageID, commit.InputDigest(raw))
	receipt, fromCache := o.cachedReceipt(ctx, key)
	if receipt == nil {
		o.state = StateProving
		if o.verbose {
			fmt.Fprintf(os.Stderr, "⚙️  Proving via %s backend...\n", o.backend.Name())
		}
		if !o.backend.IsAvailable(ctx) {
			return nil, o.fail(fmt.Errorf("%w: backend %s is not available", zkvm.ErrProve, o.backend.Name()))
		}
		receipt, err = o.backend.Prove(ctx, o.image, raw)
		if err != nil {
			return nil, o.fail(err)
		}
	}
	o.state = StateProved

	// 3. Verification gate: nothing downstream happens without this
	if o.verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Verifying receipt...\n")
	}
	ok, err := o.backend.Verify(ctx, receipt, o.image)
	if err != nil {
		return nil, o.fail(err)
	}
	if !ok {
		return nil, o.fail(fmt.Errorf("%w: receipt does not attest the expected program image", zkvm.ErrVerify))
	}
	o.state = StateVerified

	// 4. Extract the committed journal
	journal, err := model.DecodeJournal(receipt.JournalBytes())
	if err != nil {
		return nil, o.fail(err)
	}
	o.state = StateJournalExtracted

	// 5. Finalize: the host's locally computed image identity replaces
	// whatever the guest committed, placeholder or not.
	journal.ProgramHash = o.imageID
	o.state = StateFinalized
	if o.verbose {
		fmt.Fprintf(os.Stderr, "✓ Journal finalized (programHash %s)\n", journal.ProgramHash)
	}

	// 6. Persist the pair; cache the verified receipt for reuse
	sealed, err := zkvm.EncodeReceipt(receipt)
	if err != nil {
		return nil, o.fail(fmt.Errorf("%w: %v", ErrIO, err))
	}
	if o.store != nil && !fromCache {
		if err := o.store.Set(key, sealed, 0); err != nil && o.verbose {
			fmt.Fprintf(os.Stderr, "Warning: receipt cache write failed: %v\n", err)
		}
	}

	data, err := journal.Encode()
	if err != nil {
		return nil, o.fail(fmt.Errorf("encode journal: %w", err))
	}
	data = append(data, '\n')

	if err := persistArtifacts(journalPath, data, receiptPath, sealed); err != nil {
		return nil, o.fail(fmt.Errorf("%w: %v", ErrIO, err))
	}
	o.state = StatePersisted
	if o.verbose {
		fmt.Fprintf(os.Stderr, "✓ Wrote journal: %s\n", journalPath)
		fmt.Fprintf(os.Stderr, "✓ Wrote receipt: %s\n", receiptPath)
	}

	return &RunResult{
		Journal:     journal,
		JournalPath: journalPath,
		ReceiptPath: receiptPath,
		ImageID:     o.imageID,
		FromCache:   fromCache,
		Duration:    time.Since(start),
	}, nil
}

// cachedReceipt returns a stored receipt only if it still verifies against
// the expected image. Corrupt or stale entries are evicted and treated as
// misses, so a rotten cache degrades to a fresh proof, never to a failure.
func (o *Orchestrator) cachedReceipt(ctx context.Context, key string) (*zkvm.Receipt, bool) {
	if o.store == nil {
		return nil, false
	}
	data, found := o.store.Get(key)
	if !found {
		return nil, false
	}

	receipt, err := zkvm.DecodeReceipt(data)
	if err != nil {
		_ = o.store.Delete(key)
		return nil, false
	}
	ok, err := o.backend.Verify(ctx, receipt, o.image)
	if err != nil || !ok {
		_ = o.store.Delete(key)
		return nil, false
	}

	if o.verbose {
		fmt.Fprintf(os.Stderr, "✓ Reusing verified receipt from cache\n")
	}
	return receipt, true
}
