package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/zksum/internal/guest"
	"github.com/ppiankov/zksum/internal/host"
	"github.com/ppiankov/zksum/internal/worker"
	"github.com/ppiankov/zksum/internal/zkvm"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	batchBackend string
	batchNoCache bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Prove multiple inputs from a list file in parallel",
	Long: `Batch proves multiple inputs concurrently:
- Read input file paths from a list file (one per line, # for comments)
- Prove inputs in parallel with a configurable worker count
- Persist one journal/receipt pair per input under the output directory

Each input goes through the full lifecycle independently; one failed
input does not stop the others.

Example:
  zksum batch inputs.txt
  zksum batch inputs.txt --concurrency 4 --output-dir ./proofs
  zksum batch inputs.txt --backend remote --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./zksum-proofs", "output directory for artifact pairs")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch proving")
	batchCmd.Flags().StringVar(&batchBackend, "backend", "", "proving backend (dev, notary, remote)")
	batchCmd.Flags().BoolVar(&batchNoCache, "no-cache", false, "disable receipt reuse (force fresh proofs)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	// Build configuration
	cfg := loadConfig()
	if batchBackend != "" {
		cfg.Prover.Backend = batchBackend
	}
	if batchNoCache {
		cfg.Cache.Enabled = false
	}
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}
	workers := cfg.Concurrency.Workers
	if workers <= 0 {
		workers = 1
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  zksum Batch Proving\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input list:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Backend:      %s\n", cfg.Prover.Backend)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	// Create output directory
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// One backend and one receipt store serve the whole batch; the
	// per-input orchestrators are single-use.
	backend, err := zkvm.NewBackend(cfg, guest.Image(), guest.Run)
	if err != nil {
		return err
	}
	store := newReceiptCache(cfg)

	newRunner := func() worker.Runner {
		return host.NewOrchestrator(backend, guest.Image(), host.Options{
			Cache: store,
		})
	}

	// Submission pacing only matters against a shared remote service
	rps, burst := 0.0, 0
	if strings.EqualFold(cfg.Prover.Backend, "remote") {
		rps, burst = cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize
	}
	processor := worker.NewBatchProcessor(newRunner, workers, rps, burst)

	fmt.Fprintf(os.Stderr, "⚙️  Proving inputs with %d workers...\n", workers)
	fmt.Fprintf(os.Stderr, "\n")

	results, err := processor.ProcessFile(ctx, file, outputDir)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	// Process results
	successCount := 0
	failureCount := 0
	cachedCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.InputPath, result.Error)
			continue
		}

		successCount++
		if result.Run.FromCache {
			cachedCount++
		}
		fmt.Fprintf(os.Stderr, "✓ %s → %s\n", result.InputPath, result.Run.JournalPath)
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d inputs\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Cached:    %d\n", cachedCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if failureCount > 0 {
		return fmt.Errorf("%d of %d inputs failed", failureCount, len(results))
	}
	return nil
}
