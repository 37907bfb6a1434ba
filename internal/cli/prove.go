package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/zksum/internal/cache"
	"github.com/ppiankov/zksum/internal/guest"
	"github.com/ppiankov/zksum/internal/host"
	"github.com/ppiankov/zksum/internal/model"
	"github.com/ppiankov/zksum/internal/zkvm"
)

var (
	proveInput   string
	proveJournal string
	proveReceipt string
	proveBackend string
	noCache      bool
	proveTimeout time.Duration
)

// Receipt reuse horizons: memory covers repeated runs within one process,
// disk covers repeated invocations.
const (
	memoryCacheTTL = 30 * time.Minute
	diskCacheTTL   = 30 * 24 * time.Hour
)

// proveCmd represents the prove command
var proveCmd = &cobra.Command{
	Use:   "prove",
	Short: "Prove a summarization run and persist its journal/receipt pair",
	Long: `Prove executes the summarization program on an input file inside the
selected proving backend and persists two artifacts:
- a journal: canonical JSON commitments (program, input, output, keywords)
- a receipt: an opaque proof blob binding the journal to the program image

The receipt is verified before anything is written; a run that fails
verification leaves no artifacts behind. Inputs must be valid UTF-8.

Example:
  zksum prove --input article.txt --out article.journal.json --proof article.receipt.bin
  zksum prove --input article.txt --out a.json --proof a.bin --backend notary
  zksum prove --input article.txt --out a.json --proof a.bin --no-cache`,
	RunE: runProve,
}

func init() {
	rootCmd.AddCommand(proveCmd)

	proveCmd.Flags().StringVar(&proveInput, "input", "", "input text file (UTF-8)")
	proveCmd.Flags().StringVar(&proveJournal, "out", "", "output journal path")
	proveCmd.Flags().StringVar(&proveReceipt, "proof", "", "output receipt path")
	proveCmd.Flags().StringVar(&proveBackend, "backend", "", "proving backend (dev, notary, remote)")
	proveCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable receipt reuse (force a fresh proof)")
	proveCmd.Flags().DurationVar(&proveTimeout, "timeout", 10*time.Minute, "overall proving timeout")

	_ = proveCmd.MarkFlagRequired("input")
	_ = proveCmd.MarkFlagRequired("out")
	_ = proveCmd.MarkFlagRequired("proof")
}

func runProve(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), proveTimeout)
	defer cancel()

	// Build configuration from flags
	cfg := loadConfig()
	if proveBackend != "" {
		cfg.Prover.Backend = proveBackend
	}
	if noCache {
		cfg.Cache.Enabled = false
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Input: %s\n", proveInput)
		fmt.Fprintf(os.Stderr, "Backend: %s\n", cfg.Prover.Backend)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", proveTimeout)
		fmt.Fprintln(os.Stderr)
	}

	backend, err := zkvm.NewBackend(cfg, guest.Image(), guest.Run)
	if err != nil {
		return err
	}

	orch := host.NewOrchestrator(backend, guest.Image(), host.Options{
		Cache:   newReceiptCache(cfg),
		Verbose: verbose,
	})

	res, err := orch.Run(ctx, proveInput, proveJournal, proveReceipt)
	if err != nil {
		return fmt.Errorf("prove failed: %w", err)
	}

	// Summary goes to stdout; diagnostics stay on stderr
	fmt.Printf("Journal:  %s\n", res.JournalPath)
	fmt.Printf("Receipt:  %s\n", res.ReceiptPath)
	fmt.Printf("Program:  %s\n", res.Journal.ProgramHash)
	fmt.Printf("Keywords: %s\n", formatKeywords(res.Journal.Keywords))
	if res.FromCache {
		fmt.Printf("Reused a previously verified receipt (%.2fs)\n", res.Duration.Seconds())
	} else {
		fmt.Printf("Proved and verified in %.2fs\n", res.Duration.Seconds())
	}

	return nil
}

// newReceiptCache builds the layered receipt store, or nil when reuse is
// disabled.
func newReceiptCache(cfg *model.Config) cache.Cache {
	if !cfg.Cache.Enabled {
		return nil
	}
	return cache.NewLayeredCache(memoryCacheTTL, cfg.CacheDir(), diskCacheTTL)
}

func formatKeywords(keywords []model.Keyword) string {
	if len(keywords) == 0 {
		return "(none)"
	}
	parts := make([]string, len(keywords))
	for i, k := range keywords {
		parts[i] = fmt.Sprintf("%s(%d)", k.Word, k.Count)
	}
	return strings.Join(parts, ", ")
}
