package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/zksum/internal/guest"
	"github.com/ppiankov/zksum/internal/model"
	"github.com/ppiankov/zksum/internal/zkvm"
)

var (
	verifyJournal string
	verifyReceipt string
	verifyBackend string
	verifyTimeout time.Duration
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a persisted journal/receipt pair",
	Long: `Verify re-checks a previously persisted artifact pair:
- the receipt must verify against this binary's program image
- the journal file must match the receipt's committed journal, byte for
  byte, after program-hash finalization

The backend is taken from the receipt itself unless --backend forces one.

Example:
  zksum verify --journal article.journal.json --proof article.receipt.bin
  zksum verify --journal a.json --proof a.bin --backend remote`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&verifyJournal, "journal", "", "journal file to check")
	verifyCmd.Flags().StringVar(&verifyReceipt, "proof", "", "receipt file to verify")
	verifyCmd.Flags().StringVar(&verifyBackend, "backend", "", "force a verification backend (default: the receipt's)")
	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", 2*time.Minute, "verification timeout")

	_ = verifyCmd.MarkFlagRequired("journal")
	_ = verifyCmd.MarkFlagRequired("proof")
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
	defer cancel()

	sealed, err := os.ReadFile(verifyReceipt)
	if err != nil {
		return fmt.Errorf("read receipt: %w", err)
	}
	receipt, err := zkvm.DecodeReceipt(sealed)
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}

	cfg := loadConfig()
	cfg.Prover.Backend = receipt.Backend
	if verifyBackend != "" {
		cfg.Prover.Backend = verifyBackend
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Receipt backend: %s\n", receipt.Backend)
		fmt.Fprintf(os.Stderr, "Verifying with: %s\n", cfg.Prover.Backend)
		fmt.Fprintln(os.Stderr)
	}

	backend, err := zkvm.NewBackend(cfg, guest.Image(), guest.Run)
	if err != nil {
		return err
	}

	ok, err := backend.Verify(ctx, receipt, guest.Image())
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("verify failed: receipt does not attest the expected program image")
	}

	// The journal file must be the finalized form of what the receipt
	// committed: same hashes and keywords, program hash filled in.
	journal, err := model.DecodeJournal(receipt.JournalBytes())
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}
	journal.ProgramHash = guest.ImageID()

	want, err := journal.Encode()
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}
	got, err := os.ReadFile(verifyJournal)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}
	if !bytes.Equal(bytes.TrimSuffix(got, []byte("\n")), want) {
		return fmt.Errorf("verify failed: journal file does not match the receipt's commitments")
	}

	fmt.Printf("✓ Receipt verified (backend: %s)\n", receipt.Backend)
	fmt.Printf("✓ Journal matches the committed execution\n")
	fmt.Printf("Program:  %s\n", journal.ProgramHash)
	fmt.Printf("Input:    %s\n", journal.InputHash)
	fmt.Printf("Output:   %s\n", journal.OutputHash)
	fmt.Printf("Keywords: %s\n", formatKeywords(journal.Keywords))

	return nil
}
