package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/zksum/internal/guest"
	"github.com/ppiankov/zksum/internal/model"
	"github.com/ppiankov/zksum/internal/text"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <input-file>",
	Short: "Run the summarization program locally without proving",
	Long: `Inspect executes the summarization program directly and prints the
journal it would commit, with the program hash filled in. No proof is
produced and nothing is persisted. Useful for previewing keywords and
checking stopword behavior before paying for a proof.

Example:
  zksum inspect article.txt
  zksum inspect article.txt --verbose`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	if verbose {
		norm := text.NewNormalizer()
		tokens, err := norm.Tokens(raw)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Input bytes: %d\n", len(raw))
		fmt.Fprintf(os.Stderr, "Tokens after stopword removal: %d\n", len(tokens))
		fmt.Fprintf(os.Stderr, "Stopword list: %d words\n", text.StopwordCount())
		fmt.Fprintf(os.Stderr, "Program image: %s\n", guest.ImageID())
		fmt.Fprintln(os.Stderr)
	}

	data, err := guest.Run(raw)
	if err != nil {
		return fmt.Errorf("inspect failed: %w", err)
	}

	journal, err := model.DecodeJournal(data)
	if err != nil {
		return fmt.Errorf("inspect failed: %w", err)
	}
	journal.ProgramHash = guest.ImageID()

	out, err := journal.Encode()
	if err != nil {
		return fmt.Errorf("inspect failed: %w", err)
	}

	fmt.Println(string(out))
	return nil
}
