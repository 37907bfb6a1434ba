package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/zksum/internal/host"
)

// Runner executes one input through the proving lifecycle. Runners are
// single-use; the batch processor creates a fresh one per job.
type Runner interface {
	Run(ctx context.Context, inputPath, journalPath, receiptPath string) (*host.RunResult, error)
}

// proveScope is the limiter scope batch submission is paced under.
const proveScope = "prove"

// ProveJob proves one input file and persists its artifact pair.
type ProveJob struct {
	InputPath   string
	JournalPath string
	ReceiptPath string
	Runner      Runner
}

// Execute runs the proving lifecycle for the job's input.
func (j *ProveJob) Execute(ctx context.Context) Result {
	run, err := j.Runner.Run(ctx, j.InputPath, j.JournalPath, j.ReceiptPath)
	if err != nil {
		return &ProveResult{
			InputPath: j.InputPath,
			Error:     err,
		}
	}
	return &ProveResult{
		InputPath: j.InputPath,
		Run:       run,
	}
}

// ProveResult is the outcome of proving one input.
type ProveResult struct {
	InputPath string
	Run       *host.RunResult
	Error     error
}

// GetError returns the error from the prove result.
func (r *ProveResult) GetError() error {
	return r.Error
}

// BatchProcessor proves multiple inputs concurrently, optionally pacing job
// submission through a rate limiter.
type BatchProcessor struct {
	newRunner   func() Runner
	concurrency int
	limiter     *Limiter
}

// NewBatchProcessor creates a batch processor. newRunner is called once per
// input. A requestsPerSecond of zero or less disables submission pacing.
func NewBatchProcessor(newRunner func() Runner, concurrency int, requestsPerSecond float64, burst int) *BatchProcessor {
	b := &BatchProcessor{
		newRunner:   newRunner,
		concurrency: concurrency,
	}
	if requestsPerSecond > 0 {
		b.limiter = NewLimiter(requestsPerSecond, burst)
	}
	return b
}

// ProcessInputs proves the given input files concurrently, writing each
// artifact pair under outputDir. Results arrive in completion order.
func (b *BatchProcessor) ProcessInputs(ctx context.Context, inputPaths []string, outputDir string) []*ProveResult {
	if len(inputPaths) == 0 {
		return []*ProveResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	// Drain while submitting; the pool's buffers are far smaller than an
	// input list can be.
	collected := make(chan []*ProveResult, 1)
	go func() {
		out := make([]*ProveResult, 0, len(inputPaths))
		for result := range pool.Results() {
			out = append(out, result.(*ProveResult))
		}
		collected <- out
	}()

	var failed []*ProveResult
	used := make(map[string]int)
	for _, inputPath := range inputPaths {
		if b.limiter != nil {
			if err := b.limiter.Wait(ctx, proveScope); err != nil {
				failed = append(failed, &ProveResult{InputPath: inputPath, Error: err})
				continue
			}
		}

		journalPath, receiptPath := outputPaths(outputDir, inputPath, used)
		pool.Submit(&ProveJob{
			InputPath:   inputPath,
			JournalPath: journalPath,
			ReceiptPath: receiptPath,
			Runner:      b.newRunner(),
		})
	}
	pool.Done()

	return append(<-collected, failed...)
}

// ProcessFile reads input paths from a list file and proves them.
func (b *BatchProcessor) ProcessFile(ctx context.Context, listPath, outputDir string) ([]*ProveResult, error) {
	inputs, err := ReadInputList(listPath)
	if err != nil {
		return nil, fmt.Errorf("read input list: %w", err)
	}

	return b.ProcessInputs(ctx, inputs, outputDir), nil
}

// ReadInputList reads input file paths from a list file, one per line.
// Blank lines and #-comments are skipped; repeated paths are proved once.
func ReadInputList(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var inputs []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			inputs = append(inputs, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return inputs, nil
}

// outputPaths derives the journal/receipt pair for an input file,
// disambiguating repeated stems with a numeric suffix.
func outputPaths(outputDir, inputPath string, used map[string]int) (string, string) {
	stem := sanitizeStem(inputPath)
	used[stem]++
	if n := used[stem]; n > 1 {
		stem = fmt.Sprintf("%s-%d", stem, n)
	}
	return filepath.Join(outputDir, stem+".journal.json"),
		filepath.Join(outputDir, stem+".receipt.bin")
}

// sanitizeStem reduces an input path to a filename-safe stem.
func sanitizeStem(inputPath string) string {
	base := filepath.Base(inputPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "input"
	}
	return b.String()
}
