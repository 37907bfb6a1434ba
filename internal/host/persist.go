package host

import (
	"fmt"
	"os"
	"path/filepath"
)

// persistArtifacts writes the journal/receipt pair so that both land or
// neither survives. Both payloads go to temp files in their destination
// directories first; only then are they renamed into place, receipt first.
// If the journal rename fails the already-renamed receipt is removed again.
func persistArtifacts(journalPath string, journal []byte, receiptPath string, receipt []byte) error {
	for _, p := range []string{journalPath, receiptPath} {
		if dir := filepath.Dir(p); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
		}
	}

	journalTmp, err := writeTemp(journalPath, journal)
	if err != nil {
		return fmt.Errorf("stage journal: %w", err)
	}
	receiptTmp, err := writeTemp(receiptPath, receipt)
	if err != nil {
		_ = os.Remove(journalTmp)
		return fmt.Errorf("stage receipt: %w", err)
	}

	if err := os.Rename(receiptTmp, receiptPath); err != nil {
		_ = os.Remove(journalTmp)
		_ = os.Remove(receiptTmp)
		return fmt.Errorf("write receipt: %w", err)
	}
	if err := os.Rename(journalTmp, journalPath); err != nil {
		_ = os.Remove(receiptPath)
		_ = os.Remove(journalTmp)
		return fmt.Errorf("write journal: %w", err)
	}
	return nil
}

// writeTemp writes data to a temp file next to path and returns the temp
// file's name. Temp files live in the destination directory so the final
// rename stays on one filesystem.
func writeTemp(path string, data []byte) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", err
	}
	name := f.Name()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return "", err
	}
	if err := f.Chmod(0644); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return "", err
	}
	return name, nil
}
