// Package text implements the deterministic tokenization and frequency
// ranking the guest program runs. Everything here must behave identically on
// every platform: the token alphabet is ASCII letters, case folding is
// byte-wise, and the stopword list is compiled into the binary.
package text

import (
	"bufio"
	"errors"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/ppiankov/zksum/internal/commit"
)

//go:embed stopwords.txt
var stopwordsRaw string

var stopwords = loadStopwords(stopwordsRaw)

// ErrInvalidEncoding indicates input that is not valid UTF-8. The protocol
// rejects such input outright rather than guessing an interpretation.
var ErrInvalidEncoding = errors.New("input is not valid UTF-8")

// loadStopwords parses the embedded list: one word per line, surrounding
// whitespace trimmed, empty lines skipped.
func loadStopwords(raw string) map[string]struct{} {
	set := make(map[string]struct{})
	scanner := bufio.NewScanner(strings.NewReader(raw))
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" {
			continue
		}
		set[word] = struct{}{}
	}
	return set
}

// StopwordCount reports the size of the embedded stopword list.
func StopwordCount() int {
	return len(stopwords)
}

// StopwordsDigest fingerprints the embedded list byte for byte. It is part
// of the program image: changing the list changes program identity.
func StopwordsDigest() string {
	return commit.Digest([]byte(stopwordsRaw))
}

// Normalizer turns raw input bytes into lowercase ASCII tokens with
// stopwords removed.
type Normalizer struct {
	stopwords map[string]struct{}
}

// NewNormalizer creates a normalizer over the embedded stopword list.
func NewNormalizer() *Normalizer {
	return &Normalizer{stopwords: stopwords}
}

// Tokens tokenizes input. Runs of ASCII letters become tokens, folded to
// lowercase byte-wise; every other byte is a delimiter, so multibyte UTF-8
// sequences split tokens rather than joining them. Token order follows
// input order.
func (n *Normalizer) Tokens(input []byte) ([]string, error) {
	if !utf8.Valid(input) {
		return nil, ErrInvalidEncoding
	}

	tokens := []string{}
	var current []byte

	flush := func() {
		if len(current) == 0 {
			return
		}
		word := string(current)
		current = current[:0]
		if _, stop := n.stopwords[word]; stop {
			return
		}
		tokens = append(tokens, word)
	}

	for _, b := range input {
		switch {
		case b >= 'a' && b <= 'z':
			current = append(current, b)
		case b >= 'A' && b <= 'Z':
			current = append(current, b+('a'-'A'))
		default:
			flush()
		}
	}
	flush()

	return tokens, nil
}
