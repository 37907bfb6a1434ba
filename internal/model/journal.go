package model

import (
	"errors"
	"fmt"

	"github.com/ppiankov/zksum/internal/canon"
)

// ProgramHashPlaceholder is the sentinel the guest commits in place of its
// own program hash. A program cannot know its own image ID from the inside,
// so the host replaces this value after verification.
const ProgramHashPlaceholder = "<FILLED_BY_HOST>"

// MaxKeywords is the cap on ranked keywords a journal may carry.
const MaxKeywords = 5

// ErrJournalDecode indicates committed bytes that are not a well-formed
// journal.
var ErrJournalDecode = errors.New("journal decode failed")

// Keyword is a single ranked summary entry.
type Keyword struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Journal is the public record a proven execution commits to. Field order is
// the canonical encoding order and must not change.
type Journal struct {
	ProgramHash string    `json:"programHash"`
	InputHash   string    `json:"inputHash"`
	OutputHash  string    `json:"outputHash"`
	Keywords    []Keyword `json:"keywords"`
}

// Validate checks structural well-formedness: all three hashes present, a
// keyword list that exists (it may be empty, never absent) and respects the
// cap, and no empty or non-positive entries.
func (j *Journal) Validate() error {
	if j.ProgramHash == "" {
		return errors.New("missing programHash")
	}
	if j.InputHash == "" {
		return errors.New("missing inputHash")
	}
	if j.OutputHash == "" {
		return errors.New("missing outputHash")
	}
	if j.Keywords == nil {
		return errors.New("missing keywords list")
	}
	if len(j.Keywords) > MaxKeywords {
		return fmt.Errorf("too many keywords: %d (max %d)", len(j.Keywords), MaxKeywords)
	}
	for i, kw := range j.Keywords {
		if kw.Word == "" {
			return fmt.Errorf("keyword %d: empty word", i)
		}
		if kw.Count < 1 {
			return fmt.Errorf("keyword %q: count %d (must be >= 1)", kw.Word, kw.Count)
		}
	}
	return nil
}

// Encode renders the journal in canonical form. These are the exact bytes
// commitments are computed over.
func (j *Journal) Encode() ([]byte, error) {
	if j.Keywords == nil {
		return nil, fmt.Errorf("encode journal: nil keywords list")
	}
	return canon.Marshal(j)
}

// DecodeJournal parses and validates committed journal bytes. Any failure is
// reported as ErrJournalDecode.
func DecodeJournal(data []byte) (*Journal, error) {
	var j Journal
	if err := canon.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJournalDecode, err)
	}
	if err := j.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJournalDecode, err)
	}
	return &j, nil
}
