// Package guest is the deterministic program whose execution the protocol
// commits to. Run is a pure function of its input: same bytes in, same
// journal bytes out, on every platform. The package also defines the
// program's identity, a canonical manifest of everything that determines
// Run's behavior, so the host can compute the program hash without executing
// anything.
package guest

import (
	"fmt"

	"github.com/ppiankov/zksum/internal/canon"
	"github.com/ppiankov/zksum/internal/commit"
	"github.com/ppiankov/zksum/internal/model"
	"github.com/ppiankov/zksum/internal/text"
)

const (
	// Name identifies the guest program.
	Name = "zksum-guest"

	// Version changes whenever Run's observable behavior changes.
	Version = "1.0.0"
)

// manifest pins every behavioral input of the guest. Two builds with equal
// manifests summarize identically.
type manifest struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Digest    string `json:"digest"`
	Stopwords string `json:"stopwords"`
	TopK      int    `json:"topK"`
}

var image = buildImage()

func buildImage() []byte {
	data, err := canon.Marshal(manifest{
		Name:      Name,
		Version:   Version,
		Digest:    "sha256",
		Stopwords: text.StopwordsDigest(),
		TopK:      model.MaxKeywords,
	})
	if err != nil {
		// The manifest is a fixed struct of strings and ints; encoding
		// cannot fail at runtime.
		panic(fmt.Sprintf("guest: build image manifest: %v", err))
	}
	return data
}

// Image returns the program image: the canonical manifest bytes identifying
// this guest's exact behavior.
func Image() []byte {
	out := make([]byte, len(image))
	copy(out, image)
	return out
}

// ImageID returns the program hash the host patches into finalized journals.
func ImageID() string {
	return commit.Digest(image)
}

// Run executes the summarization pipeline on raw input bytes and returns the
// canonical journal bytes the execution commits to. The committed program
// hash is the placeholder, never a self-reported identity.
func Run(input []byte) ([]byte, error) {
	normalizer := text.NewNormalizer()
	tokens, err := normalizer.Tokens(input)
	if err != nil {
		return nil, err
	}

	keywords := text.NewRanker().Rank(tokens)

	outputHash, err := commit.OutputDigest(keywords)
	if err != nil {
		return nil, fmt.Errorf("output digest: %w", err)
	}

	journal := model.Journal{
		ProgramHash: model.ProgramHashPlaceholder,
		InputHash:   commit.InputDigest(input),
		OutputHash:  outputHash,
		Keywords:    keywords,
	}
	return journal.Encode()
}
