package text

import (
	"sort"

	"github.com/ppiankov/zksum/internal/model"
)

// Ranker orders tokens by frequency: count descending, then word ascending
// by byte order. Ties never depend on input order or map iteration.
type Ranker struct{}

// NewRanker creates a ranker.
func NewRanker() *Ranker {
	return &Ranker{}
}

// Rank counts tokens and returns at most model.MaxKeywords entries. The
// result is never nil: no tokens means an empty list.
func (r *Ranker) Rank(tokens []string) []model.Keyword {
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}

	words := make([]string, 0, len(counts))
	for word := range counts {
		words = append(words, word)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > model.MaxKeywords {
		words = words[:model.MaxKeywords]
	}

	keywords := make([]model.Keyword, 0, len(words))
	for _, word := range words {
		keywords = append(keywords, model.Keyword{Word: word, Count: counts[word]})
	}
	return keywords
}
