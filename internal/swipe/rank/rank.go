package rank

import (
	"sort"

	"github.com/featherkey/swipekit/internal/swipe/score"
)

// Rank orders candidate results best-first: CombinedScore descending,
// ties broken by FrequencyScore descending and then by word ascending so
// equal-scoring runs stay reproducible. The slice is sorted in place and
// truncated to topN (topN <= 0 keeps everything). Empty in, empty out.
func Rank(results []score.CandidateResult, topN int) []score.CandidateResult {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.CombinedScore != b.CombinedScore {
			return a.CombinedScore > b.CombinedScore
		}
		if a.FrequencyScore != b.FrequencyScore {
			return a.FrequencyScore > b.FrequencyScore
		}
		return a.Word < b.Word
	})
	if topN > 0 && len(results) > topN {
		results = results[:topN]
	}
	return results
}
