// Package ranker scores cached document vectors against a query vector
// and returns the best matches by cosine similarity.
package ranker

import (
	"sort"

	"github.com/vectorspace/docsearch/internal/index"
	"github.com/vectorspace/docsearch/internal/vector"
)

// DefaultLimit caps a ranking when the caller does not ask for a specific
// result count.
const DefaultLimit = 10

// Result pairs a document identifier with its cosine similarity to the
// query. Scores are in (0, 1]; zero-similarity documents never appear.
type Result struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

// Rank computes the cosine similarity of every document vector against
// queryVec, keeps matches with similarity strictly greater than zero,
// sorts them by descending score with DocID as the tie-break, and
// truncates to limit (DefaultLimit when limit <= 0). Rank never fails:
// an empty return is the valid "no matches" outcome.
func Rank(queryVec []float64, docs []index.DocumentEntry, limit int) []Result {
	if limit <= 0 {
		limit = DefaultLimit
	}
	results := make([]Result, 0)
	for _, doc := range docs {
		score := vector.Cosine(queryVec, doc.Vector)
		if score > 0 {
			results = append(results, Result{DocID: doc.ID, Score: score})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocID < results[j].DocID
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
