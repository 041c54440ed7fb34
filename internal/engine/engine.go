// Package engine ties the index and ranker together and retains the most
// recent ranking so callers can look results up by position. One engine
// wraps one immutable index for the life of the process; the "last
// results" value is replaced on every query.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vectorspace/docsearch/internal/index"
	"github.com/vectorspace/docsearch/internal/ranker"
	apperrors "github.com/vectorspace/docsearch/pkg/errors"
	"github.com/vectorspace/docsearch/pkg/logger"
	"github.com/vectorspace/docsearch/pkg/metrics"
)

// Engine answers queries against a built index.
type Engine struct {
	idx     *index.Index
	topK    int
	metrics *metrics.Metrics

	mu   sync.RWMutex
	last []ranker.Result
}

// New wraps idx. topK caps result lists when a query does not request its
// own limit; values <= 0 fall back to ranker.DefaultLimit. metrics may be
// nil (the console runs without a scrape endpoint).
func New(idx *index.Index, topK int, m *metrics.Metrics) *Engine {
	if topK <= 0 {
		topK = ranker.DefaultLimit
	}
	return &Engine{
		idx:     idx,
		topK:    topK,
		metrics: m,
	}
}

// Search projects query into the index's vector space, ranks the corpus,
// and retains the result list for ResultAt lookups. limit <= 0 means the
// engine's topK. Search never fails: empty input, stop-word-only input,
// and no-match queries all return an empty list.
func (e *Engine) Search(ctx context.Context, query string, limit int) []ranker.Result {
	start := time.Now()
	if limit <= 0 {
		limit = e.topK
	}
	queryVec := e.idx.QueryVector(query)
	results := ranker.Rank(queryVec, e.idx.Documents(), limit)

	e.mu.Lock()
	e.last = results
	e.mu.Unlock()

	elapsed := time.Since(start)
	logger.FromContext(ctx).Debug("query ranked",
		"query", query,
		"matches", len(results),
		"latency", elapsed.Round(time.Microsecond),
	)
	if e.metrics != nil {
		resultType := "hit"
		if len(results) == 0 {
			resultType = "zero_result"
		}
		e.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
		e.metrics.SearchLatency.Observe(elapsed.Seconds())
		e.metrics.SearchResultsCount.Observe(float64(len(results)))
	}
	return results
}

// QueryTerms returns the vocabulary terms recognized in query, in their
// original order.
func (e *Engine) QueryTerms(query string) []string {
	return e.idx.QueryTerms(query)
}

// LastResults returns the most recent ranking, or nil before the first
// query.
func (e *Engine) LastResults() []ranker.Result {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.last
}

// ResultCount returns the size of the most recent ranking.
func (e *Engine) ResultCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.last)
}

// ResultAt returns the i-th entry of the most recent ranking. Indexes
// outside [0, ResultCount()) yield ErrResultOutOfRange.
func (e *Engine) ResultAt(i int) (ranker.Result, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if i < 0 || i >= len(e.last) {
		return ranker.Result{}, fmt.Errorf("result %d of %d: %w", i, len(e.last), apperrors.ErrResultOutOfRange)
	}
	return e.last[i], nil
}

// DocCount returns the number of indexed documents.
func (e *Engine) DocCount() int { return e.idx.NumDocs() }

// VocabularySize returns the number of vocabulary terms.
func (e *Engine) VocabularySize() int { return e.idx.VocabularySize() }

// HasDocument reports whether id belongs to the indexed corpus.
func (e *Engine) HasDocument(id string) bool { return e.idx.HasDocument(id) }
