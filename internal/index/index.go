// Package index builds the immutable TF-IDF index over a document corpus:
// the ordered vocabulary, the per-document term-frequency tables, the
// corpus-wide document-frequency table, and one cached weighted vector per
// document. A single Build pass derives all four from the same token
// counts, so the tables cannot drift out of sync.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vectorspace/docsearch/internal/corpus"
	"github.com/vectorspace/docsearch/internal/tokenizer"
	"github.com/vectorspace/docsearch/internal/vector"
)

// DocumentEntry holds the statistics retained for one indexed document.
// The raw text is consumed during Build and discarded.
type DocumentEntry struct {
	ID     string
	Counts map[string]int // term frequency over vocabulary terms; absent means zero
	Vector []float64      // cached TF-IDF vector in vocabulary order
}

// Index is the immutable result of one Build call. Nothing mutates it
// after Build returns, so queries may share it freely across goroutines,
// and multiple independent indexes can coexist in one process.
type Index struct {
	vocab   *Vocabulary
	docFreq []int // per vocabulary position; always >= 1
	docs    []DocumentEntry
	ids     map[string]struct{}
}

// Build tokenizes every document once, derives the vocabulary (union of
// all tokens minus stop words, sorted), and fills the term-frequency and
// document-frequency tables from those same counts. Documents are counted
// in parallel, each writing its own slot; the vocabulary order is
// finalized before any vector is encoded.
func Build(ctx context.Context, docs []corpus.Document, stopWords map[string]struct{}) (*Index, error) {
	start := time.Now()

	counts := make([]map[string]int, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			counts[i] = tokenizer.Count(doc.Text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("tokenizing corpus: %w", err)
	}

	termSet := make(map[string]struct{})
	for _, c := range counts {
		for term := range c {
			termSet[term] = struct{}{}
		}
	}
	vocab := NewVocabulary(termSet, stopWords)

	// Both frequency tables come from the same counts, so a term's
	// document frequency equals the number of documents whose term
	// frequency for it is nonzero, and every vocabulary term has DF >= 1.
	docFreq := make([]int, vocab.Len())
	entries := make([]DocumentEntry, len(docs))
	ids := make(map[string]struct{}, len(docs))
	for i, doc := range docs {
		kept := make(map[string]int)
		for term, n := range counts[i] {
			pos, ok := vocab.Position(term)
			if !ok {
				continue
			}
			kept[term] = n
			docFreq[pos]++
		}
		entries[i] = DocumentEntry{ID: doc.ID, Counts: kept}
		ids[doc.ID] = struct{}{}
	}

	numDocs := len(docs)
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entries[i].Vector = vector.Encode(entries[i].Counts, vocab.Terms(), docFreq, numDocs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("encoding document vectors: %w", err)
	}

	slog.Info("index built",
		"docs", numDocs,
		"vocabulary", vocab.Len(),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return &Index{vocab: vocab, docFreq: docFreq, docs: entries, ids: ids}, nil
}

// NumDocs returns the number of indexed documents.
func (ix *Index) NumDocs() int { return len(ix.docs) }

// Vocabulary returns the index's term ordering.
func (ix *Index) Vocabulary() *Vocabulary { return ix.vocab }

// VocabularySize returns the number of vocabulary terms.
func (ix *Index) VocabularySize() int { return ix.vocab.Len() }

// DocumentFrequency returns the number of documents containing term at
// least once, or zero for terms outside the vocabulary.
func (ix *Index) DocumentFrequency(term string) int {
	pos, ok := ix.vocab.Position(term)
	if !ok {
		return 0
	}
	return ix.docFreq[pos]
}

// Documents returns the indexed document entries with their cached
// vectors. The returned slice is shared; callers must not modify it.
func (ix *Index) Documents() []DocumentEntry { return ix.docs }

// HasDocument reports whether id was part of the indexed corpus.
func (ix *Index) HasDocument(id string) bool {
	_, ok := ix.ids[id]
	return ok
}

// QueryVector projects query text into the index's vector space. Terms
// outside the vocabulary contribute no dimension.
func (ix *Index) QueryVector(text string) []float64 {
	counts := make(map[string]int)
	for tok := range tokenizer.Tokens(text) {
		if ix.vocab.Contains(tok) {
			counts[tok]++
		}
	}
	return vector.Encode(counts, ix.vocab.Terms(), ix.docFreq, len(ix.docs))
}

// QueryTerms returns the query's tokens that belong to the vocabulary, in
// their original order with duplicates kept.
func (ix *Index) QueryTerms(text string) []string {
	terms := make([]string, 0)
	for tok := range tokenizer.Tokens(text) {
		if ix.vocab.Contains(tok) {
			terms = append(terms, tok)
		}
	}
	return terms
}
