package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/vectorspace/docsearch/internal/corpus"
	"github.com/vectorspace/docsearch/internal/index"
	apperrors "github.com/vectorspace/docsearch/pkg/errors"
)

func newTestEngine(t *testing.T, docs []corpus.Document, stopWords map[string]struct{}) *Engine {
	t.Helper()
	ix, err := index.Build(context.Background(), docs, stopWords)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return New(ix, 10, nil)
}

func TestSearchRetainsLastResults(t *testing.T) {
	eng := newTestEngine(t, []corpus.Document{
		{ID: "doc1", Text: "cat dog"},
		{ID: "doc2", Text: "cat cat bird"},
		{ID: "doc3", Text: "bird bird bird"},
	}, map[string]struct{}{})

	results := eng.Search(context.Background(), "cat", 0)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if eng.ResultCount() != 2 {
		t.Errorf("ResultCount = %d, want 2", eng.ResultCount())
	}
	last := eng.LastResults()
	if len(last) != len(results) || last[0].DocID != results[0].DocID {
		t.Errorf("LastResults = %v, want %v", last, results)
	}

	// A new query replaces the retained list.
	eng.Search(context.Background(), "unicorn", 0)
	if eng.ResultCount() != 0 {
		t.Errorf("ResultCount after no-match query = %d, want 0", eng.ResultCount())
	}
}

func TestResultAt(t *testing.T) {
	eng := newTestEngine(t, []corpus.Document{
		{ID: "doc1", Text: "cat dog"},
		{ID: "doc2", Text: "bird"},
	}, map[string]struct{}{})

	eng.Search(context.Background(), "cat", 0)
	if eng.ResultCount() != 1 {
		t.Fatalf("ResultCount = %d, want 1", eng.ResultCount())
	}

	r, err := eng.ResultAt(0)
	if err != nil {
		t.Fatalf("ResultAt(0): %v", err)
	}
	if r.DocID != "doc1" {
		t.Errorf("ResultAt(0).DocID = %s, want doc1", r.DocID)
	}

	if _, err := eng.ResultAt(1); !errors.Is(err, apperrors.ErrResultOutOfRange) {
		t.Errorf("ResultAt(1) error = %v, want ErrResultOutOfRange", err)
	}
	if _, err := eng.ResultAt(-1); !errors.Is(err, apperrors.ErrResultOutOfRange) {
		t.Errorf("ResultAt(-1) error = %v, want ErrResultOutOfRange", err)
	}
}

func TestResultAtBeforeAnyQuery(t *testing.T) {
	eng := newTestEngine(t, []corpus.Document{{ID: "doc1", Text: "cat"}}, map[string]struct{}{})
	if _, err := eng.ResultAt(0); !errors.Is(err, apperrors.ErrResultOutOfRange) {
		t.Errorf("ResultAt before any query: error = %v, want ErrResultOutOfRange", err)
	}
}

func TestStopWordOnlyQueryYieldsNothing(t *testing.T) {
	stop := map[string]struct{}{"the": {}, "a": {}}
	eng := newTestEngine(t, []corpus.Document{
		{ID: "doc1", Text: "the cat sat on a mat"},
	}, stop)

	if results := eng.Search(context.Background(), "the a the", 0); len(results) != 0 {
		t.Errorf("stop-word-only query returned %d results, want 0", len(results))
	}
}

func TestQueryTerms(t *testing.T) {
	eng := newTestEngine(t, []corpus.Document{
		{ID: "doc1", Text: "cat dog"},
	}, map[string]struct{}{})
	got := eng.QueryTerms("CAT unicorn dog")
	if len(got) != 2 || got[0] != "cat" || got[1] != "dog" {
		t.Errorf("QueryTerms = %v, want [cat dog]", got)
	}
}

func TestEngineStats(t *testing.T) {
	eng := newTestEngine(t, []corpus.Document{
		{ID: "doc1", Text: "cat dog"},
		{ID: "doc2", Text: "bird"},
	}, map[string]struct{}{})
	if eng.DocCount() != 2 {
		t.Errorf("DocCount = %d, want 2", eng.DocCount())
	}
	if eng.VocabularySize() != 3 {
		t.Errorf("VocabularySize = %d, want 3", eng.VocabularySize())
	}
	if !eng.HasDocument("doc2") || eng.HasDocument("nope") {
		t.Error("HasDocument gave wrong membership")
	}
}
