package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/vectorspace/docsearch/internal/corpus"
	"github.com/vectorspace/docsearch/internal/engine"
	"github.com/vectorspace/docsearch/internal/index"
)

func newTestHandler(t *testing.T, docs []corpus.Document) *Handler {
	t.Helper()
	ix, err := index.Build(context.Background(), docs, map[string]struct{}{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return New(engine.New(ix, 10, nil), nil, 10, 50)
}

func TestSearchEndpoint(t *testing.T) {
	h := newTestHandler(t, []corpus.Document{
		{ID: "doc1", Text: "cat dog"},
		{ID: "doc2", Text: "cat cat bird"},
		{ID: "doc3", Text: "bird bird bird"},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=cat", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp SearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.TotalHits != 2 {
		t.Errorf("total_hits = %d, want 2", resp.TotalHits)
	}
	if len(resp.Results) != 2 || resp.Results[0].DocID != "doc2" {
		t.Errorf("results = %v, want doc2 ranked first", resp.Results)
	}
}

func TestSearchEndpointNoMatch(t *testing.T) {
	h := newTestHandler(t, []corpus.Document{{ID: "doc1", Text: "cat"}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=unicorn", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (no match is not an error)", rec.Code)
	}
	var resp SearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.TotalHits != 0 || len(resp.Results) != 0 {
		t.Errorf("expected an empty result list, got %+v", resp)
	}
}

func TestSearchEndpointValidation(t *testing.T) {
	h := newTestHandler(t, []corpus.Document{{ID: "doc1", Text: "cat"}})

	cases := []struct {
		name   string
		target string
	}{
		{"missing q", "/api/v1/search"},
		{"bad limit", "/api/v1/search?q=cat&limit=abc"},
		{"zero limit", "/api/v1/search?q=cat&limit=0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			rec := httptest.NewRecorder()
			h.Search(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestSearchEndpointLimitCap(t *testing.T) {
	docs := make([]corpus.Document, 20)
	for i := range docs {
		docs[i] = corpus.Document{ID: string(rune('a' + i)), Text: "cat nap"}
	}
	docs = append(docs, corpus.Document{ID: "other", Text: "bird"})
	ix, err := index.Build(context.Background(), docs, map[string]struct{}{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	h := New(engine.New(ix, 10, nil), nil, 10, 15)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=cat&limit=500", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	var resp SearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Results) != 15 {
		t.Errorf("got %d results, want the maxResults cap of 15", len(resp.Results))
	}
}

func TestSearchEndpointErrorBody(t *testing.T) {
	h := newTestHandler(t, []corpus.Document{{ID: "doc1", Text: "cat"}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if body["error"] != `query parameter "q" is required` {
		t.Errorf("error message = %q, want the human-readable message, not the wrapped sentinel", body["error"])
	}
}

func TestDocumentEndpoint(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("cat dog"), 0644); err != nil {
		t.Fatal(err)
	}
	docs, err := corpus.LoadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	h := newTestHandler(t, docs)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents?id="+docs[0].ID, nil)
	rec := httptest.NewRecorder()
	h.Document(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp DocumentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Text != "cat dog" {
		t.Errorf("text = %q, want %q", resp.Text, "cat dog")
	}
}

func TestDocumentEndpointUnknown(t *testing.T) {
	h := newTestHandler(t, []corpus.Document{{ID: "doc1", Text: "cat"}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents?id=/etc/passwd", nil)
	rec := httptest.NewRecorder()
	h.Document(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for an unindexed id", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	rec = httptest.NewRecorder()
	h.Document(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for a missing id", rec.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	h := newTestHandler(t, []corpus.Document{
		{ID: "doc1", Text: "cat dog"},
		{ID: "doc2", Text: "bird"},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	rec := httptest.NewRecorder()
	h.Stats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var stats map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if stats["docs"].(float64) != 2 {
		t.Errorf("docs = %v, want 2", stats["docs"])
	}
	if stats["vocabulary_size"].(float64) != 3 {
		t.Errorf("vocabulary_size = %v, want 3", stats["vocabulary_size"])
	}
}

func TestCacheInvalidateDisabled(t *testing.T) {
	h := newTestHandler(t, []corpus.Document{{ID: "doc1", Text: "cat"}})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", nil)
	rec := httptest.NewRecorder()
	h.CacheInvalidate(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 when caching is disabled", rec.Code)
	}
}
