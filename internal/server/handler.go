// Package server implements the HTTP API over the search engine.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/vectorspace/docsearch/internal/cache"
	"github.com/vectorspace/docsearch/internal/corpus"
	"github.com/vectorspace/docsearch/internal/engine"
	"github.com/vectorspace/docsearch/internal/ranker"
	apperrors "github.com/vectorspace/docsearch/pkg/errors"
	"github.com/vectorspace/docsearch/pkg/logger"
)

// Handler serves the search API. The cache is optional; a nil cache means
// every query is ranked fresh.
type Handler struct {
	engine       *engine.Engine
	cache        *cache.QueryCache
	defaultLimit int
	maxResults   int
	logger       *slog.Logger
}

// SearchResponse is the JSON envelope for a ranked query.
type SearchResponse struct {
	Query     string          `json:"query"`
	TotalHits int             `json:"total_hits"`
	Results   []ranker.Result `json:"results"`
}

// DocumentResponse carries a document's identifier and full text.
type DocumentResponse struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// New creates a Handler.
func New(eng *engine.Engine, queryCache *cache.QueryCache, defaultLimit, maxResults int) *Handler {
	return &Handler{
		engine:       eng,
		cache:        queryCache,
		defaultLimit: defaultLimit,
		maxResults:   maxResults,
		logger:       logger.WithComponent("search-handler"),
	}
}

// Search handles GET /api/v1/search?q=...&limit=N. An empty or no-match
// query is a valid request answered with an empty result list.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
			"query parameter %q is required", "q"))
		return
	}

	limit := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest,
				"limit must be a positive integer"))
			return
		}
		if parsed > h.maxResults {
			parsed = h.maxResults
		}
		limit = parsed
	}

	var results []ranker.Result
	cacheHit := false
	if h.cache != nil {
		var err error
		results, cacheHit, err = h.cache.GetOrCompute(ctx, query, limit, func() ([]ranker.Result, error) {
			return h.engine.Search(ctx, query, limit), nil
		})
		if err != nil {
			log.Error("search execution failed", "query", query, "error", err)
			h.writeError(w, apperrors.New(apperrors.ErrInternal,
				http.StatusInternalServerError, "search failed"))
			return
		}
	} else {
		results = h.engine.Search(ctx, query, limit)
	}
	if results == nil {
		results = []ranker.Result{}
	}

	log.Info("search completed",
		"query", query,
		"returned", len(results),
		"cache_hit", cacheHit,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, SearchResponse{
		Query:     query,
		TotalHits: len(results),
		Results:   results,
	})
}

// Document handles GET /api/v1/documents?id=... by re-reading an indexed
// document's text. The index keeps no text, only the identifier.
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		h.writeError(w, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
			"query parameter %q is required", "id"))
		return
	}
	if !h.engine.HasDocument(id) {
		h.writeError(w, apperrors.New(apperrors.ErrDocumentNotFound,
			http.StatusNotFound, "document not indexed"))
		return
	}
	text, err := corpus.ReadDocument(id)
	if err != nil {
		h.logger.Error("document read failed", "id", id, "error", err)
		h.writeError(w, apperrors.New(apperrors.ErrInternal,
			http.StatusInternalServerError, "document could not be read"))
		return
	}
	h.writeJSON(w, http.StatusOK, DocumentResponse{ID: id, Text: text})
}

// Stats handles GET /api/v1/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]any{
		"docs":            h.engine.DocCount(),
		"vocabulary_size": h.engine.VocabularySize(),
	}
	if h.cache != nil {
		hits, misses := h.cache.Stats()
		stats["cache"] = map[string]int64{"hits": hits, "misses": misses}
	}
	h.writeJSON(w, http.StatusOK, stats)
}

// CacheInvalidate handles POST /api/v1/cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, apperrors.New(apperrors.ErrInternal,
			http.StatusServiceUnavailable, "caching is disabled"))
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, apperrors.New(apperrors.ErrInternal,
			http.StatusInternalServerError, "cache invalidation failed"))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

// writeError maps err onto its HTTP status and serves the attached
// message, falling back to the error text for plain errors.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	h.writeJSON(w, apperrors.HTTPStatusCode(err), map[string]string{"error": message})
}
