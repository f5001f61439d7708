package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/lawrencelj/mdsearch/internal/docsource"
	"github.com/lawrencelj/mdsearch/internal/engine"
	"github.com/lawrencelj/mdsearch/internal/index"
	"github.com/lawrencelj/mdsearch/pkg/config"
	apperrors "github.com/lawrencelj/mdsearch/pkg/errors"
	"github.com/lawrencelj/mdsearch/pkg/logger"
	"github.com/lawrencelj/mdsearch/pkg/middleware"
	"github.com/lawrencelj/mdsearch/pkg/monitor"
	"github.com/lawrencelj/mdsearch/pkg/tracing"
)

// Handler serves the search API over one engine instance.
type Handler struct {
	engine        *engine.Engine
	source        *docsource.Source
	mon           *monitor.Monitor
	maxResults    int
	contextLength int
	logger        *slog.Logger
}

// NewHandler wires the engine, its document source and the shared monitor
// into the API surface.
func NewHandler(eng *engine.Engine, source *docsource.Source, mon *monitor.Monitor, cfg config.SearchConfig) *Handler {
	return &Handler{
		engine:        eng,
		source:        source,
		mon:           mon,
		maxResults:    cfg.MaxResults,
		contextLength: cfg.ContextLength,
		logger:        logger.WithComponent("api"),
	}
}

type searchResponse struct {
	Query   string               `json:"query"`
	Total   int                  `json:"total"`
	Results []index.SearchResult `json:"results"`
}

// Search answers GET /api/v1/search. The query comes from 'q'; every
// search option has a matching query parameter.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := logger.FromContext(r.Context())

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	opts, ok := h.searchOptions(w, r.URL.Query())
	if !ok {
		return
	}

	results := h.engine.AdvancedSearch(query, opts, nil)
	if results == nil {
		results = []index.SearchResult{}
	}

	log.Info("search completed",
		"query", query,
		"returned", len(results),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, searchResponse{
		Query:   query,
		Total:   len(results),
		Results: results,
	})
}

// Suggest answers GET /api/v1/suggest with up to ten term completions.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'prefix' is required")
		return
	}

	suggestions := h.engine.Suggestions(prefix)
	if suggestions == nil {
		suggestions = []string{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"prefix":      prefix,
		"suggestions": suggestions,
	})
}

type statsResponse struct {
	index.Statistics
	P50LatencyMs       float64 `json:"p50_latency_ms"`
	P95LatencyMs       float64 `json:"p95_latency_ms"`
	SearchesTotal      int64   `json:"searches_total"`
	ZeroResultSearches int64   `json:"zero_result_searches"`
	QueryCacheHits     int64   `json:"query_cache_hits"`
	QueryCacheMisses   int64   `json:"query_cache_misses"`
}

// Stats answers GET /api/v1/stats with index counters and latency data.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	hits, misses := h.engine.QueryCacheStats()
	h.writeJSON(w, http.StatusOK, statsResponse{
		Statistics:         h.engine.Statistics(),
		P50LatencyMs:       float64(h.mon.Percentile(50)) / float64(time.Millisecond),
		P95LatencyMs:       float64(h.mon.Percentile(95)) / float64(time.Millisecond),
		SearchesTotal:      h.mon.Count(),
		ZeroResultSearches: h.mon.ZeroResults(),
		QueryCacheHits:     hits,
		QueryCacheMisses:   misses,
	})
}

// Documents answers GET /api/v1/documents with every registered document
// reference, sorted by path for stable output.
func (h *Handler) Documents(w http.ResponseWriter, r *http.Request) {
	refs := h.engine.References()
	sort.Slice(refs, func(i, j int) bool { return refs[i].Path < refs[j].Path })
	h.writeJSON(w, http.StatusOK, map[string]any{
		"total":     len(refs),
		"documents": refs,
	})
}

// Document answers GET /api/v1/documents/{id} with the full cached
// document. Evicted and unknown documents both answer 404.
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	doc, ok := h.engine.Document(id)
	if !ok {
		h.writeDomainError(w, apperrors.Newf(apperrors.ErrDocumentNotFound, http.StatusNotFound, "document %s is not cached", id))
		return
	}
	h.writeJSON(w, http.StatusOK, doc)
}

// Outline answers GET /api/v1/documents/{id}/outline.
func (h *Handler) Outline(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	doc, ok := h.engine.Document(id)
	if !ok {
		h.writeDomainError(w, apperrors.Newf(apperrors.ErrDocumentNotFound, http.StatusNotFound, "document %s is not cached", id))
		return
	}

	items := h.engine.GenerateOutline(doc)
	if items == nil {
		items = []engine.OutlineItem{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"id":      id,
		"title":   doc.Title,
		"outline": items,
	})
}

// Remove answers DELETE /api/v1/documents/{id}. Removal is idempotent, so
// unknown IDs still answer 204.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	h.engine.RemoveDocument(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

// Reindex answers POST /api/v1/reindex: it reloads the corpus from the
// document source and rebuilds the index from scratch. The load and index
// phases are traced so slow reindexes show where the time went.
func (h *Handler) Reindex(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	ctx, span := tracing.StartSpan(r.Context(), "reindex", middleware.GetRequestID(r.Context()))

	_, loadSpan := tracing.StartChildSpan(ctx, "load_corpus")
	docs, err := h.source.Load(ctx)
	loadSpan.SetAttr("documents", len(docs))
	loadSpan.End()
	if err != nil {
		log.Error("corpus reload failed", "error", err)
		h.writeDomainError(w, err)
		return
	}

	_, indexSpan := tracing.StartChildSpan(ctx, "rebuild_index")
	h.engine.ClearIndex()
	for _, doc := range docs {
		h.engine.IndexDocument(doc)
	}
	indexSpan.SetAttr("postings", h.engine.Statistics().IndexSize)
	indexSpan.End()

	span.End()
	span.Log(log)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "reindexed",
		"documents": len(docs),
	})
}

// searchOptions translates query parameters into SearchOptions. The bool
// parameters accept strconv.ParseBool values; limit and context_length must
// be positive integers when present.
func (h *Handler) searchOptions(w http.ResponseWriter, q url.Values) (index.SearchOptions, bool) {
	opts := index.DefaultOptions()
	if h.maxResults > 0 {
		opts.MaxResults = h.maxResults
	}
	if h.contextLength > 0 {
		opts.ContextLength = h.contextLength
	}

	if limitStr := q.Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return opts, false
		}
		if h.maxResults > 0 && parsed > h.maxResults {
			parsed = h.maxResults
		}
		opts.MaxResults = parsed
	}
	if lenStr := q.Get("context_length"); lenStr != "" {
		parsed, err := strconv.Atoi(lenStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "context_length must be a positive integer")
			return opts, false
		}
		opts.ContextLength = parsed
	}

	opts.CaseSensitive = boolParam(q, "case_sensitive", opts.CaseSensitive)
	opts.WholeWords = boolParam(q, "whole_words", opts.WholeWords)
	opts.UseRegex = boolParam(q, "regex", opts.UseRegex)
	opts.SearchHeadingsOnly = boolParam(q, "headings_only", opts.SearchHeadingsOnly)
	opts.IncludeContext = boolParam(q, "context", opts.IncludeContext)
	return opts, true
}

func boolParam(q url.Values, name string, def bool) bool {
	v := q.Get(name)
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return parsed
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps a typed error onto its HTTP status.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	h.writeError(w, apperrors.HTTPStatusCode(err), err.Error())
}
