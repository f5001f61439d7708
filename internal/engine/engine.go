// Package engine coordinates the inverted index, the document cache and the
// query memo behind one search facade. It owns document lifecycle: indexing
// a document registers a lightweight reference, caches the full content and
// feeds the index; removal unwinds all three.
package engine

import (
	"crypto/sha256"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lawrencelj/mdsearch/internal/index"
	"github.com/lawrencelj/mdsearch/internal/lru"
	"github.com/lawrencelj/mdsearch/pkg/document"
	"github.com/lawrencelj/mdsearch/pkg/logger"
	"github.com/lawrencelj/mdsearch/pkg/metrics"
	"github.com/lawrencelj/mdsearch/pkg/monitor"
)

const (
	// DefaultCacheCapacity bounds how many full documents stay resident.
	// References survive eviction; content does not, and evicted documents
	// drop out of corpus-wide searches until re-indexed.
	DefaultCacheCapacity = 50

	// minIncrementalQuery is the shortest query, in runes, that incremental
	// search will run. Shorter prefixes are too noisy to search on every
	// keystroke.
	minIncrementalQuery = 2
)

// Options configure engine construction. Zero values select defaults.
type Options struct {
	CacheCapacity int
	Monitor       *monitor.Monitor
	Metrics       *metrics.Metrics
}

// Engine ties the index, document cache and query memo together. All methods
// are safe for concurrent use.
type Engine struct {
	mu    sync.RWMutex
	refs  map[string]document.Reference
	cache *lru.Cache[string, document.Document]

	idx *index.Index
	qc  *queryCache

	// indexing is set for the duration of a document mutation. Basic and
	// incremental search return nothing while it is up; AdvancedSearch
	// deliberately ignores it so callers that accept in-flight state can
	// keep searching.
	indexing   atomic.Bool
	generation atomic.Int64

	mon     *monitor.Monitor
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New constructs an engine. A nil Metrics gets a private registry so tests
// and library consumers never collide with the default one.
func New(opts Options) *Engine {
	if opts.CacheCapacity <= 0 {
		opts.CacheCapacity = DefaultCacheCapacity
	}
	if opts.Monitor == nil {
		opts.Monitor = monitor.New(0)
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New(prometheus.NewRegistry())
	}
	return &Engine{
		refs:    make(map[string]document.Reference),
		cache:   lru.New[string, document.Document](opts.CacheCapacity),
		idx:     index.New(opts.Monitor),
		qc:      newQueryCache(),
		mon:     opts.Monitor,
		metrics: opts.Metrics,
		logger:  logger.WithComponent("engine"),
	}
}

// IndexDocument registers, caches and indexes doc. Indexing the same ID
// twice without removing first leaves both generations of postings in the
// index; UpdateDocument is the replacing form.
func (e *Engine) IndexDocument(doc document.Document) {
	e.indexing.Store(true)
	defer e.indexing.Store(false)

	e.mu.Lock()
	e.refs[doc.ID] = document.NewReference(doc)
	e.cache.Put(doc.ID, doc)
	cached := e.cache.Len()
	e.mu.Unlock()

	e.idx.Add(doc)
	e.generation.Add(1)

	e.metrics.DocsIndexedTotal.Inc()
	e.metrics.DocumentsCached.Set(float64(cached))
	e.metrics.IndexPostings.Set(float64(e.idx.Stats().IndexSize))
	e.logger.Debug("document indexed", "doc_id", doc.ID, "bytes", doc.Length())
}

// UpdateDocument replaces a document's postings by removing the old entries
// and indexing the new content. The two steps are not atomic; a concurrent
// search may observe the document absent in between. Basic search shields
// itself via the indexing flag.
func (e *Engine) UpdateDocument(doc document.Document) {
	e.RemoveDocument(doc.ID)
	e.IndexDocument(doc)
}

// RemoveDocument drops the document's reference, cached content and
// postings. Removing an unknown ID is a no-op.
func (e *Engine) RemoveDocument(id string) {
	e.indexing.Store(true)
	defer e.indexing.Store(false)

	e.mu.Lock()
	_, existed := e.refs[id]
	delete(e.refs, id)
	e.cache.Remove(id)
	cached := e.cache.Len()
	e.mu.Unlock()

	e.idx.Remove(id)
	e.generation.Add(1)

	if existed {
		e.metrics.DocsRemovedTotal.Inc()
	}
	e.metrics.DocumentsCached.Set(float64(cached))
	e.metrics.IndexPostings.Set(float64(e.idx.Stats().IndexSize))
	e.logger.Debug("document removed", "doc_id", id, "was_registered", existed)
}

// ClearIndex resets the engine to its initial empty state.
func (e *Engine) ClearIndex() {
	e.indexing.Store(true)
	defer e.indexing.Store(false)

	e.mu.Lock()
	e.refs = make(map[string]document.Reference)
	e.cache.Clear()
	e.mu.Unlock()

	e.idx.Clear()
	e.generation.Add(1)

	e.metrics.DocumentsCached.Set(0)
	e.metrics.IndexPostings.Set(0)
	e.logger.Info("index cleared")
}

// Document returns the cached content for id. Found documents count as a
// recent use for eviction purposes.
func (e *Engine) Document(id string) (document.Document, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cache.Get(id)
}

// References lists every registered document, including ones whose content
// has been evicted from the cache.
func (e *Engine) References() []document.Reference {
	e.mu.RLock()
	defer e.mu.RUnlock()
	refs := make([]document.Reference, 0, len(e.refs))
	for _, ref := range e.refs {
		refs = append(refs, ref)
	}
	return refs
}

// Search runs query with default options across all cached documents. It
// returns an empty result set for empty queries and while an index mutation
// is in flight.
func (e *Engine) Search(query string) []index.SearchResult {
	if query == "" || e.indexing.Load() {
		return nil
	}
	return e.runSearch(query, index.DefaultOptions(), nil, "basic")
}

// AdvancedSearch runs query with explicit options, optionally scoped to a
// single document. Unlike Search it does not consult the indexing flag, so
// results may reflect a mutation in progress.
func (e *Engine) AdvancedSearch(query string, opts index.SearchOptions, doc *document.Document) []index.SearchResult {
	if query == "" {
		return nil
	}
	return e.runSearch(query, opts, doc, "advanced")
}

// IncrementalSearch backs search-as-you-type. Queries shorter than two
// runes return nothing, and maxResults, when positive, overrides the
// default result cap.
func (e *Engine) IncrementalSearch(query string, maxResults int) []index.SearchResult {
	if utf8.RuneCountInString(query) < minIncrementalQuery || e.indexing.Load() {
		return nil
	}
	opts := index.DefaultOptions()
	if maxResults > 0 {
		opts.MaxResults = maxResults
	}
	return e.runSearch(query, opts, nil, "incremental")
}

// Suggestions proposes up to ten indexed terms with the given prefix.
func (e *Engine) Suggestions(prefix string) []string {
	return e.idx.Suggestions(prefix)
}

// Statistics reports current index counters.
func (e *Engine) Statistics() index.Statistics {
	return e.idx.Stats()
}

// QueryCacheStats reports memo hit and miss totals since construction.
func (e *Engine) QueryCacheStats() (hits, misses int64) {
	return e.qc.stats()
}

// runSearch is the shared search path. Corpus-wide searches resolve content
// from the document cache and memoise their results; single-document
// searches use the caller's copy verbatim and bypass the memo, since the
// caller controls that content.
func (e *Engine) runSearch(query string, opts index.SearchOptions, scoped *document.Document, mode string) []index.SearchResult {
	start := time.Now()
	e.metrics.SearchesTotal.WithLabelValues(mode).Inc()

	if scoped != nil {
		docs := map[string]document.Document{scoped.ID: *scoped}
		results := e.idx.Search(query, opts, docs)
		e.observeSearch(start, "bypass", len(results))
		return results
	}

	// The key is read before the content snapshot, so an entry keyed at
	// generation g never holds content older than g.
	key := e.queryKey(query, opts)

	e.mu.RLock()
	docs := e.cache.Items()
	e.mu.RUnlock()

	results, cached := e.qc.getOrCompute(key, func() []index.SearchResult {
		return e.idx.Search(query, opts, docs)
	})

	status := "miss"
	if cached {
		status = "hit"
		e.metrics.QueryCacheHitsTotal.Inc()
	} else {
		e.metrics.QueryCacheMissTotal.Inc()
	}
	e.observeSearch(start, status, len(results))
	return results
}

func (e *Engine) observeSearch(start time.Time, cacheStatus string, resultCount int) {
	e.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(time.Since(start).Seconds())
	e.metrics.SearchResultsCount.Observe(float64(resultCount))
}

// queryKey folds the current index generation into the memo key, so any
// mutation implicitly invalidates every earlier entry.
func (e *Engine) queryKey(query string, opts index.SearchOptions) string {
	raw := fmt.Sprintf("%d|%s|%+v", e.generation.Load(), query, opts)
	sum := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%x", sum[:16])
}
