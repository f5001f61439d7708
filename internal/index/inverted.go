// Package index implements the in-memory inverted index at the heart of the
// search engine: a table from normalised term to the set of postings
// recording every occurrence of that term, together with search, suggestion
// and statistics operations over it.
package index

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lawrencelj/mdsearch/internal/tokenizer"
	"github.com/lawrencelj/mdsearch/pkg/document"
	"github.com/lawrencelj/mdsearch/pkg/monitor"
)

// maxSuggestions caps the number of term completions returned per prefix.
const maxSuggestions = 10

// Index is the inverted term index. All methods are safe for concurrent
// use; mutating methods hold the write lock for their full duration, so a
// removal is atomic with respect to the term table and readers never see a
// partially removed document.
type Index struct {
	mu       sync.RWMutex
	terms    map[string]postingSet
	docCount int
	updated  time.Time
	mon      *monitor.Monitor
}

// New returns an empty index recording search timings on mon. A nil mon
// gets a private monitor with the default window.
func New(mon *monitor.Monitor) *Index {
	if mon == nil {
		mon = monitor.New(0)
	}
	return &Index{
		terms: make(map[string]postingSet),
		mon:   mon,
	}
}

// Add tokenises the document content and inserts one posting per token into
// the term table. Indexing an id the index has never seen is the normal
// case; re-adding an id without removing it first leaves the old postings
// in place, so callers wanting replace semantics remove first.
func (ix *Index) Add(doc document.Document) {
	tokens := tokenizer.Tokenize(doc.Content)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	for _, tok := range tokens {
		p := Posting{
			DocID:        doc.ID,
			Term:         tok.Term,
			Position:     tok.Position,
			Line:         tok.Line,
			Column:       tok.Column,
			ContextStart: tok.ContextStart,
			ContextEnd:   tok.ContextEnd,
			Kind:         tok.Kind,
		}
		set, ok := ix.terms[tok.Term]
		if !ok {
			set = make(postingSet)
			ix.terms[tok.Term] = set
		}
		set[p.Key()] = p
	}
	ix.docCount++
	ix.updated = time.Now()
}

// Remove deletes every posting belonging to id and drops term buckets that
// become empty. The document counter only moves when at least one posting
// was actually removed and never goes below zero, so removing an id that
// was never indexed, or removing twice, is a no-op.
func (ix *Index) Remove(id string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	removed := false
	for term, set := range ix.terms {
		for key := range set {
			if key.DocID == id {
				delete(set, key)
				removed = true
			}
		}
		if len(set) == 0 {
			delete(ix.terms, term)
		}
	}
	if !removed {
		return
	}
	if ix.docCount > 0 {
		ix.docCount--
	}
	ix.updated = time.Now()
}

// Clear drops the whole term table and resets the counters to their zero
// state.
func (ix *Index) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.terms = make(map[string]postingSet)
	ix.docCount = 0
	ix.updated = time.Time{}
}

// Suggestions returns up to ten distinct indexed terms starting with the
// case-folded prefix, sorted lexicographically. An empty prefix matches
// every term, so it returns the first ten terms in sort order.
func (ix *Index) Suggestions(prefix string) []string {
	folded := strings.ToLower(prefix)

	ix.mu.RLock()
	matches := make([]string, 0, maxSuggestions)
	for term := range ix.terms {
		if strings.HasPrefix(term, folded) {
			matches = append(matches, term)
		}
	}
	ix.mu.RUnlock()

	sort.Strings(matches)
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	return matches
}

// Stats returns a snapshot of the running counters plus the computed index
// size, the total posting count across all term buckets.
func (ix *Index) Stats() Statistics {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	size := 0
	for _, set := range ix.terms {
		size += len(set)
	}
	return Statistics{
		DocumentsIndexed:  ix.docCount,
		TotalTerms:        len(ix.terms),
		IndexSize:         size,
		AverageSearchTime: float64(ix.mon.Average()) / float64(time.Millisecond),
		LastUpdated:       ix.updated,
	}
}
