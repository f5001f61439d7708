package index

import (
	"container/heap"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lawrencelj/mdsearch/internal/scorer"
	"github.com/lawrencelj/mdsearch/internal/tokenizer"
	"github.com/lawrencelj/mdsearch/pkg/document"
)

// Search runs query against the index and returns relevance-sorted results
// capped at opts.MaxResults. Only postings whose owning document appears in
// docs produce results; postings for unresolvable documents are silently
// skipped, which is also how single-document search works (the caller
// supplies just that one document). The observed wall-clock duration is
// recorded on the monitor.
//
// Search never fails: an empty query, a query with no matches and an
// invalid regex pattern all come back as an empty result list.
func (ix *Index) Search(query string, opts SearchOptions, docs map[string]document.Document) []SearchResult {
	start := time.Now()
	final := []SearchResult(nil)
	defer func() {
		ix.mon.Record(time.Since(start))
		if len(final) == 0 {
			ix.mon.RecordZero()
		}
	}()

	opts = opts.normalized()
	terms := queryTerms(query, opts)
	if len(terms) == 0 {
		return nil
	}

	ix.mu.RLock()
	matched := ix.collectMatches(terms, opts)
	ix.mu.RUnlock()

	lines := make(map[string][]string, len(docs))
	results := make([]SearchResult, 0, len(matched))
	for _, p := range matched {
		doc, ok := docs[p.DocID]
		if !ok {
			continue
		}
		if opts.SearchHeadingsOnly && p.Kind != tokenizer.KindHeading {
			continue
		}

		r := SearchResult{
			DocumentID: p.DocID,
			Term:       p.Term,
			Line:       p.Line,
			Column:     p.Column,
			Position:   p.Position,
			Kind:       p.Kind,
			Score:      scorer.Score(p.Term, p.Position, p.Kind, query, doc),
		}
		if title, ok := scorer.NearestHeading(doc.Outline, p.Position); ok {
			r.HeadingContext = title
		}
		if opts.IncludeContext {
			docLines, ok := lines[p.DocID]
			if !ok {
				docLines = strings.Split(doc.Content, "\n")
				lines[p.DocID] = docLines
			}
			r.Context = extractContext(docLines, p, opts.ContextLength)
		}
		results = append(results, r)
	}
	final = topResults(results, opts.MaxResults)
	return final
}

// queryTerms splits the raw query into matchable terms. In regex mode the
// whole query is one pattern; otherwise it is split on the same word
// boundaries as document tokenisation and case-folded unless the search is
// case-sensitive.
func queryTerms(query string, opts SearchOptions) []string {
	if opts.UseRegex {
		if strings.TrimSpace(query) == "" {
			return nil
		}
		return []string{query}
	}
	terms := tokenizer.Fields(query)
	if !opts.CaseSensitive {
		for i, t := range terms {
			terms[i] = strings.ToLower(t)
		}
	}
	return terms
}

// collectMatches gathers the postings matching each query term, deduplicated
// by posting identity so a posting matched by several query terms appears
// once. The caller must hold at least the read lock.
func (ix *Index) collectMatches(terms []string, opts SearchOptions) []Posting {
	seen := make(map[PostingKey]Posting)
	for _, term := range terms {
		switch {
		case opts.UseRegex:
			// An invalid pattern matches nothing rather than failing
			// the whole search.
			re, err := regexp.Compile(term)
			if err != nil {
				continue
			}
			for key, set := range ix.terms {
				if re.MatchString(key) {
					for k, p := range set {
						seen[k] = p
					}
				}
			}
		case opts.WholeWords:
			for k, p := range ix.terms[term] {
				seen[k] = p
			}
		default:
			for key, set := range ix.terms {
				if strings.Contains(key, term) {
					for k, p := range set {
						seen[k] = p
					}
				}
			}
		}
	}
	out := make([]Posting, 0, len(seen))
	for _, p := range seen {
		out = append(out, p)
	}
	return out
}

// extractContext slices a short preview out of the match's source line. The
// posting's baked context window bounds the preview, narrowed further when
// the caller asked for less context.
func extractContext(docLines []string, p Posting, length int) string {
	if p.Line < 1 || p.Line > len(docLines) {
		return ""
	}
	line := docLines[p.Line-1]

	start := max(p.ContextStart, p.Position-length)
	end := min(p.ContextEnd, p.Position+len(p.Term)+length)
	start = max(start, 0)
	end = min(end, len(line))
	// The window edges are byte offsets; widen each to a rune boundary so
	// the slice never splits a multibyte character.
	for start > 0 && !utf8.RuneStart(line[start]) {
		start--
	}
	for end < len(line) && !utf8.RuneStart(line[end]) {
		end++
	}
	if start >= end {
		return ""
	}
	return strings.TrimSpace(line[start:end])
}

// topResults keeps the limit best results in a bounded min-heap, then pops
// them into descending score order. Ties break on document id, line and
// position so result order is deterministic.
func topResults(results []SearchResult, limit int) []SearchResult {
	if len(results) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultMaxResults
	}
	h := &resultHeap{}
	heap.Init(h)
	for _, r := range results {
		heap.Push(h, r)
		if h.Len() > limit {
			heap.Pop(h)
		}
	}
	sorted := make([]SearchResult, h.Len())
	for i := len(sorted) - 1; i >= 0; i-- {
		sorted[i] = heap.Pop(h).(SearchResult)
	}
	return sorted
}

// resultHeap is a min-heap: the worst kept result sits at the root so the
// cap can evict it first.
type resultHeap []SearchResult

func (h resultHeap) Len() int { return len(h) }

func (h resultHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	if h[i].DocumentID != h[j].DocumentID {
		return h[i].DocumentID > h[j].DocumentID
	}
	if h[i].Line != h[j].Line {
		return h[i].Line > h[j].Line
	}
	return h[i].Position > h[j].Position
}

func (h resultHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *resultHeap) Push(x any) {
	*h = append(*h, x.(SearchResult))
}

func (h *resultHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
