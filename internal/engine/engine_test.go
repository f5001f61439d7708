package engine

import (
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/lawrencelj/mdsearch/internal/index"
	"github.com/lawrencelj/mdsearch/pkg/document"
)

func makeDoc(id, content string) document.Document {
	return document.Document{
		ID:         id,
		Path:       id + ".md",
		Title:      id,
		Content:    content,
		ModifiedAt: time.Now(),
	}
}

func TestIndexAndSearch(t *testing.T) {
	e := New(Options{})
	e.IndexDocument(makeDoc("d1", "hello world"))

	results := e.Search("hello")
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].DocumentID != "d1" {
		t.Errorf("expected result from d1, got %q", results[0].DocumentID)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	e := New(Options{})
	e.IndexDocument(makeDoc("d1", "hello world"))

	if got := e.Search(""); len(got) != 0 {
		t.Errorf("expected no results for empty query, got %d", len(got))
	}
	if got := e.AdvancedSearch("", index.DefaultOptions(), nil); len(got) != 0 {
		t.Errorf("expected no advanced results for empty query, got %d", len(got))
	}
}

func TestBasicSearchBlockedDuringMutation(t *testing.T) {
	e := New(Options{})
	e.IndexDocument(makeDoc("d1", "hello world"))

	e.indexing.Store(true)
	defer e.indexing.Store(false)

	if got := e.Search("hello"); len(got) != 0 {
		t.Errorf("expected no basic results while a mutation is in flight, got %d", len(got))
	}
	if got := e.IncrementalSearch("hel", 0); len(got) != 0 {
		t.Errorf("expected no incremental results while a mutation is in flight, got %d", len(got))
	}
}

func TestAdvancedSearchIgnoresMutationFlag(t *testing.T) {
	e := New(Options{})
	e.IndexDocument(makeDoc("d1", "hello world"))

	e.indexing.Store(true)
	defer e.indexing.Store(false)

	if got := e.AdvancedSearch("hello", index.DefaultOptions(), nil); len(got) != 1 {
		t.Fatalf("expected advanced search to answer during a mutation, got %d results", len(got))
	}
}

func TestUpdateDocumentReplacesContent(t *testing.T) {
	e := New(Options{})
	e.IndexDocument(makeDoc("d1", "original phrasing"))

	e.UpdateDocument(makeDoc("d1", "revised wording entirely"))

	if got := e.Search("original"); len(got) != 0 {
		t.Errorf("expected old content to be unsearchable, got %d results", len(got))
	}
	if got := e.Search("revised"); len(got) != 1 {
		t.Errorf("expected new content to be searchable, got %d results", len(got))
	}
	if stats := e.Statistics(); stats.DocumentsIndexed != 1 {
		t.Errorf("expected 1 document after update, got %d", stats.DocumentsIndexed)
	}
}

func TestUpdateDocumentAppendedContent(t *testing.T) {
	e := New(Options{})
	e.IndexDocument(makeDoc("d1", "original phrasing stays"))

	before := e.Statistics().TotalTerms

	// Appending keeps every old term, so the distinct-term count can only
	// hold or grow while the document count stays put.
	e.UpdateDocument(makeDoc("d1", "original phrasing stays with freshly appended material"))

	stats := e.Statistics()
	if stats.DocumentsIndexed != 1 {
		t.Errorf("expected 1 document after update, got %d", stats.DocumentsIndexed)
	}
	if stats.TotalTerms < before {
		t.Errorf("expected at least %d terms after appending, got %d", before, stats.TotalTerms)
	}
	if got := e.Search("appended"); len(got) != 1 {
		t.Errorf("expected appended content to be searchable, got %d results", len(got))
	}
}

func TestRemoveDocument(t *testing.T) {
	e := New(Options{})
	e.IndexDocument(makeDoc("d1", "ephemeral text"))

	e.RemoveDocument("d1")

	if got := e.Search("ephemeral"); len(got) != 0 {
		t.Errorf("expected no results after removal, got %d", len(got))
	}
	stats := e.Statistics()
	if stats.DocumentsIndexed != 0 || stats.TotalTerms != 0 || stats.IndexSize != 0 {
		t.Errorf("expected empty stats after removal, got %+v", stats)
	}
	if refs := e.References(); len(refs) != 0 {
		t.Errorf("expected no references after removal, got %d", len(refs))
	}
	if _, ok := e.Document("d1"); ok {
		t.Error("expected document content to be gone after removal")
	}

	// Removing again must be a harmless no-op.
	e.RemoveDocument("d1")
	if stats := e.Statistics(); stats.DocumentsIndexed != 0 {
		t.Errorf("expected count to stay 0 after repeat removal, got %d", stats.DocumentsIndexed)
	}
}

func TestClearIndex(t *testing.T) {
	e := New(Options{})
	e.IndexDocument(makeDoc("d1", "first body"))
	e.IndexDocument(makeDoc("d2", "second body"))

	e.ClearIndex()

	if stats := e.Statistics(); stats.DocumentsIndexed != 0 || stats.IndexSize != 0 {
		t.Errorf("expected empty stats after clear, got %+v", stats)
	}
	if refs := e.References(); len(refs) != 0 {
		t.Errorf("expected no references after clear, got %d", len(refs))
	}

	// The engine must stay usable.
	e.IndexDocument(makeDoc("d3", "fresh body"))
	if got := e.Search("fresh"); len(got) != 1 {
		t.Fatalf("expected 1 result after reuse, got %d", len(got))
	}
}

func TestDocumentLookup(t *testing.T) {
	e := New(Options{})
	if _, ok := e.Document("missing"); ok {
		t.Fatal("expected lookup miss on empty engine")
	}

	doc := makeDoc("d1", "lookup target")
	e.IndexDocument(doc)

	got, ok := e.Document("d1")
	if !ok {
		t.Fatal("expected lookup hit after indexing")
	}
	if got.Content != doc.Content {
		t.Errorf("expected content %q, got %q", doc.Content, got.Content)
	}
}

func TestEvictedDocumentsDropOutOfSearch(t *testing.T) {
	e := New(Options{CacheCapacity: 2})
	e.IndexDocument(makeDoc("d1", "alpha topic"))
	e.IndexDocument(makeDoc("d2", "beta topic"))
	e.IndexDocument(makeDoc("d3", "gamma topic"))

	// d1 lost its cached content, so corpus-wide search skips it.
	if got := e.Search("alpha"); len(got) != 0 {
		t.Errorf("expected evicted document to be unsearchable, got %d results", len(got))
	}
	if got := e.Search("beta"); len(got) != 1 {
		t.Errorf("expected resident document to be searchable, got %d results", len(got))
	}

	// The reference and index entries survive eviction.
	if refs := e.References(); len(refs) != 3 {
		t.Errorf("expected 3 references, got %d", len(refs))
	}
	if stats := e.Statistics(); stats.DocumentsIndexed != 3 {
		t.Errorf("expected 3 documents indexed, got %d", stats.DocumentsIndexed)
	}
}

func TestAdvancedSearchFindsEvictedDocument(t *testing.T) {
	e := New(Options{CacheCapacity: 1})
	evicted := makeDoc("d1", "alpha topic")
	e.IndexDocument(evicted)
	e.IndexDocument(makeDoc("d2", "beta topic"))

	if got := e.Search("alpha"); len(got) != 0 {
		t.Fatalf("expected corpus search to miss the evicted document, got %d results", len(got))
	}

	// Passing the document explicitly restores searchability.
	got := e.AdvancedSearch("alpha", index.DefaultOptions(), &evicted)
	if len(got) != 1 {
		t.Fatalf("expected 1 scoped result, got %d", len(got))
	}
	if got[0].DocumentID != "d1" {
		t.Errorf("expected result from d1, got %q", got[0].DocumentID)
	}
}

func TestAdvancedSearchScopedToOneDocument(t *testing.T) {
	e := New(Options{})
	scoped := makeDoc("d1", "shared phrase here")
	e.IndexDocument(scoped)
	e.IndexDocument(makeDoc("d2", "shared phrase there"))

	results := e.AdvancedSearch("shared", index.DefaultOptions(), &scoped)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].DocumentID != "d1" {
		t.Errorf("expected only d1 results, got %q", results[0].DocumentID)
	}
}

func TestIncrementalSearchMinimumLength(t *testing.T) {
	e := New(Options{})
	e.IndexDocument(makeDoc("d1", "hello world"))

	if got := e.IncrementalSearch("h", 0); len(got) != 0 {
		t.Errorf("expected no results for a 1-rune query, got %d", len(got))
	}
	// One rune even when it spans multiple bytes.
	if got := e.IncrementalSearch("é", 0); len(got) != 0 {
		t.Errorf("expected no results for a 1-rune multibyte query, got %d", len(got))
	}
	if got := e.IncrementalSearch("he", 0); len(got) != 1 {
		t.Errorf("expected 1 result for a 2-rune query, got %d", len(got))
	}
}

func TestIncrementalSearchResultCap(t *testing.T) {
	e := New(Options{})
	e.IndexDocument(makeDoc("d1", "tag tag tag tag tag"))

	if got := e.IncrementalSearch("ta", 0); len(got) != 5 {
		t.Fatalf("expected 5 uncapped results, got %d", len(got))
	}
	if got := e.IncrementalSearch("ta", 2); len(got) != 2 {
		t.Fatalf("expected 2 capped results, got %d", len(got))
	}
}

func TestSuggestions(t *testing.T) {
	e := New(Options{})
	e.IndexDocument(makeDoc("d1", "search searching seated"))

	got := e.Suggestions("sea")
	want := []string{"search", "searching", "seated"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestQueryMemoisation(t *testing.T) {
	e := New(Options{})
	e.IndexDocument(makeDoc("d1", "hello world"))

	first := e.Search("hello")
	second := e.Search("hello")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical results from the memo, got %v and %v", first, second)
	}
	hits, misses := e.QueryCacheStats()
	if hits != 1 || misses != 1 {
		t.Fatalf("expected 1 hit and 1 miss, got %d hits %d misses", hits, misses)
	}

	// Different options form a distinct memo entry.
	opts := index.DefaultOptions()
	opts.WholeWords = true
	e.AdvancedSearch("hello", opts, nil)
	if _, misses = e.QueryCacheStats(); misses != 2 {
		t.Fatalf("expected a memo miss for new options, got %d misses", misses)
	}

	// Any mutation invalidates earlier entries.
	e.IndexDocument(makeDoc("d2", "hello again"))
	results := e.Search("hello")
	if len(results) != 2 {
		t.Fatalf("expected 2 results after indexing d2, got %d", len(results))
	}
	if _, misses = e.QueryCacheStats(); misses != 3 {
		t.Fatalf("expected a memo miss after a mutation, got %d misses", misses)
	}
}

func TestScopedSearchBypassesMemo(t *testing.T) {
	e := New(Options{})
	doc := makeDoc("d1", "hello world")
	e.IndexDocument(doc)

	e.AdvancedSearch("hello", index.DefaultOptions(), &doc)
	e.AdvancedSearch("hello", index.DefaultOptions(), &doc)

	hits, misses := e.QueryCacheStats()
	if hits != 0 || misses != 0 {
		t.Errorf("expected scoped searches to skip the memo, got %d hits %d misses", hits, misses)
	}
}

func TestGenerateOutline(t *testing.T) {
	e := New(Options{})
	doc := document.Document{
		ID:      "d1",
		Content: "# Guide\n\n## Install\n",
		Outline: []document.Heading{
			{
				Level: 1, Title: "Guide", Start: 0, End: 20,
				Children: []document.Heading{
					{Level: 2, Title: "Install", Start: 9, End: 20},
				},
			},
		},
	}

	items := e.GenerateOutline(doc)
	if len(items) != 1 {
		t.Fatalf("expected 1 top-level item, got %d", len(items))
	}
	if items[0].Title != "Guide" || items[0].Level != 1 {
		t.Errorf("unexpected top-level item %+v", items[0])
	}
	if len(items[0].Children) != 1 || items[0].Children[0].Title != "Install" {
		t.Errorf("unexpected children %+v", items[0].Children)
	}

	if items := e.GenerateOutline(makeDoc("d2", "plain text")); items != nil {
		t.Errorf("expected nil outline for a document without headings, got %v", items)
	}
}

func TestConcurrentSearchAndIndex(t *testing.T) {
	e := New(Options{CacheCapacity: 4})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				e.IndexDocument(makeDoc(fmt.Sprintf("doc-%d-%d", n, j), "concurrent hello world"))
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				e.Search("hello")
				e.Suggestions("con")
			}
		}()
	}
	wg.Wait()

	if stats := e.Statistics(); stats.DocumentsIndexed != 100 {
		t.Fatalf("expected 100 documents indexed, got %d", stats.DocumentsIndexed)
	}
}
