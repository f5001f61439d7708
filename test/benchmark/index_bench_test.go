// Package benchmark contains Go benchmarks for the tokenizer, the inverted
// index, and the engine search pipeline, measuring throughput and allocation
// behaviour.
package benchmark

import (
	"fmt"
	"testing"

	"github.com/lawrencelj/mdsearch/internal/engine"
	"github.com/lawrencelj/mdsearch/internal/index"
	"github.com/lawrencelj/mdsearch/pkg/document"
	"github.com/lawrencelj/mdsearch/pkg/monitor"
)

var benchTerms = []string{"markdown", "search", "index", "heading", "outline", "token", "cache", "engine"}

// benchDoc builds a small markdown document whose vocabulary rotates through
// benchTerms, so searches hit a predictable share of the corpus.
func benchDoc(i int) document.Document {
	a := benchTerms[i%len(benchTerms)]
	b := benchTerms[(i+1)%len(benchTerms)]
	c := benchTerms[(i+3)%len(benchTerms)]
	content := fmt.Sprintf(
		"# Guide %d\n\nThis guide covers %s and %s usage in production.\n\n## Details\n\nThe %s pipeline processes *%s* content with [references](https://example.com/%d).\n",
		i, a, b, c, a, i)
	return document.Document{
		ID:      fmt.Sprintf("doc-%d", i),
		Title:   fmt.Sprintf("Guide %d", i),
		Content: content,
		Outline: []document.Heading{
			{Level: 1, Title: fmt.Sprintf("Guide %d", i), Start: 0, End: len(content)},
		},
	}
}

// BenchmarkIndexAdd measures per-document insert throughput into the
// inverted index.
func BenchmarkIndexAdd(b *testing.B) {
	ix := index.New(monitor.New(0))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ix.Add(benchDoc(i))
	}
}

// BenchmarkIndexSearch measures single-term lookup latency over 10 000
// documents with full body resolution.
func BenchmarkIndexSearch(b *testing.B) {
	ix := index.New(monitor.New(0))
	docs := make(map[string]document.Document, 10000)
	for i := 0; i < 10000; i++ {
		doc := benchDoc(i)
		docs[doc.ID] = doc
		ix.Add(doc)
	}
	opts := index.DefaultOptions()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		results := ix.Search("search", opts, docs)
		_ = results
	}
}

// BenchmarkIndexSearchParallel measures concurrent read throughput on the
// index.
func BenchmarkIndexSearchParallel(b *testing.B) {
	ix := index.New(monitor.New(0))
	docs := make(map[string]document.Document, 10000)
	for i := 0; i < 10000; i++ {
		doc := benchDoc(i)
		docs[doc.ID] = doc
		ix.Add(doc)
	}
	opts := index.DefaultOptions()

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			results := ix.Search("search", opts, docs)
			_ = results
		}
	})
}

// BenchmarkEngineIndex measures full engine indexing throughput at various
// pre-loaded corpus sizes.
func BenchmarkEngineIndex(b *testing.B) {
	sizes := []int{100, 1000, 5000}
	for _, preload := range sizes {
		b.Run(fmt.Sprintf("preload_%d", preload), func(b *testing.B) {
			// Capacity large enough that eviction never runs during the
			// measured loop.
			eng := engine.New(engine.Options{CacheCapacity: 1 << 20})
			for i := 0; i < preload; i++ {
				eng.IndexDocument(benchDoc(i))
			}

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				eng.IndexDocument(benchDoc(preload + i))
			}
		})
	}
}

// BenchmarkEngineSearch measures end-to-end search latency across 10 000
// documents, query memo included.
func BenchmarkEngineSearch(b *testing.B) {
	eng := engine.New(engine.Options{CacheCapacity: 10000})
	for i := 0; i < 10000; i++ {
		eng.IndexDocument(benchDoc(i))
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		results := eng.Search(benchTerms[i%len(benchTerms)])
		_ = results
	}
}
