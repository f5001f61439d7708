package index

import (
	"time"

	"github.com/lawrencelj/mdsearch/internal/tokenizer"
)

// Default search option values.
const (
	DefaultMaxResults    = 100
	DefaultContextLength = 50
)

// SearchOptions configures one search call. Values are immutable per call;
// callers start from DefaultOptions and override what they need.
type SearchOptions struct {
	CaseSensitive      bool `json:"case_sensitive"`
	WholeWords         bool `json:"whole_words"`
	UseRegex           bool `json:"use_regex"`
	SearchHeadingsOnly bool `json:"search_headings_only"`
	MaxResults         int  `json:"max_results"`
	IncludeContext     bool `json:"include_context"`
	ContextLength      int  `json:"context_length"`
}

// DefaultOptions returns the options used by basic search: case-insensitive
// partial matching with context extraction on and a cap of 100 results.
func DefaultOptions() SearchOptions {
	return SearchOptions{
		MaxResults:     DefaultMaxResults,
		IncludeContext: true,
		ContextLength:  DefaultContextLength,
	}
}

// normalized replaces non-positive numeric fields with their defaults.
func (o SearchOptions) normalized() SearchOptions {
	if o.MaxResults <= 0 {
		o.MaxResults = DefaultMaxResults
	}
	if o.ContextLength <= 0 {
		o.ContextLength = DefaultContextLength
	}
	return o
}

// SearchResult is one ranked hit returned to the caller. Score is clamped
// to [0, 1]; HeadingContext names the nearest heading preceding the match,
// when one exists.
type SearchResult struct {
	DocumentID     string              `json:"document_id"`
	Term           string              `json:"term"`
	Context        string              `json:"context,omitempty"`
	Line           int                 `json:"line"`
	Column         int                 `json:"column"`
	Position       int                 `json:"position"`
	Score          float64             `json:"score"`
	Kind           tokenizer.MatchKind `json:"kind"`
	HeadingContext string              `json:"heading_context,omitempty"`
}

// Statistics is a point-in-time snapshot of index health. IndexSize counts
// postings across all term buckets; AverageSearchTime is the rolling mean
// over recent searches in milliseconds.
type Statistics struct {
	DocumentsIndexed  int       `json:"documents_indexed"`
	TotalTerms        int       `json:"total_search_terms"`
	IndexSize         int       `json:"index_size"`
	AverageSearchTime float64   `json:"average_search_time_ms"`
	LastUpdated       time.Time `json:"last_updated"`
}
