package index

import "github.com/lawrencelj/mdsearch/internal/tokenizer"

// Posting records one occurrence of a normalised term in one document.
// Position and the context bounds are offsets within the source line, not
// the document, matching what the tokenizer reports.
type Posting struct {
	DocID        string
	Term         string
	Position     int
	Line         int
	Column       int
	ContextStart int
	ContextEnd   int
	Kind         tokenizer.MatchKind
}

// Key returns the posting's identity. Two postings with the same key refer
// to the same occurrence regardless of their remaining fields.
func (p Posting) Key() PostingKey {
	return PostingKey{DocID: p.DocID, Term: p.Term, Position: p.Position}
}

// PostingKey is the composite identity of a posting: the (document, term,
// offset) triple. It deduplicates occurrences within a term bucket and
// across multi-term queries, and drives filtering during removal.
type PostingKey struct {
	DocID    string
	Term     string
	Position int
}

// postingSet holds the postings of one term keyed by identity. Inserting the
// same occurrence twice is a no-op; iteration order carries no meaning.
type postingSet map[PostingKey]Posting
