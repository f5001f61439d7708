// Package document defines the shared document model passed between the
// document source, the search engine, and its callers: fully parsed
// documents, their hierarchical outlines, and the lightweight references the
// engine retains after the full body has been handed to the bounded cache.
package document

import "time"

// Document is a fully parsed document handed to the engine for indexing.
// The engine never owns a Document long-term; it keeps a Reference and
// caches the body in its bounded cache.
type Document struct {
	ID         string    `json:"id"`
	Path       string    `json:"path,omitempty"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Outline    []Heading `json:"outline,omitempty"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Length returns the content length in bytes.
func (d Document) Length() int { return len(d.Content) }

// Heading is one node of a document outline. Start and End are byte offsets
// into the document content covering the heading's section; Children holds
// nested sub-headings.
type Heading struct {
	Level    int       `json:"level"`
	Title    string    `json:"title"`
	Start    int       `json:"start"`
	End      int       `json:"end"`
	Children []Heading `json:"children,omitempty"`
}

// Reference is the memory-cheap stand-in for a Document kept by the engine
// once the full body may have been evicted from the cache. The outline is
// stored flattened, without children.
type Reference struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Path          string    `json:"path,omitempty"`
	ModifiedAt    time.Time `json:"modified_at"`
	Outline       []Heading `json:"outline,omitempty"`
	ContentLength int       `json:"content_length"`
}

// NewReference builds a Reference from a full document.
func NewReference(doc Document) Reference {
	return Reference{
		ID:            doc.ID,
		Title:         doc.Title,
		Path:          doc.Path,
		ModifiedAt:    doc.ModifiedAt,
		Outline:       FlattenOutline(doc.Outline),
		ContentLength: len(doc.Content),
	}
}

// FlattenOutline returns the outline headings in document order with the
// hierarchy stripped. The returned headings share no structure with the
// input; their Children fields are nil.
func FlattenOutline(headings []Heading) []Heading {
	if len(headings) == 0 {
		return nil
	}
	flat := make([]Heading, 0, len(headings))
	var walk func([]Heading)
	walk = func(hs []Heading) {
		for _, h := range hs {
			children := h.Children
			h.Children = nil
			flat = append(flat, h)
			walk(children)
		}
	}
	walk(headings)
	return flat
}
