package engine

import "github.com/lawrencelj/mdsearch/pkg/document"

// OutlineItem is one heading in a document's navigation tree.
type OutlineItem struct {
	Title    string        `json:"title"`
	Level    int           `json:"level"`
	Start    int           `json:"start"`
	End      int           `json:"end"`
	Children []OutlineItem `json:"children,omitempty"`
}

// GenerateOutline converts a document's heading tree into outline items.
// It is a pure transformation and touches no engine state.
func (e *Engine) GenerateOutline(doc document.Document) []OutlineItem {
	return outlineItems(doc.Outline)
}

func outlineItems(headings []document.Heading) []OutlineItem {
	if len(headings) == 0 {
		return nil
	}
	items := make([]OutlineItem, 0, len(headings))
	for _, h := range headings {
		items = append(items, OutlineItem{
			Title:    h.Title,
			Level:    h.Level,
			Start:    h.Start,
			End:      h.End,
			Children: outlineItems(h.Children),
		})
	}
	return items
}
