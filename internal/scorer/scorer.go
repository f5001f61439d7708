// Package scorer computes bounded relevance scores for index matches.
// Scoring is a pure function of the matched term, its location, and the
// owning document; no index state is consulted.
package scorer

import (
	"strings"

	"github.com/lawrencelj/mdsearch/internal/tokenizer"
	"github.com/lawrencelj/mdsearch/pkg/document"
)

const (
	exactMatchScore  = 1.0
	containsScore    = 0.7
	partialScore     = 0.5
	headingBonus     = 0.5
	emphasisBonus    = 0.2
	linkBonus        = 0.1
	positionBonusMax = 0.2
)

// Score ranks one match of term at offset within doc against the full query
// string. The base score reflects how closely the term matches the whole
// query, structural kind and early position add bonuses, and the result is
// clamped to 1.0.
func Score(term string, offset int, kind tokenizer.MatchKind, query string, doc document.Document) float64 {
	score := baseScore(term, query)

	switch kind {
	case tokenizer.KindHeading:
		score += headingBonus
	case tokenizer.KindEmphasis:
		score += emphasisBonus
	case tokenizer.KindLink:
		score += linkBonus
	}

	if n := doc.Length(); n > 0 {
		score += (1 - float64(offset)/float64(n)) * positionBonusMax
	}

	return min(score, 1.0)
}

func baseScore(term, query string) float64 {
	t, q := strings.ToLower(term), strings.ToLower(query)
	switch {
	case t == q:
		return exactMatchScore
	case strings.Contains(t, q):
		return containsScore
	default:
		return partialScore
	}
}

// NearestHeading returns the title of the heading with the greatest start
// position at or before offset, searching the outline depth-first. The
// second return is false when no heading precedes the offset.
func NearestHeading(outline []document.Heading, offset int) (string, bool) {
	best := -1
	title := ""
	for _, h := range document.FlattenOutline(outline) {
		if h.Start <= offset && h.Start > best {
			best = h.Start
			title = h.Title
		}
	}
	if best < 0 {
		return "", false
	}
	return title, true
}
