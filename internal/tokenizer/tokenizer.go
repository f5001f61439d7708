// Package tokenizer provides markdown-aware text tokenisation for the search
// engine. It splits content into lines, classifies each line by its markdown
// structure, and breaks lines on non-alphanumeric boundaries into lower-cased
// word tokens annotated with their position.
package tokenizer

import (
	"encoding/json"
	"strings"
	"unicode"
)

// MatchKind classifies the markdown structure of the line a token came from.
type MatchKind int

const (
	KindContent MatchKind = iota
	KindHeading
	KindCodeBlock
	KindLink
	KindEmphasis
)

var kindNames = map[MatchKind]string{
	KindContent:   "content",
	KindHeading:   "heading",
	KindCodeBlock: "code_block",
	KindLink:      "link",
	KindEmphasis:  "emphasis",
}

func (k MatchKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "content"
}

// MarshalJSON renders the kind by name so API payloads stay readable.
func (k MatchKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// contextSpan is the number of characters kept on either side of a token as
// its surrounding-context window. The window is clamped to the token's own
// line, so spans near line boundaries come out shorter than the nominal
// width.
const contextSpan = 50

// Token is a single normalised term with its location in the source text.
// Position, ContextStart and ContextEnd are offsets within the token's line,
// not the whole document; Line is 1-based and Column is the 1-based word
// index on the line.
type Token struct {
	Term         string
	Position     int
	Line         int
	Column       int
	ContextStart int
	ContextEnd   int
	Kind         MatchKind
}

// Tokenize breaks content into word tokens in document order. Each line is
// processed independently: the line is classified into a MatchKind, then
// split into words. Empty words are discarded; everything else is kept,
// including single-character words.
func Tokenize(content string) []Token {
	lines := strings.Split(content, "\n")
	tokens := make([]Token, 0, len(content)/8)
	for i, line := range lines {
		kind := ClassifyLine(line)
		for col, w := range scanWords(line) {
			tokens = append(tokens, Token{
				Term:         strings.ToLower(w.text),
				Position:     w.start,
				Line:         i + 1,
				Column:       col + 1,
				ContextStart: max(0, w.start-contextSpan),
				ContextEnd:   min(len(line), w.start+len(w.text)+contextSpan),
				Kind:         kind,
			})
		}
	}
	return tokens
}

// ClassifyLine assigns a MatchKind to one line of markdown using prefix and
// substring heuristics. Heading and code-fence prefixes win over inline link
// and emphasis markers; a line matching none of them is plain content.
func ClassifyLine(line string) MatchKind {
	switch {
	case strings.HasPrefix(line, "#"):
		return KindHeading
	case strings.HasPrefix(line, "```"):
		return KindCodeBlock
	case strings.Contains(line, "[") && strings.Contains(line, "]("):
		return KindLink
	case strings.Contains(line, "*"):
		return KindEmphasis
	default:
		return KindContent
	}
}

// Fields splits text on the same non-alphanumeric boundaries used for
// tokenisation, without position tracking. The index uses it to break raw
// query strings into terms.
func Fields(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// word is one run of letters or digits and its offset within the line.
type word struct {
	text  string
	start int
}

// scanWords mirrors the Fields split but keeps the offset of each word.
func scanWords(line string) []word {
	var words []word
	start := -1
	for i, r := range line {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			words = append(words, word{text: line[start:i], start: start})
			start = -1
		}
	}
	if start >= 0 {
		words = append(words, word{text: line[start:], start: start})
	}
	return words
}
