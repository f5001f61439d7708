package docsource

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lawrencelj/mdsearch/pkg/document"
	apperrors "github.com/lawrencelj/mdsearch/pkg/errors"
)

// docIDLen is how many hex characters of the path hash form the identifier.
const docIDLen = 12

// DocID derives a stable document identifier from a path. The same path
// always yields the same ID, so re-indexing a file replaces rather than
// duplicates it.
func DocID(path string) string {
	sum := sha256.Sum256([]byte(filepath.ToSlash(path)))
	return fmt.Sprintf("%x", sum)[:docIDLen]
}

// Parse builds a Document from raw markdown bytes. Empty and non-UTF-8
// content are rejected with typed errors so callers can distinguish a bad
// document from a load failure.
func Parse(path string, data []byte, modified time.Time) (document.Document, error) {
	if len(data) == 0 {
		return document.Document{}, fmt.Errorf("%w: %s is empty", apperrors.ErrInvalidDocument, path)
	}
	if !utf8.Valid(data) {
		return document.Document{}, fmt.Errorf("%w: %s is not valid UTF-8", apperrors.ErrParse, path)
	}

	content := string(data)
	outline := parseOutline(content)
	return document.Document{
		ID:         DocID(path),
		Path:       path,
		Title:      documentTitle(outline, path),
		Content:    content,
		Outline:    outline,
		ModifiedAt: modified,
	}, nil
}

type rawHeading struct {
	level int
	title string
	start int
}

// parseOutline builds the heading tree. Fence lines, recognised by the same
// backtick prefix ClassifyLine uses, toggle code-block state and heading
// lines inside a fence are skipped. Start is the byte offset of the heading
// line within the whole document; End runs to the next heading at the same
// or a shallower level, or the end of the document.
func parseOutline(content string) []document.Heading {
	var raw []rawHeading
	offset := 0
	inFence := false
	for _, line := range strings.Split(content, "\n") {
		switch {
		case strings.HasPrefix(line, "```"):
			inFence = !inFence
		case !inFence:
			if level, title, ok := headingLine(line); ok {
				raw = append(raw, rawHeading{level: level, title: title, start: offset})
			}
		}
		offset += len(line) + 1
	}
	if len(raw) == 0 {
		return nil
	}

	ends := make([]int, len(raw))
	for i := range raw {
		ends[i] = len(content)
		for j := i + 1; j < len(raw); j++ {
			if raw[j].level <= raw[i].level {
				ends[i] = raw[j].start
				break
			}
		}
	}

	roots, _ := nestHeadings(raw, ends, 0, 0)
	return roots
}

// nestHeadings consumes headings deeper than level starting at i, returning
// the subtree and the index of the first heading it did not consume.
func nestHeadings(raw []rawHeading, ends []int, i, level int) ([]document.Heading, int) {
	var out []document.Heading
	for i < len(raw) {
		if raw[i].level <= level {
			return out, i
		}
		h := document.Heading{
			Level: raw[i].level,
			Title: raw[i].title,
			Start: raw[i].start,
			End:   ends[i],
		}
		h.Children, i = nestHeadings(raw, ends, i+1, h.Level)
		out = append(out, h)
	}
	return out, i
}

// headingLine mirrors the tokenizer's heuristic: any line starting with '#'
// is a heading, its level the run length of leading hashes.
func headingLine(line string) (level int, title string, ok bool) {
	if !strings.HasPrefix(line, "#") {
		return 0, "", false
	}
	for level < len(line) && line[level] == '#' {
		level++
	}
	return level, strings.TrimSpace(line[level:]), true
}

// documentTitle prefers the first top-level heading and falls back to the
// file name without its extension.
func documentTitle(outline []document.Heading, path string) string {
	for _, h := range outline {
		if h.Level == 1 && h.Title != "" {
			return h.Title
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
