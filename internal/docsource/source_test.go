package docsource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/lawrencelj/mdsearch/pkg/config"
	"github.com/lawrencelj/mdsearch/pkg/document"
	apperrors "github.com/lawrencelj/mdsearch/pkg/errors"
)

func newSource(t *testing.T, root string, maxSize int64) *Source {
	t.Helper()
	return New(config.SourceConfig{
		Root:        root,
		Extensions:  []string{".md", ".markdown"},
		Ignore:      []string{".git", "node_modules", "vendor"},
		MaxFileSize: maxSize,
	})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestParseOutlineNesting(t *testing.T) {
	content := "# Guide\n\n## Install\n\ntext here\n\n## Usage\n\n### Flags\n\nmore\n\n# Appendix\n"

	got := parseOutline(content)
	want := []document.Heading{
		{
			Level: 1, Title: "Guide", Start: 0, End: 59,
			Children: []document.Heading{
				{Level: 2, Title: "Install", Start: 9, End: 32},
				{
					Level: 2, Title: "Usage", Start: 32, End: 59,
					Children: []document.Heading{
						{Level: 3, Title: "Flags", Start: 42, End: 59},
					},
				},
			},
		},
		{Level: 1, Title: "Appendix", Start: 59, End: 70},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("outline mismatch\ngot  %+v\nwant %+v", got, want)
	}
}

func TestParseOutlineNoHeadings(t *testing.T) {
	if got := parseOutline("just prose\nand more prose\n"); got != nil {
		t.Errorf("expected nil outline, got %+v", got)
	}
}

func TestParseOutlineSkipsDeeperFirstHeading(t *testing.T) {
	// A document can open below level 1; both headings become roots.
	got := parseOutline("## Early\n\n# Late\n")
	if len(got) != 2 {
		t.Fatalf("expected 2 root headings, got %d", len(got))
	}
	if got[0].Title != "Early" || got[1].Title != "Late" {
		t.Errorf("unexpected roots %+v", got)
	}
}

func TestParseOutlineSkipsFencedHeadings(t *testing.T) {
	content := "# Title\n\n```\n# not a heading, a shell comment\n```\n\nBody text.\n"

	got := parseOutline(content)
	if len(got) != 1 {
		t.Fatalf("expected 1 heading, got %d: %+v", len(got), got)
	}
	// The fenced line must neither appear in the outline nor truncate the
	// real heading's range.
	if got[0].Title != "Title" || got[0].Start != 0 || got[0].End != len(content) {
		t.Errorf("unexpected heading %+v", got[0])
	}
}

func TestParseOutlineFenceBetweenHeadings(t *testing.T) {
	got := parseOutline("# A\n\n```\n# fake\n```\n\n# B\n")
	if len(got) != 2 {
		t.Fatalf("expected 2 root headings, got %d: %+v", len(got), got)
	}
	if got[0].Title != "A" || got[1].Title != "B" {
		t.Fatalf("unexpected roots %+v", got)
	}
	if got[0].End != got[1].Start {
		t.Errorf("expected A to run up to B, got End %d and Start %d", got[0].End, got[1].Start)
	}
}

func TestParseTitle(t *testing.T) {
	doc, err := Parse("guide.md", []byte("# The Guide\n\nbody\n"), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "The Guide" {
		t.Errorf("expected title from heading, got %q", doc.Title)
	}

	doc, err = Parse("notes.md", []byte("no headings here\n"), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "notes" {
		t.Errorf("expected file-name fallback title, got %q", doc.Title)
	}
}

func TestParseTitleIgnoresFencedComment(t *testing.T) {
	doc, err := Parse("setup.md", []byte("```sh\n# install deps\n```\n\n# Real Title\n\nBody.\n"), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "Real Title" {
		t.Errorf("expected title from the heading after the fence, got %q", doc.Title)
	}
}

func TestParseRejectsEmpty(t *testing.T) {
	_, err := Parse("empty.md", nil, time.Now())
	if !errors.Is(err, apperrors.ErrInvalidDocument) {
		t.Errorf("expected ErrInvalidDocument, got %v", err)
	}
}

func TestParseRejectsInvalidUTF8(t *testing.T) {
	_, err := Parse("binary.md", []byte{0xff, 0xfe, 0xfd}, time.Now())
	if !errors.Is(err, apperrors.ErrParse) {
		t.Errorf("expected ErrParse, got %v", err)
	}
}

func TestDocID(t *testing.T) {
	a := DocID("docs/guide.md")
	if len(a) != docIDLen {
		t.Fatalf("expected %d hex characters, got %q", docIDLen, a)
	}
	if a != DocID("docs/guide.md") {
		t.Error("expected identical IDs for the same path")
	}
	if a == DocID("docs/other.md") {
		t.Error("expected distinct IDs for distinct paths")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guide.md")
	writeFile(t, path, "# Guide\n\nhello world\n")

	src := newSource(t, dir, 1<<20)
	doc, err := src.LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID == "" || doc.Title != "Guide" || doc.Content == "" {
		t.Errorf("incomplete document %+v", doc)
	}
	if doc.ModifiedAt.IsZero() {
		t.Error("expected a modification time")
	}
	if len(doc.Outline) != 1 {
		t.Errorf("expected 1 outline heading, got %d", len(doc.Outline))
	}
}

func TestLoadFileMissing(t *testing.T) {
	src := newSource(t, t.TempDir(), 1<<20)
	_, err := src.LoadFile(filepath.Join(src.Root(), "absent.md"))
	if !errors.Is(err, apperrors.ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestLoadFileWrongExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "readme.txt")
	writeFile(t, path, "plain text")

	src := newSource(t, dir, 1<<20)
	_, err := src.LoadFile(path)
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLoadFileTooLarge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.md")
	writeFile(t, path, "this content is over the limit")

	src := newSource(t, dir, 10)
	_, err := src.LoadFile(path)
	if !errors.Is(err, apperrors.ErrDocumentTooLarge) {
		t.Errorf("expected ErrDocumentTooLarge, got %v", err)
	}
}

func TestLoadWalksTree(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.md"), "# A\n\nalpha\n")
	writeFile(t, filepath.Join(dir, "sub", "b.md"), "# B\n\nbeta\n")
	writeFile(t, filepath.Join(dir, "node_modules", "skip.md"), "# Skip\n")
	writeFile(t, filepath.Join(dir, "c.txt"), "not markdown")
	writeFile(t, filepath.Join(dir, "empty.md"), "")

	src := newSource(t, dir, 1<<20)
	docs, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].Title != "A" || docs[1].Title != "B" {
		t.Errorf("unexpected documents %q and %q", docs[0].Title, docs[1].Title)
	}
}

func TestLoadIgnoresFilePatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "kept.md"), "# Kept\n")
	writeFile(t, filepath.Join(dir, "wip_draft.md"), "# Draft\n")

	src := New(config.SourceConfig{
		Root:        dir,
		Extensions:  []string{".md"},
		Ignore:      []string{"*_draft.md"},
		MaxFileSize: 1 << 20,
	})
	docs, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 || docs[0].Title != "Kept" {
		t.Errorf("expected only kept.md, got %d documents", len(docs))
	}
}

func TestLoadHonorsContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.md"), "# A\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := newSource(t, dir, 1<<20)
	if _, err := src.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
