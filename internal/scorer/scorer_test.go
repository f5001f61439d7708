package scorer

import (
	"math"
	"testing"

	"github.com/lawrencelj/mdsearch/internal/tokenizer"
	"github.com/lawrencelj/mdsearch/pkg/document"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func docOfLength(n int) document.Document {
	content := make([]byte, n)
	for i := range content {
		content[i] = 'x'
	}
	return document.Document{ID: "doc", Content: string(content)}
}

func TestBaseScores(t *testing.T) {
	doc := docOfLength(100)

	tests := []struct {
		name  string
		term  string
		query string
		want  float64
	}{
		// Offset 0 in a 100-byte document adds the full 0.2 position bonus.
		{"exact match clamps", "world", "world", 1.0},
		{"exact match folds case", "world", "WORLD", 1.0},
		{"term contains query", "worldwide", "world", 0.9},
		{"unrelated term", "apple", "zzz", 0.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.term, 0, tokenizer.KindContent, tt.query, doc)
			if !approx(got, tt.want) {
				t.Errorf("Score(%q, %q) = %v, want %v", tt.term, tt.query, got, tt.want)
			}
		})
	}
}

func TestKindBonuses(t *testing.T) {
	doc := docOfLength(100)

	// Base 0.5 (unrelated query) at offset 50 adds a 0.1 position bonus,
	// so the kind bonus is the only thing varying between rows.
	tests := []struct {
		kind tokenizer.MatchKind
		want float64
	}{
		{tokenizer.KindContent, 0.6},
		{tokenizer.KindCodeBlock, 0.6},
		{tokenizer.KindLink, 0.7},
		{tokenizer.KindEmphasis, 0.8},
		{tokenizer.KindHeading, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			got := Score("apple", 50, tt.kind, "zzz", doc)
			if !approx(got, tt.want) {
				t.Errorf("Score(kind=%v) = %v, want %v", tt.kind, got, tt.want)
			}
		})
	}
}

func TestPositionBonusDecays(t *testing.T) {
	doc := docOfLength(100)

	early := Score("apple", 0, tokenizer.KindContent, "zzz", doc)
	middle := Score("apple", 50, tokenizer.KindContent, "zzz", doc)
	late := Score("apple", 90, tokenizer.KindContent, "zzz", doc)

	if !(early > middle && middle > late) {
		t.Errorf("expected monotonically decaying position bonus, got %v, %v, %v", early, middle, late)
	}
	if !approx(early, 0.7) || !approx(middle, 0.6) || !approx(late, 0.52) {
		t.Errorf("unexpected scores: %v, %v, %v", early, middle, late)
	}
}

func TestEmptyDocumentSkipsPositionBonus(t *testing.T) {
	doc := document.Document{ID: "doc"}

	got := Score("apple", 0, tokenizer.KindContent, "zzz", doc)
	if !approx(got, 0.5) {
		t.Errorf("expected bare base score on empty document, got %v", got)
	}
}

func TestScoreNeverExceedsOne(t *testing.T) {
	doc := docOfLength(10)

	got := Score("keyword", 0, tokenizer.KindHeading, "keyword", doc)
	if got != 1.0 {
		t.Errorf("expected clamp at 1.0, got %v", got)
	}
}

func TestNearestHeading(t *testing.T) {
	outline := []document.Heading{
		{Level: 1, Title: "Intro", Start: 0, End: 50},
		{Level: 1, Title: "Usage", Start: 50, End: 120},
	}

	tests := []struct {
		name   string
		offset int
		want   string
		ok     bool
	}{
		{"inside first section", 10, "Intro", true},
		{"just before second", 49, "Intro", true},
		{"on second heading", 50, "Usage", true},
		{"after second", 100, "Usage", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NearestHeading(outline, tt.offset)
			if ok != tt.ok || got != tt.want {
				t.Errorf("NearestHeading(%d) = %q, %t, want %q, %t", tt.offset, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestNearestHeadingNonePrecedes(t *testing.T) {
	outline := []document.Heading{
		{Level: 1, Title: "Late", Start: 20, End: 40},
	}
	if got, ok := NearestHeading(outline, 5); ok {
		t.Errorf("expected no preceding heading, got %q", got)
	}
	if _, ok := NearestHeading(nil, 5); ok {
		t.Error("expected no heading from empty outline")
	}
}

func TestNearestHeadingDescendsIntoChildren(t *testing.T) {
	outline := []document.Heading{
		{
			Level: 1, Title: "Parent", Start: 0, End: 100,
			Children: []document.Heading{
				{Level: 2, Title: "Child", Start: 40, End: 100},
			},
		},
	}

	if got, _ := NearestHeading(outline, 60); got != "Child" {
		t.Errorf("expected nested child heading, got %q", got)
	}
	if got, _ := NearestHeading(outline, 20); got != "Parent" {
		t.Errorf("expected parent heading before child starts, got %q", got)
	}
}
