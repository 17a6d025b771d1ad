package textscan

import (
	"testing"

	"github.com/partforge/ooxmlsvc/internal/document"
)

func newDocWithParts(parts map[string]string) *document.Document {
	d := document.New(document.KindDOCX)
	for path, text := range parts {
		d.Put(&document.Part{Path: path, Type: document.PartXML, Text: text})
	}
	return d
}

func TestRewriteLiteralGlobal(t *testing.T) {
	d := newDocWithParts(map[string]string{
		"word/document.xml": "hello world, hello again",
	})
	s := New()
	result, err := s.Rewrite(d, "hello", "goodbye", "", false, "")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if result.Total != 2 {
		t.Errorf("Total = %d, want 2", result.Total)
	}
	part, _ := d.Get("word/document.xml")
	if part.Text != "goodbye world, goodbye again" {
		t.Errorf("Text = %q", part.Text)
	}
}

func TestRewriteNonGlobalReplacesOnlyFirst(t *testing.T) {
	d := newDocWithParts(map[string]string{
		"word/document.xml": "a a a",
	})
	s := New()
	result, err := s.Rewrite(d, "a", "b", "", false, "")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if result.Total != 3 {
		t.Errorf("Total (default g) = %d, want 3", result.Total)
	}

	d2 := newDocWithParts(map[string]string{"word/document.xml": "a a a"})
	result2, err := s.Rewrite(d2, "a", "b", "", false, "x")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if result2.Total != 1 {
		t.Errorf("Total (non-global) = %d, want 1", result2.Total)
	}
	part, _ := d2.Get("word/document.xml")
	if part.Text != "b a a" {
		t.Errorf("Text = %q", part.Text)
	}
}

func TestRewriteScopeLimitsParts(t *testing.T) {
	d := newDocWithParts(map[string]string{
		"ppt/slides/slide1.xml": "hello",
		"ppt/notesSlides/notesSlide1.xml": "hello",
	})
	s := New()
	result, err := s.Rewrite(d, "hello", "hi", "ppt/slides/", false, "")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if result.Total != 1 {
		t.Errorf("Total = %d, want 1 (scope should exclude notesSlides)", result.Total)
	}
}

func TestRewriteRegexWithCaptureGroup(t *testing.T) {
	d := newDocWithParts(map[string]string{
		"word/document.xml": "name: Alice",
	})
	s := New()
	result, err := s.Rewrite(d, `name: (\w+)`, "greeting: $1", "", true, "")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if result.Total != 1 {
		t.Errorf("Total = %d, want 1", result.Total)
	}
	part, _ := d.Get("word/document.xml")
	if part.Text != "greeting: Alice" {
		t.Errorf("Text = %q", part.Text)
	}
}

func TestRewriteRejectsOutOfRangeCaptureGroup(t *testing.T) {
	d := newDocWithParts(map[string]string{"word/document.xml": "name: Alice"})
	s := New()
	if _, err := s.Rewrite(d, `name: (\w+)`, "greeting: $2", "", true, ""); err == nil {
		t.Fatal("expected error for out-of-range capture group reference")
	}
}

func TestRewriteInvalidRegex(t *testing.T) {
	d := newDocWithParts(map[string]string{"word/document.xml": "x"})
	s := New()
	if _, err := s.Rewrite(d, `(unclosed`, "y", "", true, ""); err == nil {
		t.Fatal("expected error for invalid regex pattern")
	}
}

func TestRewriteCaseInsensitiveFlag(t *testing.T) {
	d := newDocWithParts(map[string]string{"word/document.xml": "Hello HELLO hello"})
	s := New()
	result, err := s.Rewrite(d, "hello", "hi", "", false, "gi")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if result.Total != 3 {
		t.Errorf("Total = %d, want 3", result.Total)
	}
}

func TestRewriteNoMatchLeavesPartUntouched(t *testing.T) {
	d := newDocWithParts(map[string]string{"word/document.xml": "nothing here"})
	// Put marks every fixture part Modified; clear it so the check below
	// observes only what Rewrite does.
	part, _ := d.Get("word/document.xml")
	part.Modified = false
	s := New()
	if _, err := s.Rewrite(d, "zzz", "yyy", "", false, ""); err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if part.Modified {
		t.Error("a part with no matches should not be marked Modified")
	}
}

func TestScanDoesNotMutate(t *testing.T) {
	d := newDocWithParts(map[string]string{"word/document.xml": "hello hello"})
	s := New()
	result, err := s.Scan(d, "hello", "", false, "")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if result.Total != 2 {
		t.Errorf("Total = %d, want 2", result.Total)
	}
	part, _ := d.Get("word/document.xml")
	if part.Text != "hello hello" {
		t.Errorf("Scan must not mutate: Text = %q", part.Text)
	}
}

func TestLiteralFindEscapesRegexMetachars(t *testing.T) {
	d := newDocWithParts(map[string]string{"word/document.xml": "a.b.c"})
	s := New()
	result, err := s.Rewrite(d, "a.b", "X", "", false, "")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if result.Total != 1 {
		t.Errorf("Total = %d, want 1 (literal '.' must not match any char)", result.Total)
	}
	part, _ := d.Get("word/document.xml")
	if part.Text != "X.c" {
		t.Errorf("Text = %q", part.Text)
	}
}
