package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/loganrooks/scholardoc/internal/document"
	"github.com/loganrooks/scholardoc/internal/ocrquality"
)

func sampleDocument() document.ScholarDocument {
	return document.ScholarDocument{
		Text: "Chapter One\nThis is tbese body text.\n",
		PageSpans: []document.PageSpan{
			{Page: 0, PrintedPage: "1", StartOffset: 0, EndOffset: 37},
		},
		SectionSpans: []document.SectionSpan{
			{Start: 0, End: 37, Title: "Chapter One", Level: 1, Confidence: 0.95, Source: "outline"},
		},
		FlaggedWords: []ocrquality.FlaggedWord{
			{Page: 0, Offset: 20, Text: "tbese", Reason: ocrquality.ReasonNotInDict, Confidence: 0.8},
		},
		Quality: document.QualityReport{TotalWords: 7, FlaggedWords: 1, FlaggedRatio: 1.0 / 7, Level: document.QualityBad},
	}
}

func TestJSONRoundTripsStructure(t *testing.T) {
	doc := sampleDocument()
	raw, err := JSON(doc, map[string]string{"source": "test.pdf"})
	if err != nil {
		t.Fatalf("JSON export failed: %v", err)
	}

	var decoded jsonDocument
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("failed to decode exported json: %v", err)
	}
	if decoded.Text != doc.Text {
		t.Fatalf("text mismatch: got %q", decoded.Text)
	}
	if len(decoded.Sections) != 1 || decoded.Sections[0].Title != "Chapter One" {
		t.Fatalf("unexpected sections: %+v", decoded.Sections)
	}
	if len(decoded.Flags) != 1 || decoded.Flags[0].Reason != "NotInDict" {
		t.Fatalf("unexpected flags: %+v", decoded.Flags)
	}
	if decoded.Metadata["source"] != "test.pdf" {
		t.Fatalf("expected metadata to round trip, got %+v", decoded.Metadata)
	}
}

func TestMarkdownEmitsHeadingsAndPageMarkers(t *testing.T) {
	doc := sampleDocument()
	md := Markdown(doc, MarkdownOptions{PageMarkers: PageMarkerComment})

	if !strings.Contains(md, "# Chapter One") {
		t.Fatalf("expected level-1 heading, got %q", md)
	}
	if !strings.Contains(md, "<!-- page: 1 -->") {
		t.Fatalf("expected page marker, got %q", md)
	}
	if strings.Contains(md, "^⚠") {
		t.Fatalf("debug flag markers must not appear without Debug set: %q", md)
	}
}

func TestMarkdownDebugInlinesFlags(t *testing.T) {
	doc := sampleDocument()
	md := Markdown(doc, MarkdownOptions{PageMarkers: PageMarkerNone, Debug: true})
	if !strings.Contains(md, "tbese^⚠") {
		t.Fatalf("expected inline flag marker, got %q", md)
	}
}

func TestSQLiteWritesAllTables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.sqlite")
	doc := sampleDocument()

	if err := SQLite(path, doc, map[string]string{"source": "test.pdf"}); err != nil {
		t.Fatalf("SQLite export failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected sqlite file to exist: %v", err)
	}
}
