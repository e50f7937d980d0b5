package structure

import (
	"testing"

	"github.com/loganrooks/scholardoc/internal/heading"
)

type fakeSource struct {
	candidates []heading.Candidate
	err        error
}

func (f fakeSource) Candidates() ([]heading.Candidate, error) { return f.candidates, f.err }
func (f fakeSource) Name() string                             { return "fake" }

// TestExtractScenarioCMergesNonOverlappingDetectSpan is spec §4.H
// Testable Scenario C verbatim: outline yields a chapter and a nested
// subsection, detect yields an appendix the outline never mentions. The
// appendix does not overlap any equal-or-higher-level outline span (the
// "1.1 Intro" subsection is deeper, not equal-or-higher), so it must
// survive the merge alongside both outline spans.
func TestExtractScenarioCMergesNonOverlappingDetectSpan(t *testing.T) {
	outline := fakeSource{candidates: []heading.Candidate{
		{Title: "Chapter 1", Page: 3, Level: 1, Confidence: 0.95, Source: "outline"},
		{Title: "1.1 Intro", Page: 4, Level: 2, Confidence: 0.95, Source: "outline"},
	}}
	detect := fakeSource{candidates: []heading.Candidate{
		{Title: "Appendix", Page: 50, Level: 1, Confidence: 0.6, Source: "detect"},
	}}

	spans, err := Extract(60, outline, detect, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(spans) != 3 {
		t.Fatalf("expected 3 spans (scenario C), got %d: %+v", len(spans), spans)
	}
	if spans[0].Title != "Chapter 1" || spans[0].StartPage != 3 || spans[0].EndPage != 4 {
		t.Fatalf("unexpected first span: %+v", spans[0])
	}
	if spans[1].Title != "1.1 Intro" || spans[1].StartPage != 4 || spans[1].EndPage != 50 {
		t.Fatalf("unexpected second span: %+v", spans[1])
	}
	if spans[2].Title != "Appendix" || spans[2].Source != "detect" || spans[2].StartPage != 50 || spans[2].EndPage != 60 {
		t.Fatalf("unexpected third span: %+v", spans[2])
	}
}

// TestExtractDropsDetectCandidateOverlappingEqualOrHigherLevelSpan covers
// the other half of merge rule 2: a lower-priority candidate that falls
// inside an existing span of equal or higher level is dropped, not
// merged in.
func TestExtractDropsDetectCandidateOverlappingEqualOrHigherLevelSpan(t *testing.T) {
	outline := fakeSource{candidates: []heading.Candidate{
		{Title: "Chapter 1", Page: 3, Level: 1, Confidence: 0.95, Source: "outline"},
		{Title: "Chapter 2", Page: 10, Level: 1, Confidence: 0.95, Source: "outline"},
	}}
	detect := fakeSource{candidates: []heading.Candidate{
		{Title: "Should not win", Page: 3, Level: 1, Confidence: 0.6, Source: "detect"},
	}}

	spans, err := Extract(20, outline, detect, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(spans) != 2 {
		t.Fatalf("expected the overlapping detect candidate to be dropped, got %d spans: %+v", len(spans), spans)
	}
	for _, s := range spans {
		if s.Title == "Should not win" {
			t.Fatalf("overlapping lower-priority candidate should have been dropped, got %+v", spans)
		}
	}
}

func TestExtractFallsBackToDetectWhenOutlineEmpty(t *testing.T) {
	outline := fakeSource{candidates: nil}
	detect := fakeSource{candidates: []heading.Candidate{
		{Title: "Introduction", Page: 0, Level: 1, Confidence: 0.6, Source: "detect"},
	}}

	spans, err := Extract(4, outline, detect, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(spans) != 1 || spans[0].Source != "detect" {
		t.Fatalf("expected single detect span, got %+v", spans)
	}
}

func TestExtractFallbackWhenNoSourceYieldsCandidates(t *testing.T) {
	spans, err := Extract(7, fakeSource{}, fakeSource{}, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(spans) != 1 {
		t.Fatalf("expected single fallback span, got %d", len(spans))
	}
	if spans[0].Confidence != fallbackConfidence {
		t.Fatalf("expected fallback confidence %v, got %v", fallbackConfidence, spans[0].Confidence)
	}
	if spans[0].StartPage != 0 || spans[0].EndPage != 7 {
		t.Fatalf("expected fallback span to cover whole document, got %+v", spans[0])
	}
}

func TestEnrichFromToCFillsBlankTitlesOnly(t *testing.T) {
	outline := fakeSource{candidates: []heading.Candidate{
		{Title: "", Page: 0, Level: 1, Confidence: 0.5, Source: "detect"},
		{Title: "Already titled", Page: 2, Level: 1, Confidence: 0.5, Source: "detect"},
	}}
	toc := []heading.Candidate{
		{Title: "From ToC", Page: 0, Source: "toc"},
		{Title: "Ignored", Page: 2, Source: "toc"},
	}

	spans, err := Extract(4, nil, outline, toc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if spans[0].Title != "From ToC" {
		t.Fatalf("expected blank title filled from toc, got %q", spans[0].Title)
	}
	if spans[1].Title != "Already titled" {
		t.Fatalf("expected existing title preserved, got %q", spans[1].Title)
	}
}

func TestNoOverlapValidatorRejectsOverlap(t *testing.T) {
	spans := []Span{
		{StartPage: 0, EndPage: 5},
		{StartPage: 3, EndPage: 8},
	}
	if err := NoOverlapValidator(spans); err == nil {
		t.Fatal("expected overlap to be rejected")
	}
}

func TestHierarchyValidatorRejectsSkippedLevel(t *testing.T) {
	spans := []Span{
		{Level: 1},
		{Level: 3},
	}
	if err := HierarchyValidator(spans); err == nil {
		t.Fatal("expected skipped hierarchy level to be rejected")
	}
}

func TestHierarchyValidatorAllowsGradualDescent(t *testing.T) {
	spans := []Span{
		{Level: 1},
		{Level: 2},
		{Level: 3},
		{Level: 2},
		{Level: 1},
	}
	if err := HierarchyValidator(spans); err != nil {
		t.Fatalf("expected gradual descent to validate, got %v", err)
	}
}
