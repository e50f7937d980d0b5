// Package structure runs the cascading heading/structure extractor (spec
// §4.H): PDF outline first, then visual heading detection, then
// table-of-contents enrichment. Precedence is strict, never a
// probabilistic blend of sources.
package structure

import (
	"sort"

	"github.com/loganrooks/scholardoc/internal/heading"
)

// Span is one extracted section, anchored to a half-open page range.
type Span struct {
	Title      string
	Level      int
	StartPage  int
	EndPage    int // exclusive; set once the next span's start is known
	Confidence float64
	Source     string
}

// fallbackConfidence is assigned to the single top-level span synthesized
// when no source yields any candidate at all (spec §4.H "Edge cases").
const fallbackConfidence = 0.1

// Extract runs outline, then detect, in strict priority order. The
// highest-priority source that produces candidates seeds the span list
// outright; each lower-priority source's candidates are then folded in
// one at a time, each accepted only if it does not overlap any
// already-accepted span of equal or higher level (spec §4.H merge rule
// 2) — this is how a detect-only appendix heading can survive alongside
// an outline that never mentions it, while a detect candidate that just
// re-describes an outline span is dropped. toc, if non-empty, enriches
// the merged span list by filling titles left blank; it never
// introduces spans of its own.
func Extract(pageCount int, outline, detect heading.Source, toc []heading.Candidate) ([]Span, error) {
	var sources [][]heading.Candidate

	for _, src := range []heading.Source{outline, detect} {
		if src == nil {
			sources = append(sources, nil)
			continue
		}
		candidates, err := src.Candidates()
		if err != nil {
			return nil, err
		}
		sources = append(sources, candidates)
	}

	merged := cascade(sources, pageCount)
	if len(merged) == 0 {
		return []Span{{
			Title:      "",
			Level:      1,
			StartPage:  0,
			EndPage:    pageCount,
			Confidence: fallbackConfidence,
			Source:     "fallback",
		}}, nil
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Page < merged[j].Page
	})

	spans := toSpans(merged, pageCount)
	spans = enrichFromToC(spans, toc)

	if err := NoOverlapValidator(spans); err != nil {
		return nil, err
	}
	if err := HierarchyValidator(spans); err != nil {
		return nil, err
	}
	return spans, nil
}

// cascade folds each source's candidates into the accepted set in
// priority order. The first source with any candidates is accepted
// unconditionally (there is nothing yet to overlap); every later source
// is filtered against the span shape the accepted set forms so far.
func cascade(sources [][]heading.Candidate, pageCount int) []heading.Candidate {
	var accepted []heading.Candidate
	var currentSpans []Span

	for _, candidates := range sources {
		if len(candidates) == 0 {
			continue
		}
		for _, c := range candidates {
			if overlapsEqualOrHigherLevel(currentSpans, c) {
				continue
			}
			accepted = append(accepted, c)
		}

		sorted := make([]heading.Candidate, len(accepted))
		copy(sorted, accepted)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Page < sorted[j].Page })
		currentSpans = toSpans(sorted, pageCount)
	}
	return accepted
}

// overlapsEqualOrHigherLevel reports whether c's page falls inside an
// existing span whose level is equal to or shallower than c's (spec
// §4.H: "does not overlap any existing span of equal or higher level").
// A deeper existing span (e.g. an outline subsection) never blocks a
// shallower lower-priority candidate from being accepted alongside it.
func overlapsEqualOrHigherLevel(spans []Span, c heading.Candidate) bool {
	for _, s := range spans {
		if s.Level <= c.Level && c.Page >= s.StartPage && c.Page < s.EndPage {
			return true
		}
	}
	return false
}

func toSpans(candidates []heading.Candidate, pageCount int) []Span {
	spans := make([]Span, len(candidates))
	for i, c := range candidates {
		spans[i] = Span{
			Title:      c.Title,
			Level:      c.Level,
			StartPage:  c.Page,
			Confidence: c.Confidence,
			Source:     c.Source,
		}
	}
	for i := range spans {
		if i+1 < len(spans) {
			spans[i].EndPage = spans[i+1].StartPage
		} else {
			spans[i].EndPage = pageCount
		}
	}
	return spans
}

// enrichFromToC fills a blank span title from the nearest table-of-contents
// entry starting on the same page, without changing page ranges or
// confidence: the winning source's structure is authoritative, the ToC
// only supplies missing labels (spec §4.H).
func enrichFromToC(spans []Span, toc []heading.Candidate) []Span {
	if len(toc) == 0 {
		return spans
	}
	byPage := make(map[int]string, len(toc))
	for _, c := range toc {
		if c.Title != "" {
			byPage[c.Page] = c.Title
		}
	}
	for i := range spans {
		if spans[i].Title == "" {
			if title, ok := byPage[spans[i].StartPage]; ok {
				spans[i].Title = title
			}
		}
	}
	return spans
}

// NoOverlapValidator requires spans to be sorted by StartPage with each
// span's EndPage no later than the next span's StartPage (spec §3
// SectionSpan invariant: spans never overlap).
func NoOverlapValidator(spans []Span) error {
	for i := 1; i < len(spans); i++ {
		if spans[i].StartPage < spans[i-1].EndPage {
			return &ValidationError{Msg: "overlapping section spans"}
		}
	}
	return nil
}

// HierarchyValidator requires levels to only ever increase by one step
// at a time: a level-3 heading cannot directly follow a level-1 heading
// without an intervening level-2 (spec §3 SectionSpan invariant).
func HierarchyValidator(spans []Span) error {
	depth := 0
	for _, s := range spans {
		if s.Level > depth+1 {
			return &ValidationError{Msg: "section hierarchy skips a level"}
		}
		depth = s.Level
	}
	return nil
}

// ValidationError reports a structural invariant violation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }
