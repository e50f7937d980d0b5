// Package document assembles the per-page rejoin/flag results and the
// extracted section spans into the canonical ScholarDocument (spec
// §4.I), then scores it with a quality report (spec §4.J).
package document

import (
	"strings"

	"github.com/loganrooks/scholardoc/internal/ocrquality"
	"github.com/loganrooks/scholardoc/internal/structure"
)

// PageSpan anchors one source page's byte range within the document's
// concatenated clean text.
type PageSpan struct {
	Page        int
	PrintedPage string
	StartOffset int
	EndOffset   int
}

// QualityLevel buckets a document's estimated trustworthiness.
type QualityLevel string

const (
	QualityGood     QualityLevel = "GOOD"
	QualityMarginal QualityLevel = "MARGINAL"
	QualityBad      QualityLevel = "BAD"
)

const (
	goodThreshold     = 0.02
	marginalThreshold = 0.10
)

// QualityReport summarizes a document's flagged-word density.
type QualityReport struct {
	TotalWords     int
	FlaggedWords   int
	FlaggedRatio   float64
	Level          QualityLevel
	RunningHeaders int
	RunningFooters int
}

// IsRAGReady reports whether a document is clean enough to hand to a
// downstream retrieval/embedding pipeline without manual review (spec
// §4.J): only GOOD documents qualify; MARGINAL and BAD ones do not.
func (q QualityReport) IsRAGReady() bool {
	return q.Level == QualityGood
}

// SectionSpan is a structure.Span translated from page-index space into
// the clean-text character offsets the canonical model requires (spec §3
// SectionSpan: "[start, end) character offsets in clean text").
type SectionSpan struct {
	Start      int
	End        int
	Title      string
	Level      int
	Confidence float64
	Source     string
}

// ScholarDocument is the canonical output of the pipeline (spec §3).
type ScholarDocument struct {
	Text         string
	PageSpans    []PageSpan
	SectionSpans []SectionSpan
	FlaggedWords []ocrquality.FlaggedWord
	Quality      QualityReport
}

// PageInput is one page's already-rejoined clean text plus its flagged
// words, the unit Build assembles into a document.
type PageInput struct {
	Page        int
	PrintedPage string
	Text        string
	Flags       []ocrquality.FlaggedWord
}

// Build concatenates page texts into one document, computing page spans
// and offsetting each page's flagged words into document-wide
// coordinates, then strips running headers/footers and scores quality.
func Build(pages []PageInput, sections []structure.Span) ScholarDocument {
	stripped := stripRunningLines(pages)

	var b strings.Builder
	var pageSpans []PageSpan
	var flags []ocrquality.FlaggedWord
	totalWords := 0

	for i, p := range stripped {
		start := b.Len()
		if i > 0 {
			b.WriteByte('\n')
		}
		textStart := b.Len()
		b.WriteString(p.Text)
		end := b.Len()

		pageSpans = append(pageSpans, PageSpan{
			Page:        p.Page,
			PrintedPage: p.PrintedPage,
			StartOffset: start,
			EndOffset:   end,
		})

		totalWords += len(ocrquality.SplitWords(p.Text))
		for _, f := range p.Flags {
			flags = append(flags, ocrquality.FlaggedWord{
				Page:       f.Page,
				Offset:     textStart + f.Offset,
				Text:       f.Text,
				Reason:     f.Reason,
				Confidence: f.Confidence,
			})
		}
	}

	quality := scoreQuality(totalWords, len(flags))

	return ScholarDocument{
		Text:         b.String(),
		PageSpans:    pageSpans,
		SectionSpans: projectSections(sections, pageSpans),
		FlaggedWords: flags,
		Quality:      quality,
	}
}

// projectSections maps each structure.Span's page-index range onto the
// character offsets of the page it starts/ends on, via pageSpans. A page
// index below 0 maps to offset 0 and one at or past the last page maps to
// the end of the text; an empty document yields no section spans.
func projectSections(sections []structure.Span, pageSpans []PageSpan) []SectionSpan {
	if len(pageSpans) == 0 {
		return nil
	}
	offsetForPage := func(page int) (int, bool) {
		if page < 0 {
			return 0, true
		}
		if page >= len(pageSpans) {
			return pageSpans[len(pageSpans)-1].EndOffset, true
		}
		return pageSpans[page].StartOffset, true
	}

	out := make([]SectionSpan, 0, len(sections))
	for _, s := range sections {
		start, ok := offsetForPage(s.StartPage)
		if !ok {
			continue
		}
		end, ok := offsetForPage(s.EndPage)
		if !ok {
			continue
		}
		out = append(out, SectionSpan{
			Start:      start,
			End:        end,
			Title:      s.Title,
			Level:      s.Level,
			Confidence: s.Confidence,
			Source:     s.Source,
		})
	}
	return out
}

func scoreQuality(totalWords, flaggedWords int) QualityReport {
	ratio := 0.0
	if totalWords > 0 {
		ratio = float64(flaggedWords) / float64(totalWords)
	}
	level := QualityGood
	switch {
	case ratio > marginalThreshold:
		level = QualityBad
	case ratio > goodThreshold:
		level = QualityMarginal
	}
	return QualityReport{
		TotalWords:   totalWords,
		FlaggedWords: flaggedWords,
		FlaggedRatio: ratio,
		Level:        level,
	}
}

// runningLineThreshold is the fraction of pages a candidate header/footer
// line must repeat on, verbatim, before it is treated as running matter
// and stripped (spec §4.I).
const runningLineThreshold = 0.30

// stripRunningLines detects lines that repeat verbatim as the first or
// last non-blank line across at least runningLineThreshold of pages and
// removes them from every page that carries them.
func stripRunningLines(pages []PageInput) []PageInput {
	if len(pages) == 0 {
		return pages
	}

	headerCounts := make(map[string]int)
	footerCounts := make(map[string]int)
	headers := make([]string, len(pages))
	footers := make([]string, len(pages))

	for i, p := range pages {
		lines := nonBlankLines(p.Text)
		if len(lines) == 0 {
			continue
		}
		headers[i] = lines[0]
		footers[i] = lines[len(lines)-1]
		headerCounts[lines[0]]++
		if len(lines) > 1 {
			footerCounts[lines[len(lines)-1]]++
		}
	}

	minCount := int(float64(len(pages))*runningLineThreshold + 0.999999)
	if minCount < 1 {
		minCount = 1
	}

	out := make([]PageInput, len(pages))
	copy(out, pages)

	for i := range out {
		lines := strings.Split(out[i].Text, "\n")
		if len(lines) == 0 {
			continue
		}
		if headerCounts[headers[i]] >= minCount && headers[i] != "" {
			lines = removeFirstMatching(lines, headers[i])
		}
		if footerCounts[footers[i]] >= minCount && footers[i] != "" {
			lines = removeLastMatching(lines, footers[i])
		}
		out[i].Text = strings.Join(lines, "\n")
	}
	return out
}

func nonBlankLines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

func removeFirstMatching(lines []string, target string) []string {
	for i, l := range lines {
		if l == target {
			return append(lines[:i], lines[i+1:]...)
		}
	}
	return lines
}

func removeLastMatching(lines []string, target string) []string {
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i] == target {
			return append(lines[:i], lines[i+1:]...)
		}
	}
	return lines
}
