// Package detect finds heading candidates visually, from font size,
// weight, and surrounding whitespace, when a PDF carries no authored
// outline (spec §4.G). It is a statistical outlier detector, not a
// layout-template matcher: it picks out lines that stand out from the
// document's dominant body-text style.
package detect

import (
	"strings"

	"github.com/loganrooks/scholardoc/internal/heading"
	"github.com/loganrooks/scholardoc/internal/rawpage"
)

const (
	minConfidence = 0.5
	maxConfidence = 0.8
	maxTiers      = 4
)

// Source detects headings from page layout signals.
type Source struct {
	doc rawpage.Document
}

// New returns a detect Source over doc.
func New(doc rawpage.Document) *Source {
	return &Source{doc: doc}
}

func (s *Source) Name() string { return "detect" }

// lineStats is the aggregated visual signature of one line, the unit a
// heading candidate is built from.
type lineStats struct {
	page        int
	block       int
	line        int
	text        string
	avgFontSize float64
	bold        bool
	precedingWS float64 // vertical gap above this line, in page-height units
}

func (s *Source) Candidates() ([]heading.Candidate, error) {
	var lines []lineStats
	for _, page := range s.doc.Pages {
		lines = append(lines, collectLines(page)...)
	}
	if len(lines) == 0 {
		return nil, nil
	}

	bodySize := dominantFontSize(lines)

	var out []heading.Candidate
	for _, ln := range lines {
		signals := 0
		if ln.avgFontSize > bodySize*1.15 {
			signals++
		}
		if ln.bold {
			signals++
		}
		if ln.precedingWS > 0.02 {
			signals++
		}
		if looksLikeShortTitle(ln.text) {
			signals++
		}
		if signals < 2 {
			continue
		}

		confidence := 0.5 + 0.1*float64(signals-1)
		if confidence > maxConfidence {
			confidence = maxConfidence
		}
		if confidence < minConfidence {
			confidence = minConfidence
		}

		out = append(out, heading.Candidate{
			Title:      strings.TrimSpace(ln.text),
			Page:       ln.page,
			Level:      tierFor(ln.avgFontSize, bodySize),
			Confidence: confidence,
			Source:     "detect",
		})
	}
	return out, nil
}

// collectLines flattens a page's words into per-line visual statistics.
func collectLines(page rawpage.RawPage) []lineStats {
	var out []lineStats
	for _, block := range page.Blocks() {
		lineGroups := page.Lines(block)
		var prevBottom float64
		for i, words := range lineGroups {
			if len(words) == 0 {
				continue
			}
			var sizeSum float64
			bold := true
			minY := words[0].BBox.Y0
			maxY := words[0].BBox.Y1
			var text strings.Builder
			for j, w := range words {
				sizeSum += w.FontSize
				bold = bold && w.Bold
				if w.BBox.Y0 < minY {
					minY = w.BBox.Y0
				}
				if w.BBox.Y1 > maxY {
					maxY = w.BBox.Y1
				}
				if j > 0 {
					text.WriteByte(' ')
				}
				text.WriteString(w.Text)
			}
			ws := 0.0
			if i > 0 && page.Height > 0 {
				// Bottom-left origin: the previous line's bottom sits
				// above this line's top.
				ws = (prevBottom - maxY) / page.Height
				if ws < 0 {
					ws = 0
				}
			}
			prevBottom = minY
			out = append(out, lineStats{
				page:        page.Index,
				block:       block,
				line:        words[0].Line,
				text:        text.String(),
				avgFontSize: sizeSum / float64(len(words)),
				bold:        bold,
				precedingWS: ws,
			})
		}
	}
	return out
}

// dominantFontSize returns the most common rounded font size across all
// the lines given (every page of the document), used as the body-text
// baseline against which outliers are measured.
func dominantFontSize(lines []lineStats) float64 {
	counts := make(map[int]int)
	for _, ln := range lines {
		counts[int(ln.avgFontSize+0.5)]++
	}
	best, bestCount := 0, 0
	for size, count := range counts {
		if count > bestCount || (count == bestCount && size < best) {
			best, bestCount = size, count
		}
	}
	if best == 0 {
		return 10
	}
	return float64(best)
}

// looksLikeShortTitle is a weak lexical signal: short lines without
// terminal punctuation read more like a heading than a sentence.
func looksLikeShortTitle(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" || len(text) > 80 {
		return false
	}
	words := strings.Fields(text)
	if len(words) == 0 || len(words) > 12 {
		return false
	}
	last := text[len(text)-1]
	return last != '.' && last != ',' && last != ';'
}

// tierFor buckets a font size into at most maxTiers heading levels
// relative to the body baseline, largest font first.
func tierFor(size, body float64) int {
	ratio := size / body
	switch {
	case ratio >= 1.6:
		return 1
	case ratio >= 1.4:
		return 2
	case ratio >= 1.25:
		return 3
	default:
		return maxTiers
	}
}
