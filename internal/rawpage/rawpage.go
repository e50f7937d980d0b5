// Package rawpage defines the input contract the pipeline consumes from
// the PDF glyph/word parser: a finite, ordered sequence of pages made of
// positioned words. The parser is authoritative — this package only
// validates shape, it never reinterprets content.
package rawpage

import (
	"sort"

	"github.com/loganrooks/scholardoc/internal/scholarerr"
)

// BBox is an axis-aligned bounding box in PDF user-space units, origin at
// the bottom-left of the page.
type BBox struct {
	X0, Y0, X1, Y1 float64
}

// Width returns the horizontal extent of the box.
func (b BBox) Width() float64 { return b.X1 - b.X0 }

// Height returns the vertical extent of the box.
func (b BBox) Height() float64 { return b.Y1 - b.Y0 }

// RawWord is one word as emitted by the parser, with enough positional
// metadata to reconstruct reading order and detect region boundaries.
type RawWord struct {
	Text      string
	BBox      BBox
	Block     int // region id (body, header, margin, ...)
	Line      int // line index within Block
	Word      int // word index within Line
	Page      int // page index, 0-based
	FontSize  float64
	Bold      bool
	FontName  string
}

// RawPage is an ordered list of words on one physical page, plus the
// metadata needed to map output positions back to a printed label.
type RawPage struct {
	Index       int // 0-based page index
	PrintedPage string // arbitrary printed label; may be roman/arabic/mixed/empty
	Width       float64
	Height      float64
	Words       []RawWord
}

// Document is the finite, ordered sequence of pages the core consumes.
type Document struct {
	Pages []RawPage
}

// Validate enforces the §3/§4.A input contract: every word must carry a
// block/line index, and the document must contain at least one page.
// Dense block/line indexing (no gaps) is part of the contract but is a
// parser guarantee, not re-derived here; Validate only catches the
// negative indices that indicate missing indices altogether.
func (d Document) Validate() error {
	if len(d.Pages) == 0 {
		return scholarerr.New(scholarerr.KindEmptyDocument, "document has no pages")
	}
	for _, p := range d.Pages {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks a single page for the minimum shape the rest of the
// pipeline assumes: every word has a non-negative block and line index.
func (p RawPage) Validate() error {
	for _, w := range p.Words {
		if w.Block < 0 || w.Line < 0 {
			return scholarerr.Wrap(scholarerr.KindMalformedPage,
				"word missing block/line index", nil)
		}
	}
	return nil
}

// SortedWords returns the words of the page sorted into reading order:
// (Block, Line, Word) ascending, reproducing the §3 RawWord invariant.
func (p RawPage) SortedWords() []RawWord {
	out := make([]RawWord, len(p.Words))
	copy(out, p.Words)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Block != b.Block {
			return a.Block < b.Block
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Word < b.Word
	})
	return out
}

// Lines groups the words of a block into ordered lines, keyed by Line
// index, sorted by Word index within each line.
func (p RawPage) Lines(block int) [][]RawWord {
	byLine := make(map[int][]RawWord)
	for _, w := range p.Words {
		if w.Block != block {
			continue
		}
		byLine[w.Line] = append(byLine[w.Line], w)
	}
	lineIdx := make([]int, 0, len(byLine))
	for l := range byLine {
		lineIdx = append(lineIdx, l)
	}
	sort.Ints(lineIdx)

	lines := make([][]RawWord, 0, len(lineIdx))
	for _, l := range lineIdx {
		words := byLine[l]
		sort.Slice(words, func(i, j int) bool { return words[i].Word < words[j].Word })
		lines = append(lines, words)
	}
	return lines
}

// Blocks returns the distinct block indices present on the page, in
// ascending order.
func (p RawPage) Blocks() []int {
	seen := make(map[int]bool)
	for _, w := range p.Words {
		seen[w.Block] = true
	}
	out := make([]int, 0, len(seen))
	for b := range seen {
		out = append(out, b)
	}
	sort.Ints(out)
	return out
}
