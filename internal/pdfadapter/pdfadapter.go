// Package pdfadapter bridges the external glyph/word parser's output
// (assumed available per spec §1 — extracting text and bounding boxes
// from a raw PDF content stream is explicitly out of this core's scope)
// into the rawpage.Document the pipeline consumes, and wraps pdfcpu for
// the one piece of genuine PDF structure the core does own: the
// bookmark/outline tree (spec §4.F) and page count.
package pdfadapter

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/loganrooks/scholardoc/internal/rawpage"
	"github.com/loganrooks/scholardoc/internal/scholarerr"
)

// wordRecord mirrors rawpage.RawWord for the external parser's wire
// format: a flat JSON array of pages, each with its words.
type wordRecord struct {
	Text     string  `json:"text"`
	X0       float64 `json:"x0"`
	Y0       float64 `json:"y0"`
	X1       float64 `json:"x1"`
	Y1       float64 `json:"y1"`
	Block    int     `json:"block"`
	Line     int     `json:"line"`
	Word     int     `json:"word"`
	FontSize float64 `json:"font_size"`
	Bold     bool    `json:"bold"`
	FontName string  `json:"font_name"`
}

type pageRecord struct {
	PrintedPage string       `json:"printed_page"`
	Width       float64      `json:"width"`
	Height      float64      `json:"height"`
	Words       []wordRecord `json:"words"`
}

// LoadWords reads the external parser's word-tuple output from path and
// converts it into a rawpage.Document. A malformed file is an InputError,
// not a MalformedPage: the whole document is unusable, not one page of it.
func LoadWords(path string) (rawpage.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return rawpage.Document{}, scholarerr.Wrap(scholarerr.KindInput, "failed to read parser output", err)
	}

	var records []pageRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return rawpage.Document{}, scholarerr.Wrap(scholarerr.KindInput, "failed to decode parser output", err)
	}

	doc := rawpage.Document{Pages: make([]rawpage.RawPage, len(records))}
	for i, rec := range records {
		words := make([]rawpage.RawWord, len(rec.Words))
		for j, w := range rec.Words {
			words[j] = rawpage.RawWord{
				Text:     w.Text,
				BBox:     rawpage.BBox{X0: w.X0, Y0: w.Y0, X1: w.X1, Y1: w.Y1},
				Block:    w.Block,
				Line:     w.Line,
				Word:     w.Word,
				Page:     i,
				FontSize: w.FontSize,
				Bold:     w.Bold,
				FontName: w.FontName,
			}
		}
		doc.Pages[i] = rawpage.RawPage{
			Index:       i,
			PrintedPage: rec.PrintedPage,
			Width:       rec.Width,
			Height:      rec.Height,
			Words:       words,
		}
	}
	return doc, nil
}

// PageCount returns the number of pages in the PDF at path, via pdfcpu,
// used to cross-check the external parser's output against the source
// document rather than trusting it blindly.
func PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, scholarerr.Wrap(scholarerr.KindInput, "failed to open pdf", err)
	}
	defer f.Close()

	count, err := api.PageCount(f, nil)
	if err != nil {
		return 0, scholarerr.Wrap(scholarerr.KindInput, "failed to read pdf page count", err)
	}
	return count, nil
}

// ValidatePageCount cross-checks a parsed document's page count against
// the source PDF, surfacing a mismatch as an InputError rather than
// silently truncating or padding.
func ValidatePageCount(pdfPath string, doc rawpage.Document) error {
	count, err := PageCount(pdfPath)
	if err != nil {
		return err
	}
	if count != len(doc.Pages) {
		return scholarerr.New(scholarerr.KindInput,
			fmt.Sprintf("parser output has %d pages, pdf has %d", len(doc.Pages), count))
	}
	return nil
}
