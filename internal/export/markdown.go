package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/loganrooks/scholardoc/internal/document"
)

// PageMarkerStyle controls how page boundaries are rendered in Markdown.
type PageMarkerStyle string

const (
	// PageMarkerComment emits `<!-- page: L -->` HTML comments (spec §6).
	PageMarkerComment PageMarkerStyle = "comment"
	// PageMarkerNone omits page markers entirely.
	PageMarkerNone PageMarkerStyle = "none"
)

// MarkdownOptions configures the Markdown writer.
type MarkdownOptions struct {
	PageMarkers PageMarkerStyle
	Debug       bool // inline flagged words as word^⚠ when true
}

// marker is one insertion point into the clean text: either a section
// heading, a page boundary, or a flagged word, ordered by offset so a
// single left-to-right pass can emit everything in position.
type marker struct {
	offset int
	kind   int // 0 = section heading, 1 = page start, 2 = flag
	level  int
	title  string
	label  string
}

const (
	markerSection = iota
	markerPage
	markerFlag
)

// Markdown renders doc per spec §6: heading levels mapped to `#`..`######`,
// page markers as HTML comments, and (with Debug set) flagged words
// inlined as `word^⚠` without altering the underlying clean text.
func Markdown(doc document.ScholarDocument, opts MarkdownOptions) string {
	var markers []marker

	for _, s := range doc.SectionSpans {
		markers = append(markers, marker{offset: s.Start, kind: markerSection, level: s.Level, title: s.Title})
	}
	if opts.PageMarkers == PageMarkerComment || opts.PageMarkers == "" {
		for _, p := range doc.PageSpans {
			markers = append(markers, marker{offset: p.StartOffset, kind: markerPage, label: p.PrintedPage})
		}
	}
	if opts.Debug {
		for _, f := range doc.FlaggedWords {
			markers = append(markers, marker{offset: f.Offset, kind: markerFlag, label: f.Text})
		}
	}

	sort.SliceStable(markers, func(i, j int) bool {
		if markers[i].offset != markers[j].offset {
			return markers[i].offset < markers[j].offset
		}
		return markers[i].kind < markers[j].kind
	})

	var b strings.Builder
	text := doc.Text
	cursor := 0
	for _, m := range markers {
		if m.offset < cursor || m.offset > len(text) {
			continue
		}
		switch m.kind {
		case markerSection:
			b.WriteString(text[cursor:m.offset])
			b.WriteString(headingPrefix(m.level))
			b.WriteByte(' ')
			b.WriteString(m.title)
			b.WriteByte('\n')
			cursor = m.offset
		case markerPage:
			b.WriteString(text[cursor:m.offset])
			b.WriteString(fmt.Sprintf("<!-- page: %s -->\n", m.label))
			cursor = m.offset
		case markerFlag:
			wordEnd := m.offset + len(m.label)
			if wordEnd > len(text) || text[m.offset:wordEnd] != m.label {
				continue
			}
			b.WriteString(text[cursor:m.offset])
			b.WriteString(m.label)
			b.WriteString("^⚠")
			cursor = wordEnd
		}
	}
	b.WriteString(text[cursor:])
	return b.String()
}

func headingPrefix(level int) string {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return strings.Repeat("#", level)
}
