// Package rejoin undoes hyphenation introduced by line wrapping while
// rejecting cross-region false matches (spec §4.C). It never guesses
// across block boundaries: a margin header wrapping onto what looks like
// body text must never fuse with it.
package rejoin

import (
	"strings"
	"unicode"

	"github.com/loganrooks/scholardoc/internal/dictionary"
	"github.com/loganrooks/scholardoc/internal/rawpage"
)

// Decision is the outcome recorded for one join candidate.
type Decision string

const (
	Join   Decision = "Join"
	Reject Decision = "Reject"
)

// Reason explains why a candidate was accepted or rejected.
type Reason string

const (
	ReasonCrossBlock      Reason = "CrossBlock"
	ReasonDictionaryJoin  Reason = "DictionaryJoined"
	ReasonPositional      Reason = "PositionalUnambiguous"
	ReasonNoSignal        Reason = "NoSignal"
	ReasonNumericToken    Reason = "NumericToken"
	ReasonEmDash          Reason = "EmDash"
)

// Candidate is one evaluated join point between the end of one line and
// the start of the next (spec §3 JoinCandidate).
type Candidate struct {
	Prev     rawpage.RawWord
	Next     rawpage.RawWord
	Decision Decision
	Reason   Reason
}

// sameBlock reports whether the candidate's two words share a block,
// which per the §3 JoinCandidate invariant is required for Join.
func (c Candidate) sameBlock() bool { return c.Prev.Block == c.Next.Block && c.Prev.Page == c.Next.Page }

// Result is the output of rejoining one page: the clean page text and a
// position map from byte offset in that text back to the source word.
type Result struct {
	Text       string
	Offsets    []OffsetEntry
	Candidates []Candidate
}

// OffsetEntry maps a byte offset in Result.Text to the RawWord that
// contributed the character starting there.
type OffsetEntry struct {
	Offset int
	Word   rawpage.RawWord
}

const (
	minStemLen   = 3
	maxJoinedLen = 30
)

// softHyphen is U+00AD, treated identically to an ASCII hyphen per §4.C.
const softHyphen = '­'

// emDash never triggers joining even though it sits at a line end.
const emDash = '—'

type boundaryKind int

const (
	boundarySameLine boundaryKind = iota
	boundaryNewLine
	boundaryFuse
)

// Page rejoins one page's words into clean text, applying spec §4.C. dict
// is read-only during this call (the parallel per-page phase of spec
// §5); any accepted join's dictionary.observe() is instead accumulated
// into delta for the caller to merge and apply after the parallel phase.
func Page(page rawpage.RawPage, dict *dictionary.Dictionary, delta *dictionary.Delta) Result {
	words := page.SortedWords()
	if len(words) == 0 {
		return Result{}
	}

	kinds := make([]boundaryKind, len(words)-1)
	var candidates []Candidate

	for i := 0; i < len(words)-1; i++ {
		prev, next := words[i], words[i+1]
		if sameLine(prev, next) {
			kinds[i] = boundarySameLine
			continue
		}

		cand, ok := evaluateCandidate(prev, next, dict)
		if !ok {
			kinds[i] = boundaryNewLine
			continue
		}
		candidates = append(candidates, cand)
		if cand.Decision == Join {
			kinds[i] = boundaryFuse
		} else {
			kinds[i] = boundaryNewLine
		}
	}

	var b strings.Builder
	var offsets []OffsetEntry

	for i, w := range words {
		text := w.Text
		if i < len(kinds) && kinds[i] == boundaryFuse {
			text = stripTrailingHyphen(text)
		}
		if i > 0 && kinds[i-1] == boundaryFuse {
			text = stripLeadingPunct(text)
		}

		if i > 0 {
			switch kinds[i-1] {
			case boundarySameLine:
				b.WriteByte(' ')
			case boundaryNewLine:
				b.WriteByte('\n')
			case boundaryFuse:
				// no separator: the two halves fuse into one token
			}
		}

		offsets = append(offsets, OffsetEntry{Offset: b.Len(), Word: w})
		b.WriteString(text)

		if i < len(kinds) && kinds[i] == boundaryFuse && delta != nil {
			joined := stripTrailingHyphen(w.Text) + stripLeadingPunct(words[i+1].Text)
			delta.Observe(dictionary.Normalize(joined))
		}
	}

	return Result{Text: b.String(), Offsets: offsets, Candidates: candidates}
}

func sameLine(a, b rawpage.RawWord) bool {
	return a.Page == b.Page && a.Block == b.Block && a.Line == b.Line
}

// evaluateCandidate decides whether prev/next form an acceptable
// hyphen-join, per spec §4.C. ok is false when prev does not even look
// like a hyphenated line-end (no candidate to record at all).
func evaluateCandidate(prev, next rawpage.RawWord, dict *dictionary.Dictionary) (Candidate, bool) {
	if !endsInHyphen(prev.Text) {
		return Candidate{}, false
	}
	stem := stripTrailingHyphen(prev.Text)
	if len([]rune(strings.TrimSpace(stem))) < minStemLen {
		return Candidate{}, false
	}

	cand := Candidate{Prev: prev, Next: next}

	if isNumericToken(prev.Text) || isNumericToken(next.Text) {
		cand.Decision, cand.Reason = Reject, ReasonNumericToken
		return cand, true
	}
	if endsInEmDash(prev.Text) {
		cand.Decision, cand.Reason = Reject, ReasonEmDash
		return cand, true
	}

	// Cross-block (or cross-page) candidates are always rejected — the
	// invariant that prevents margin content from fusing into body text.
	if !cand.sameBlock() {
		cand.Decision, cand.Reason = Reject, ReasonCrossBlock
		return cand, true
	}

	joined := stem + stripLeadingPunct(next.Text)

	// The dictionary check dominates the positional check: rule (a) and
	// rule (b) from spec §4.C both collapse to "joined is accepted".
	// Trailing punctuation on the second half (e.g. a sentence-final
	// period) must not hide the join from the dictionary.
	if dict.Contains(dictionary.Normalize(joined)) {
		cand.Decision, cand.Reason = Join, ReasonDictionaryJoin
		return cand, true
	}

	if passesPatternFilter(joined) {
		cand.Decision, cand.Reason = Join, ReasonPositional
		return cand, true
	}

	cand.Decision, cand.Reason = Reject, ReasonNoSignal
	return cand, true
}

// passesPatternFilter implements the pattern gate for positionally-strong
// but dictionary-unknown joins: has a vowel, length <= 30, no triple
// letter.
func passesPatternFilter(joined string) bool {
	runes := []rune(joined)
	if len(runes) > maxJoinedLen {
		return false
	}
	hasVowel := false
	for _, r := range runes {
		switch unicode.ToLower(r) {
		case 'a', 'e', 'i', 'o', 'u':
			hasVowel = true
		}
	}
	if !hasVowel {
		return false
	}
	for i := 0; i+2 < len(runes); i++ {
		if runes[i] == runes[i+1] && runes[i+1] == runes[i+2] {
			return false
		}
	}
	return true
}

func endsInHyphen(text string) bool {
	trimmed := strings.TrimRightFunc(text, unicode.IsSpace)
	if trimmed == "" {
		return false
	}
	r := []rune(trimmed)
	last := r[len(r)-1]
	return last == '-' || last == softHyphen || last == emDash
}

func endsInEmDash(text string) bool {
	trimmed := strings.TrimRightFunc(text, unicode.IsSpace)
	return strings.HasSuffix(trimmed, string(emDash))
}

func stripTrailingHyphen(text string) string {
	trimmed := strings.TrimRightFunc(text, unicode.IsSpace)
	trimmed = strings.TrimRight(trimmed, "-")
	trimmed = strings.TrimRight(trimmed, string(softHyphen))
	return trimmed
}

func stripLeadingPunct(text string) string {
	return strings.TrimLeftFunc(text, func(r rune) bool {
		return unicode.IsPunct(r) && r != '\''
	})
}

func isNumericToken(text string) bool {
	stripped := strings.TrimFunc(text, unicode.IsPunct)
	stripped = strings.TrimSuffix(stripped, "-")
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
