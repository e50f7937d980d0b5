// Package ocrquality implements the OCR error selector (spec §4.D): it
// flags words as re-OCR candidates without ever rewriting the clean
// text. A flag is an annotation at a position, never a correction.
package ocrquality

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/loganrooks/scholardoc/internal/dictionary"
)

// Reason is why a word was flagged.
type Reason string

const (
	ReasonNotInDict        Reason = "NotInDict"
	ReasonPatternViolation Reason = "PatternViolation"
	ReasonLowEntropy       Reason = "LowEntropy"
	ReasonUmlautArtifact   Reason = "UmlautArtifact"
)

// confidenceFor returns the flag confidence per spec §4.D.
func confidenceFor(reason Reason) float64 {
	switch reason {
	case ReasonPatternViolation, ReasonLowEntropy:
		return 1.0
	case ReasonNotInDict:
		return 0.8
	case ReasonUmlautArtifact:
		return 0.6
	default:
		return 0.0
	}
}

// FlaggedWord is a position-anchored re-OCR candidate annotation (spec §3).
type FlaggedWord struct {
	Page       int
	Offset     int // byte offset in clean text
	Text       string
	Reason     Reason
	Confidence float64
}

// approvedDigitLetterForms lists the digit-adjacent-to-letter shapes that
// are recognized abbreviations rather than OCR noise (spec §4.D).
var approvedDigitLetterForms = regexp.MustCompile(`^(\d+(st|nd|rd|th)|[A-Za-z]\d+(/[A-Za-z]\d+)*)$`)

var digitLetterAdjacent = regexp.MustCompile(`[0-9][A-Za-z]|[A-Za-z][0-9]`)

// WordPosition is one clean-text word together with its byte offset, as
// produced by splitting a rejoined page's text.
type WordPosition struct {
	Offset int
	Text   string
}

// SplitWords splits clean page text into whitespace-delimited words with
// their byte offsets, the unit the selector and the dictionary's
// learning step both operate on.
func SplitWords(text string) []WordPosition {
	var out []WordPosition
	offset := 0
	for offset < len(text) {
		for offset < len(text) && isWordSep(rune(text[offset])) {
			offset++
		}
		start := offset
		for offset < len(text) && !isWordSep(rune(text[offset])) {
			offset++
		}
		if offset > start {
			out = append(out, WordPosition{Offset: start, Text: text[start:offset]})
		}
	}
	return out
}

func isWordSep(r rune) bool {
	return unicode.IsSpace(r)
}

// Page flags suspicious words in one page's already-rejoined clean text.
// dict is read-only (the parallel per-page phase of spec §5); accepted
// long-enough unflagged words feed back into delta for the caller to
// merge and apply after the parallel phase, so in-document learning
// still happens even though this component never rewrites anything.
func Page(pageIndex int, cleanText string, dict *dictionary.Dictionary, delta *dictionary.Delta) []FlaggedWord {
	var flags []FlaggedWord

	for _, wp := range SplitWords(cleanText) {
		norm := dictionary.Normalize(wp.Text)
		if norm == "" {
			continue
		}

		if dict.Contains(norm) {
			if delta != nil && len(norm) >= 3 {
				delta.Observe(norm)
			}
			continue
		}

		if approvedDigitLetterForms.MatchString(norm) {
			continue
		}

		reason := classify(norm, dict)
		flags = append(flags, FlaggedWord{
			Page:       pageIndex,
			Offset:     wp.Offset,
			Text:       wp.Text,
			Reason:     reason,
			Confidence: confidenceFor(reason),
		})
	}

	return flags
}

// classify assigns a flag reason to a word already known not to be in
// the dictionary, per the ordering in spec §4.D.
func classify(word string, dict *dictionary.Dictionary) Reason {
	if hasTripleLetter(word) || (!hasVowel(word) && len(word) >= 3) || hasApprovedExceptDigitLetterAdjacency(word) {
		return ReasonPatternViolation
	}
	if isUmlautArtifact(word, dict) {
		return ReasonUmlautArtifact
	}
	if isLowEntropy(word) {
		return ReasonLowEntropy
	}
	return ReasonNotInDict
}

func hasApprovedExceptDigitLetterAdjacency(word string) bool {
	if !digitLetterAdjacent.MatchString(word) {
		return false
	}
	return !approvedDigitLetterForms.MatchString(word)
}

func hasVowel(word string) bool {
	for _, r := range word {
		switch r {
		case 'a', 'e', 'i', 'o', 'u':
			return true
		}
	}
	return false
}

func hasTripleLetter(word string) bool {
	runes := []rune(word)
	for i := 0; i+2 < len(runes); i++ {
		if runes[i] == runes[i+1] && runes[i+1] == runes[i+2] {
			return true
		}
	}
	return false
}

// isUmlautArtifact flags a word only when substituting one of its "ii"
// or "ti" bigrams for "ü"/"fi" produces a word the dictionary already
// accepts — a classic OCR confusion for German/ligature text, and
// distinct from a word that merely happens to contain that bigram (spec
// §4.D: "in a position where the same stem with ü/fi is accepted").
// This never rewrites the word itself; it only flags.
func isUmlautArtifact(word string, dict *dictionary.Dictionary) bool {
	return substitutedStemAccepted(word, "ii", "ü", dict) ||
		substitutedStemAccepted(word, "ti", "fi", dict)
}

// substitutedStemAccepted tries substituting from for to at every
// occurrence in word, one at a time, and reports whether any resulting
// stem is already an accepted dictionary word.
func substitutedStemAccepted(word, from, to string, dict *dictionary.Dictionary) bool {
	if dict == nil {
		return false
	}
	searchFrom := 0
	for {
		idx := strings.Index(word[searchFrom:], from)
		if idx < 0 {
			return false
		}
		pos := searchFrom + idx
		candidate := word[:pos] + to + word[pos+len(from):]
		if dict.Contains(dictionary.Normalize(candidate)) {
			return true
		}
		searchFrom = pos + 1
	}
}

// isLowEntropy reports a word built from at most 2 distinct characters
// and at least 4 characters long — a common stuck-scanner artifact.
func isLowEntropy(word string) bool {
	if len(word) < 4 {
		return false
	}
	seen := make(map[rune]struct{})
	for _, r := range word {
		seen[r] = struct{}{}
	}
	return len(seen) <= 2
}
