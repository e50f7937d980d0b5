// Package dictionary implements the adaptive spell-check dictionary used
// by the rejoiner and OCR error selector (spec §4.B). It never corrects
// text; contains reports membership only, and observe grows the learned
// set as a document is processed.
package dictionary

import (
	"strings"
	"sync"
	"unicode"
)

const (
	// TLearn is the minimum occurrence count before a word is promotable.
	TLearn = 2
	// CLearn is the minimum confidence before a learned word is accepted.
	CLearn = 0.7
)

// Ruleset configures the morphological derivation rules used by contains
// and the promotion check in observe. Exposed as a value rather than a
// hard-coded set of suffixes/prefixes so callers can tune it per-language
// without forking the package (spec §9 open question).
type Ruleset struct {
	Suffixes []string // e.g. "s", "es", "ed", "ing"
	Prefixes []string // e.g. "un", "re", "pre", "in"
}

// DefaultRuleset is the ruleset described in spec §4.B.
func DefaultRuleset() Ruleset {
	return Ruleset{
		Suffixes: []string{"s", "es", "ed", "ing"},
		Prefixes: []string{"un", "re", "pre", "in"},
	}
}

// learnedEntry is one row of the adaptive, in-document learned store.
type learnedEntry struct {
	Count      int
	Confidence float64
}

// Dictionary is a base lexicon augmented by an in-document learned store.
// Safe for concurrent reads; observe must be serialized by the caller
// during the parallel page-processing phase (spec §5) — snapshot reads
// happen through Contains, and the merged delta is applied afterward via
// ApplyDelta.
type Dictionary struct {
	mu       sync.RWMutex
	base     map[string]struct{}
	occurred map[string]int // raw observe() counts, tracked regardless of promotion
	learned  map[string]learnedEntry
	rules    Ruleset
}

// New builds a Dictionary from a base word list (case-folded on entry).
func New(baseWords []string, rules Ruleset) *Dictionary {
	base := make(map[string]struct{}, len(baseWords))
	for _, w := range baseWords {
		base[strings.ToLower(w)] = struct{}{}
	}
	return &Dictionary{
		base:     base,
		occurred: make(map[string]int),
		learned:  make(map[string]learnedEntry),
		rules:    rules,
	}
}

// Normalize applies the shared word-normalization rule used before both
// dictionary lookups and OCR-flag checks (spec §4.D "normalise"):
// lowercase, strip surrounding punctuation, keep internal apostrophes.
func Normalize(word string) string {
	lower := strings.ToLower(word)
	trimmed := strings.TrimFunc(lower, func(r rune) bool {
		return unicode.IsPunct(r) && r != '\''
	})
	return trimmed
}

// Contains reports whether word is accepted: in the base set after
// case-fold, learned with sufficient count/confidence, or a validated
// morphological derivation of an accepted stem (spec §3 Dictionary
// invariant).
func (d *Dictionary) Contains(word string) bool {
	norm := strings.ToLower(strings.TrimSpace(word))
	if norm == "" {
		return false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.containsLocked(norm)
}

func (d *Dictionary) containsLocked(norm string) bool {
	if _, ok := d.base[norm]; ok {
		return true
	}
	if e, ok := d.learned[norm]; ok && e.Count >= TLearn && e.Confidence >= CLearn {
		return true
	}
	return d.isMorphDerivationLocked(norm)
}

// isMorphDerivationLocked checks whether norm is an accepted morphological
// derivation (one configured suffix or one configured prefix) of an accepted stem,
// without taking the lock itself (caller already holds it).
func (d *Dictionary) isMorphDerivationLocked(norm string) bool {
	for _, suf := range d.rules.Suffixes {
		if stem, ok := stripSuffix(norm, suf); ok && d.acceptedStemLocked(stem) {
			return true
		}
	}
	for _, pre := range d.rules.Prefixes {
		if stem, ok := stripPrefix(norm, pre); ok && d.acceptedStemLocked(stem) {
			return true
		}
	}
	return false
}

// acceptedStemLocked checks the base/learned sets directly, without
// recursing into morphology again — a derivation is validated against an
// accepted *stem*, not against another derivation.
func (d *Dictionary) acceptedStemLocked(stem string) bool {
	if stem == "" {
		return false
	}
	if _, ok := d.base[stem]; ok {
		return true
	}
	if e, ok := d.learned[stem]; ok && e.Count >= TLearn && e.Confidence >= CLearn {
		return true
	}
	return false
}

func stripSuffix(word, suffix string) (string, bool) {
	if !strings.HasSuffix(word, suffix) {
		return "", false
	}
	stem := strings.TrimSuffix(word, suffix)
	if len(stem) < 2 {
		return "", false
	}
	return stem, true
}

func stripPrefix(word, prefix string) (string, bool) {
	if !strings.HasPrefix(word, prefix) {
		return "", false
	}
	stem := strings.TrimPrefix(word, prefix)
	if len(stem) < 2 {
		return "", false
	}
	return stem, true
}

// Delta accumulates observe() increments made during the parallel
// per-page phase. The caller merges page results into a Delta in a fixed
// page order and then applies it in one serial reduction step, keeping
// parallel runs deterministic (spec §5).
type Delta struct {
	counts map[string]int
}

// NewDelta returns an empty observation delta.
func NewDelta() *Delta {
	return &Delta{counts: make(map[string]int)}
}

// Observe records one occurrence of word in the delta. It does not touch
// the Dictionary itself — see ApplyDelta.
func (d *Delta) Observe(word string) {
	norm := strings.ToLower(strings.TrimSpace(word))
	if norm == "" {
		return
	}
	d.counts[norm]++
}

// Merge folds other into d in ascending key order, for deterministic
// replay regardless of goroutine scheduling.
func (d *Delta) Merge(other *Delta) {
	for _, w := range sortedKeys(other.counts) {
		d.counts[w] += other.counts[w]
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// simple insertion sort avoids importing sort for a tiny, already
	// mostly-sorted slice in the common single-page case; falls back to
	// a stable O(n^2) worst case which is fine at dictionary-delta scale.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}

// ApplyDelta is the single-owner serial reduction step: it promotes words
// whose accumulated count crosses the learning threshold (spec §4.B),
// applying the morphological-validation and pattern-filter gates that
// observe() describes. Must be called after the parallel phase, by one
// goroutine, in a fixed order (ApplyDelta itself sorts by key).
func (d *Dictionary) ApplyDelta(delta *Delta) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, word := range sortedKeys(delta.counts) {
		count := delta.counts[word]
		d.observeLocked(word, count)
	}
}

// Observe is a convenience for the single-threaded path (no parallel
// phase in play): it increments and immediately evaluates promotion.
func (d *Dictionary) Observe(word string) {
	norm := strings.ToLower(strings.TrimSpace(word))
	if norm == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observeLocked(norm, 1)
}

func (d *Dictionary) observeLocked(norm string, increment int) {
	d.occurred[norm] += increment
	count := d.occurred[norm]

	if !d.isPromotable(norm, count) {
		return
	}
	d.learned[norm] = learnedEntry{Count: count, Confidence: learnedConfidence(count)}
}

// isPromotable applies the gates from spec §4.B: count >= 2, length >= 3,
// at least one vowel, no triple-repeated letter, and a morphological
// validation against the accepted stem pool.
func (d *Dictionary) isPromotable(word string, count int) bool {
	if count < TLearn {
		return false
	}
	if len(word) < 3 {
		return false
	}
	if !hasVowel(word) {
		return false
	}
	if hasTripleLetter(word) {
		return false
	}
	return d.morphGatePassesLocked(word)
}

// morphGatePassesLocked implements the "morphological validation against
// the accepted stem pool" gate from spec §4.B/§9. A word that carries one
// of the configured suffixes/prefixes must strip down to an accepted
// stem (catching a mis-inflected OCR near-miss of a known word); a word
// that carries none of them has nothing to invalidate against and passes
// vacuously, which is what lets a genuinely new base-form word (e.g. a
// proper noun or technical term joined by the rejoiner) become learnable
// at all rather than being morphology-gated forever.
func (d *Dictionary) morphGatePassesLocked(word string) bool {
	matchedAffix := false
	for _, suf := range d.rules.Suffixes {
		stem, ok := stripSuffix(word, suf)
		if !ok {
			continue
		}
		matchedAffix = true
		if d.acceptedStemLocked(stem) {
			return true
		}
	}
	for _, pre := range d.rules.Prefixes {
		stem, ok := stripPrefix(word, pre)
		if !ok {
			continue
		}
		matchedAffix = true
		if d.acceptedStemLocked(stem) {
			return true
		}
	}
	return !matchedAffix
}

func learnedConfidence(count int) float64 {
	c := 0.5 + 0.1*float64(count)
	if c > 1.0 {
		c = 1.0
	}
	return c
}

func hasVowel(word string) bool {
	for _, r := range word {
		switch r {
		case 'a', 'e', 'i', 'o', 'u', 'y':
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

// LearnedSnapshot returns a read-only copy of the learned store's
// confidence map, for persistence (internal/dictionary/persist.go) or
// diagnostics. Callers must not mutate the Dictionary while iterating a
// stale snapshot from a prior parallel phase.
func (d *Dictionary) LearnedSnapshot() map[string]struct {
	Count      int
	Confidence float64
} {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[string]struct {
		Count      int
		Confidence float64
	}, len(d.learned))
	for w, e := range d.learned {
		out[w] = struct {
			Count      int
			Confidence float64
		}{Count: e.Count, Confidence: e.Confidence}
	}
	return out
}

// LoadLearned seeds the learned store directly, used by persist.Load.
func (d *Dictionary) LoadLearned(word string, count int, confidence float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	norm := strings.ToLower(word)
	d.learned[norm] = learnedEntry{Count: count, Confidence: confidence}
	d.occurred[norm] = count
}
