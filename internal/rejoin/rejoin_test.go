package rejoin

import (
	"strings"
	"testing"

	"github.com/loganrooks/scholardoc/internal/dictionary"
	"github.com/loganrooks/scholardoc/internal/rawpage"
)

func word(text string, block, line, w int) rawpage.RawWord {
	return rawpage.RawWord{Text: text, Block: block, Line: line, Word: w, Page: 0}
}

// Scenario A: a margin block wrap must never fuse into body text.
func TestCrossBlockNeverJoins(t *testing.T) {
	page := rawpage.RawPage{
		Index: 0,
		Words: []rawpage.RawWord{
			word("meta-", 2, 5, 0),
			word("a", 4, 1, 0),
			word("x", 4, 1, 1),
		},
	}
	dict := dictionary.New([]string{"metadata"}, dictionary.DefaultRuleset())
	result := Page(page, dict, nil)

	if len(result.Candidates) != 1 {
		t.Fatalf("expected exactly 1 candidate, got %d", len(result.Candidates))
	}
	cand := result.Candidates[0]
	if cand.Decision != Reject || cand.Reason != ReasonCrossBlock {
		t.Fatalf("expected Reject/CrossBlock, got %v/%v", cand.Decision, cand.Reason)
	}
	if !strings.Contains(result.Text, "meta-\na x") {
		t.Fatalf("expected unjoined text preserved with newline, got %q", result.Text)
	}
}

// Scenario B: a normal same-block wrap joins into a dictionary word.
func TestSameBlockHyphenJoins(t *testing.T) {
	page := rawpage.RawPage{
		Index: 0,
		Words: []rawpage.RawWord{
			word("func-", 2, 7, 0),
			word("tion.", 2, 8, 0),
		},
	}
	dict := dictionary.New([]string{"function"}, dictionary.DefaultRuleset())
	delta := dictionary.NewDelta()
	result := Page(page, dict, delta)

	if result.Text != "function." {
		t.Fatalf("expected joined text 'function.', got %q", result.Text)
	}
	if len(result.Candidates) != 1 || result.Candidates[0].Decision != Join {
		t.Fatalf("expected a single Join candidate, got %+v", result.Candidates)
	}
	if delta == nil {
		t.Fatalf("expected a non-nil delta")
	}
}

func TestEmDashNeverJoins(t *testing.T) {
	page := rawpage.RawPage{
		Words: []rawpage.RawWord{
			word("end—", 1, 1, 0),
			word("ing", 1, 2, 0),
		},
	}
	dict := dictionary.New(nil, dictionary.DefaultRuleset())
	result := Page(page, dict, nil)
	if len(result.Candidates) != 1 || result.Candidates[0].Decision != Reject || result.Candidates[0].Reason != ReasonEmDash {
		t.Fatalf("expected em-dash rejection, got %+v", result.Candidates)
	}
}

func TestNumericTokenNeverJoins(t *testing.T) {
	page := rawpage.RawPage{
		Words: []rawpage.RawWord{
			word("123-", 1, 1, 0),
			word("456", 1, 2, 0),
		},
	}
	dict := dictionary.New(nil, dictionary.DefaultRuleset())
	result := Page(page, dict, nil)
	if len(result.Candidates) != 1 || result.Candidates[0].Decision != Reject || result.Candidates[0].Reason != ReasonNumericToken {
		t.Fatalf("expected numeric token rejection, got %+v", result.Candidates)
	}
}

// Invariant 1: for every accepted join, prev and next share (page, block).
func TestAcceptedJoinsShareBlock(t *testing.T) {
	page := rawpage.RawPage{
		Words: []rawpage.RawWord{
			word("func-", 2, 7, 0),
			word("tion", 2, 8, 0),
		},
	}
	dict := dictionary.New([]string{"function"}, dictionary.DefaultRuleset())
	result := Page(page, dict, nil)
	for _, c := range result.Candidates {
		if c.Decision != Join {
			continue
		}
		if c.Prev.Block != c.Next.Block || c.Prev.Page != c.Next.Page {
			t.Fatalf("accepted join crosses block/page: %+v", c)
		}
	}
}

// Invariant 8: applying the rejoiner to already-joined text is a no-op.
func TestIdempotentOnAlreadyJoinedText(t *testing.T) {
	page := rawpage.RawPage{
		Words: []rawpage.RawWord{
			word("function.", 2, 7, 0),
		},
	}
	dict := dictionary.New([]string{"function"}, dictionary.DefaultRuleset())
	result := Page(page, dict, nil)
	if len(result.Candidates) != 0 {
		t.Fatalf("no hyphen present, expected no candidates, got %+v", result.Candidates)
	}
	if result.Text != "function." {
		t.Fatalf("expected unchanged text, got %q", result.Text)
	}
}

func TestShortStemNeverJoins(t *testing.T) {
	page := rawpage.RawPage{
		Words: []rawpage.RawWord{
			word("a-", 1, 1, 0),
			word("b", 1, 2, 0),
		},
	}
	dict := dictionary.New(nil, dictionary.DefaultRuleset())
	result := Page(page, dict, nil)
	if len(result.Candidates) != 0 {
		t.Fatalf("stem shorter than 3 chars must not even produce a candidate, got %+v", result.Candidates)
	}
}
