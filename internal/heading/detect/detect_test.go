package detect

import (
	"testing"

	"github.com/loganrooks/scholardoc/internal/rawpage"
)

func word(block, line, word int, text string, fontSize float64, bold bool, y0 float64) rawpage.RawWord {
	return rawpage.RawWord{
		Text:     text,
		Block:    block,
		Line:     line,
		Word:     word,
		FontSize: fontSize,
		Bold:     bold,
		BBox:     rawpage.BBox{X0: 0, Y0: y0, X1: 10, Y1: y0 + fontSize},
	}
}

func TestCandidatesFlagsLargeBoldHeading(t *testing.T) {
	page := rawpage.RawPage{
		Index:  0,
		Height: 800,
		Words: []rawpage.RawWord{
			word(0, 0, 0, "Introduction", 24, true, 700),
			word(0, 1, 0, "This", 10, false, 600),
			word(0, 1, 1, "is", 10, false, 600),
			word(0, 1, 2, "body", 10, false, 600),
			word(0, 1, 3, "text.", 10, false, 600),
			word(0, 2, 0, "More", 10, false, 580),
			word(0, 2, 1, "body", 10, false, 580),
			word(0, 2, 2, "text.", 10, false, 580),
		},
	}
	doc := rawpage.Document{Pages: []rawpage.RawPage{page}}
	src := New(doc)

	candidates, err := src.Candidates()
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected exactly one heading candidate, got %d: %+v", len(candidates), candidates)
	}
	if candidates[0].Title != "Introduction" {
		t.Fatalf("expected title %q, got %q", "Introduction", candidates[0].Title)
	}
	if candidates[0].Confidence < minConfidence || candidates[0].Confidence > maxConfidence {
		t.Fatalf("confidence %v out of bounds [%v,%v]", candidates[0].Confidence, minConfidence, maxConfidence)
	}
	if candidates[0].Level < 1 || candidates[0].Level > maxTiers {
		t.Fatalf("level %d out of bounds", candidates[0].Level)
	}
}

func TestCandidatesSkipsUniformBodyText(t *testing.T) {
	page := rawpage.RawPage{
		Index:  0,
		Height: 800,
		Words: []rawpage.RawWord{
			word(0, 0, 0, "This", 10, false, 700),
			word(0, 0, 1, "is", 10, false, 700),
			word(0, 0, 2, "a", 10, false, 700),
			word(0, 0, 3, "long", 10, false, 700),
			word(0, 0, 4, "sentence", 10, false, 700),
			word(0, 1, 0, "continuing", 10, false, 688),
			word(0, 1, 1, "with", 10, false, 688),
			word(0, 1, 2, "more", 10, false, 688),
			word(0, 1, 3, "text.", 10, false, 688),
		},
	}
	doc := rawpage.Document{Pages: []rawpage.RawPage{page}}
	src := New(doc)

	candidates, err := src.Candidates()
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("expected no candidates from uniform body text, got %+v", candidates)
	}
}

func TestCandidatesEmptyDocument(t *testing.T) {
	src := New(rawpage.Document{})
	candidates, err := src.Candidates()
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if candidates != nil {
		t.Fatalf("expected nil candidates for empty document, got %+v", candidates)
	}
}

func TestTierForBucketsByFontRatio(t *testing.T) {
	cases := []struct {
		size, body float64
		want       int
	}{
		{20, 10, 1},
		{15, 10, 2},
		{13, 10, 3},
		{11, 10, maxTiers},
	}
	for _, c := range cases {
		if got := tierFor(c.size, c.body); got != c.want {
			t.Errorf("tierFor(%v, %v) = %d, want %d", c.size, c.body, got, c.want)
		}
	}
}
