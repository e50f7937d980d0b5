package pipeline

import (
	"context"
	"testing"

	"github.com/loganrooks/scholardoc/internal/dictionary"
	"github.com/loganrooks/scholardoc/internal/rawpage"
)

func wordAt(text string, block, line, w int) rawpage.RawWord {
	return rawpage.RawWord{Text: text, Block: block, Line: line, Word: w, FontSize: 10}
}

func twoPageDoc() rawpage.Document {
	return rawpage.Document{
		Pages: []rawpage.RawPage{
			{
				Index:       0,
				PrintedPage: "1",
				Height:      800,
				Words: []rawpage.RawWord{
					wordAt("The", 0, 0, 0),
					wordAt("quick", 0, 0, 1),
					wordAt("func-", 0, 1, 0),
					wordAt("tion.", 0, 2, 0),
				},
			},
			{
				Index:       1,
				PrintedPage: "2",
				Height:      800,
				Words: []rawpage.RawWord{
					wordAt("continues", 0, 0, 0),
					wordAt("here.", 0, 0, 1),
				},
			},
		},
	}
}

func TestRunProducesDeterministicDocument(t *testing.T) {
	dict := dictionary.New([]string{"the", "quick", "function", "continues", "here"}, dictionary.DefaultRuleset())
	doc := twoPageDoc()

	first, err := Run(context.Background(), doc, dict, Config{NoParallel: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	dict2 := dictionary.New([]string{"the", "quick", "function", "continues", "here"}, dictionary.DefaultRuleset())
	second, err := Run(context.Background(), doc, dict2, Config{WorkerCount: 4})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if first.Document.Text != second.Document.Text {
		t.Fatalf("serial and parallel runs diverged:\n%q\n%q", first.Document.Text, second.Document.Text)
	}
	if len(first.Document.PageSpans) != 2 {
		t.Fatalf("expected 2 page spans, got %d", len(first.Document.PageSpans))
	}
}

func TestRunRejectsEmptyDocument(t *testing.T) {
	dict := dictionary.New(nil, dictionary.DefaultRuleset())
	_, err := Run(context.Background(), rawpage.Document{}, dict, Config{})
	if err == nil {
		t.Fatalf("expected an error for an empty document")
	}
}

func TestRunWarnsOnMalformedPageButContinues(t *testing.T) {
	dict := dictionary.New(nil, dictionary.DefaultRuleset())
	doc := rawpage.Document{
		Pages: []rawpage.RawPage{
			{Index: 0, Words: []rawpage.RawWord{{Text: "bad", Block: -1, Line: 0}}},
			{Index: 1, Words: []rawpage.RawWord{wordAt("fine", 0, 0, 0)}},
		},
	}
	result, err := Run(context.Background(), doc, dict, Config{NoParallel: true})
	if err != nil {
		t.Fatalf("Run should not fail the whole document for one bad page: %v", err)
	}
	if len(result.Warnings) == 0 {
		t.Fatalf("expected a warning for the malformed page")
	}
	if result.RunID == "" {
		t.Fatalf("expected Run to assign a run ID")
	}
	for _, w := range result.Warnings {
		if w.RunID != result.RunID {
			t.Fatalf("expected warning to carry the run's ID, got %q want %q", w.RunID, result.RunID)
		}
	}
}
