// Package pipeline orchestrates one document's pass through the rejoin,
// OCR-flag, and heading-detection stages, parallel over pages against a
// frozen dictionary snapshot, followed by the single serial reduction
// step and the serial cascading extractor (spec §5).
package pipeline

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"github.com/loganrooks/scholardoc/internal/dictionary"
	"github.com/loganrooks/scholardoc/internal/document"
	"github.com/loganrooks/scholardoc/internal/heading"
	"github.com/loganrooks/scholardoc/internal/heading/detect"
	"github.com/loganrooks/scholardoc/internal/ocrquality"
	"github.com/loganrooks/scholardoc/internal/rawpage"
	"github.com/loganrooks/scholardoc/internal/rejoin"
	"github.com/loganrooks/scholardoc/internal/scholarerr"
	"github.com/loganrooks/scholardoc/internal/structure"
)

// Config controls how a document is run through the pipeline.
type Config struct {
	Logger      *slog.Logger
	WorkerCount int  // default: runtime.NumCPU()
	NoParallel  bool // force single-worker, page-order processing
	Outline     heading.Source
	ToC         []heading.Candidate
}

// pageJob is one unit of parallel per-page work.
type pageJob struct {
	index int
	page  rawpage.RawPage
}

// pageOutcome is one page's result from the parallel phase.
type pageOutcome struct {
	index    int
	input    document.PageInput
	delta    *dictionary.Delta
	warnings []scholarerr.Warning
}

// Result is the outcome of running Run: the assembled document plus any
// page-local warnings accumulated along the way (spec §7: page-local
// errors are absorbed into warnings, not surfaced as failures). RunID
// correlates this result's warnings and log lines with one invocation of
// Run, the way the teacher correlates a book's jobs across its pipeline.
type Result struct {
	RunID    string
	Document document.ScholarDocument
	Warnings []scholarerr.Warning
}

// Run processes doc end to end against dict, mutating dict in place via
// the single serial ApplyDelta step once the parallel phase completes.
// Cancellation is cooperative at page boundaries: ctx.Err() is checked
// between dispatching pages, and partial results of in-flight pages are
// discarded, never merged (spec §5).
func Run(ctx context.Context, doc rawpage.Document, dict *dictionary.Dictionary, cfg Config) (Result, error) {
	runID := uuid.NewString()
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("run_id", runID)

	// Only an empty document fails the run; a malformed page is skipped
	// with a warning by processPage.
	if len(doc.Pages) == 0 {
		return Result{}, scholarerr.New(scholarerr.KindEmptyDocument, "document has no pages")
	}

	workerCount := cfg.WorkerCount
	if cfg.NoParallel {
		workerCount = 1
	}
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}

	outcomes := make([]*pageOutcome, len(doc.Pages))

	jobs := make(chan pageJob, len(doc.Pages))
	results := make(chan *pageOutcome, len(doc.Pages))

	var wg sync.WaitGroup
	for w := 0; w < workerCount; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for job := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				results <- processPage(job, dict, logger, runID)
			}
		}(w)
	}

	go func() {
		defer close(jobs)
		for i, p := range doc.Pages {
			select {
			case <-ctx.Done():
				return
			case jobs <- pageJob{index: i, page: p}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for outcome := range results {
		outcomes[outcome.index] = outcome
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	merged := dictionary.NewDelta()
	var pageInputs []document.PageInput
	var warnings []scholarerr.Warning

	for i, outcome := range outcomes {
		if outcome == nil {
			// A page with no outcome: record a warning and emit an empty
			// segment rather than abort the document (spec §7 graceful
			// degradation). A cancelled run has already returned above.
			warnings = append(warnings, scholarerr.Warning{
				Kind:    scholarerr.KindMalformedPage,
				Page:    i,
				Message: "page did not complete processing",
				RunID:   runID,
			})
			pageInputs = append(pageInputs, document.PageInput{Page: i})
			continue
		}
		merged.Merge(outcome.delta)
		pageInputs = append(pageInputs, outcome.input)
		warnings = append(warnings, outcome.warnings...)
	}

	dict.ApplyDelta(merged)

	var detectSource heading.Source
	if len(doc.Pages) > 0 {
		detectSource = detect.New(doc)
	}
	spans, err := structure.Extract(len(doc.Pages), cfg.Outline, detectSource, cfg.ToC)
	if err != nil {
		warnings = append(warnings, scholarerr.Warning{
			Kind:    scholarerr.KindStructureValidation,
			Message: err.Error(),
			RunID:   runID,
		})
		spans = nil
	}

	built := document.Build(pageInputs, spans)

	logger.Info("pipeline run complete",
		"pages", len(doc.Pages), "warnings", len(warnings), "quality", built.Quality.Level)

	return Result{RunID: runID, Document: built, Warnings: warnings}, nil
}

// processPage runs the rejoin and OCR-flag stages for one page against a
// read-only dictionary snapshot, accumulating its own observe() delta
// rather than touching dict directly (spec §5 parallel phase contract).
func processPage(job pageJob, dict *dictionary.Dictionary, logger *slog.Logger, runID string) *pageOutcome {
	if err := job.page.Validate(); err != nil {
		logger.Warn("skipping malformed page", "page", job.index, "error", err)
		return &pageOutcome{
			index: job.index,
			input: document.PageInput{Page: job.index},
			delta: dictionary.NewDelta(),
			warnings: []scholarerr.Warning{{
				Kind:    scholarerr.KindMalformedPage,
				Page:    job.index,
				Message: err.Error(),
				RunID:   runID,
			}},
		}
	}

	delta := dictionary.NewDelta()
	rejoined := rejoin.Page(job.page, dict, delta)
	flags := ocrquality.Page(job.index, rejoined.Text, dict, delta)

	return &pageOutcome{
		index: job.index,
		input: document.PageInput{
			Page:        job.index,
			PrintedPage: job.page.PrintedPage,
			Text:        rejoined.Text,
			Flags:       flags,
		},
		delta: delta,
	}
}
