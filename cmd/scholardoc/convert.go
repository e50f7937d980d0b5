package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/loganrooks/scholardoc/internal/dictionary"
	"github.com/loganrooks/scholardoc/internal/export"
	"github.com/loganrooks/scholardoc/internal/heading"
	"github.com/loganrooks/scholardoc/internal/heading/outline"
	"github.com/loganrooks/scholardoc/internal/pdfadapter"
	"github.com/loganrooks/scholardoc/internal/pipeline"
	"github.com/loganrooks/scholardoc/internal/scholarerr"
)

var (
	convertOut        string
	convertFormat     string
	convertDict       string
	convertNoParallel bool
	convertOutlinePDF string
	convertDebug      bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <path>",
	Short: "Convert a parsed document into a clean, structured ScholarDocument",
	Long: `convert reads a parser-output file describing a document's raw pages
(the word/bbox tuples a PDF text-layer parser produces) and runs it through
the rejoin, OCR-flag, and structure-extraction pipeline, writing the result
as markdown, json, or sqlite.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVar(&convertOut, "out", "", "output file path (default: stdout)")
	convertCmd.Flags().StringVar(&convertFormat, "format", "markdown", "output format: markdown, json, or sqlite")
	convertCmd.Flags().StringVar(&convertDict, "dict", "", "learned-dictionary file to load and save back to")
	convertCmd.Flags().BoolVar(&convertNoParallel, "no-parallel", false, "disable per-page parallel processing")
	convertCmd.Flags().StringVar(&convertOutlinePDF, "outline-pdf", "", "original PDF to read the bookmark outline from")
	convertCmd.Flags().BoolVar(&convertDebug, "debug", false, "inline flagged words in markdown output")
}

func runConvert(cmd *cobra.Command, args []string) error {
	path := args[0]
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: GetLogLevel()}))

	doc, err := pdfadapter.LoadWords(path)
	if err != nil {
		return err
	}
	if convertOutlinePDF != "" {
		if err := pdfadapter.ValidatePageCount(convertOutlinePDF, doc); err != nil {
			return err
		}
	}

	dict := dictionary.New(nil, dictionary.DefaultRuleset())
	if convertDict != "" {
		result, err := dictionary.Load(convertDict, dict)
		if err != nil {
			logger.Warn("dictionary load degraded to base set", "error", err)
		}
		if result.IgnoredLines > 0 {
			logger.Warn("ignored corrupt dictionary lines", "count", result.IgnoredLines)
		}
	}

	var outlineSource heading.Source
	if convertOutlinePDF != "" {
		outlineSource = outline.New(convertOutlinePDF)
	}

	result, err := pipeline.Run(cmd.Context(), doc, dict, pipeline.Config{
		Logger:     logger,
		NoParallel: convertNoParallel,
		Outline:    outlineSource,
	})
	if err != nil {
		return err
	}
	logger.Info("convert run finished", "run_id", result.RunID)
	for _, w := range result.Warnings {
		logger.Warn(w.String())
	}

	if convertDict != "" {
		if err := dictionary.Save(convertDict, dict); err != nil {
			return err
		}
	}

	return writeOutput(result, path)
}

func writeOutput(result pipeline.Result, sourcePath string) error {
	switch convertFormat {
	case "markdown", "":
		md := export.Markdown(result.Document, export.MarkdownOptions{
			PageMarkers: export.PageMarkerComment,
			Debug:       convertDebug,
		})
		return writeBytes([]byte(md))
	case "json":
		raw, err := export.JSON(result.Document, map[string]string{"source": sourcePath})
		if err != nil {
			return scholarerr.Wrap(scholarerr.KindIO, "failed to render json export", err)
		}
		return writeBytes(raw)
	case "sqlite":
		if convertOut == "" {
			return scholarerr.New(scholarerr.KindInput, "--out is required for sqlite format")
		}
		return export.SQLite(convertOut, result.Document, map[string]string{"source": sourcePath})
	default:
		return scholarerr.New(scholarerr.KindInput, fmt.Sprintf("unknown format %q", convertFormat))
	}
}

func writeBytes(data []byte) error {
	if convertOut == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(convertOut, data, 0o644); err != nil {
		return scholarerr.Wrap(scholarerr.KindIO, "failed to write output file", err)
	}
	return nil
}

// exitCodeFor maps the error taxonomy to the CLI exit codes fixed by
// spec §6: 0 ok, 2 bad input, 3 malformed PDF, 4 IO error.
func exitCodeFor(err error) int {
	var tagged *scholarerr.Error
	if errors.As(err, &tagged) {
		switch tagged.Kind {
		case scholarerr.KindInput, scholarerr.KindEmptyDocument:
			return 2
		case scholarerr.KindMalformedPage:
			return 3
		case scholarerr.KindIO, scholarerr.KindDictionaryLoad:
			return 4
		}
	}
	return 1
}
