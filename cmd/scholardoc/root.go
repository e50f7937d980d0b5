package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/loganrooks/scholardoc/internal/cliout"
	"github.com/loganrooks/scholardoc/version"
)

var (
	cfgFile      string
	outputFormat string
	logLevel     string
)

// ParseLogLevel converts a string log level to slog.Level. Supports
// debug, info, warn, error (case-insensitive).
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: must be debug, info, warn, or error", level)
	}
}

// GetLogLevel resolves the configured log level: --log-level flag, then
// SCHOLARDOC_LOG_LEVEL, then info.
func GetLogLevel() slog.Level {
	level := logLevel
	if level == "" {
		level = os.Getenv("SCHOLARDOC_LOG_LEVEL")
	}
	if level == "" {
		level = "info"
	}
	parsed, err := ParseLogLevel(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using info\n", err)
		return slog.LevelInfo
	}
	return parsed
}

var rootCmd = &cobra.Command{
	Use:   "scholardoc",
	Short: "Convert scholarly PDFs into clean, structured documents",
	Long: `scholardoc converts scholarly PDF documents into a clean, structured
intermediate representation suitable for retrieval-augmented generation,
citation, and export to Markdown.

The pipeline includes:
  - Line-break rejoining with cross-region false-match rejection
  - Adaptive spell-check flagging for re-OCR candidates
  - Cascading heading/structure extraction (outline, then detection)
  - Quality scoring and RAG-readiness assessment`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (accepted; no command reads it)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "yaml", "CLI status output format: yaml or json (no command prints status output)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default: info, env: SCHOLARDOC_LOG_LEVEL)")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cliout.SetFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(convertCmd)
}
