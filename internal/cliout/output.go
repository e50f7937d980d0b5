// Package cliout formats CLI command results as YAML or JSON, matching
// the output-format convention used across the command surface.
package cliout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Format is the CLI's structured output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// DefaultFormat is used when no explicit format is set.
var DefaultFormat Format = FormatYAML

var globalFormat Format = DefaultFormat

// SetFormat sets the global output format, falling back to DefaultFormat
// for anything unrecognized.
func SetFormat(format string) {
	switch format {
	case "json":
		globalFormat = FormatJSON
	case "yaml":
		globalFormat = FormatYAML
	default:
		globalFormat = DefaultFormat
	}
}

// GetFormat returns the current global output format.
func GetFormat() Format {
	return globalFormat
}

// Write writes data to stdout in the configured format.
func Write(data any) error {
	return WriteTo(os.Stdout, globalFormat, data)
}

// WriteTo writes data to w in the given format.
func WriteTo(w io.Writer, format Format, data any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}
