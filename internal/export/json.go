// Package export projects a ScholarDocument onto the external interfaces
// fixed by spec §6: Markdown, JSON, and a tabular SQLite layout.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/loganrooks/scholardoc/internal/document"
)

// jsonSchemaSource is the document export schema, validated at export time
// so a malformed writer change fails loudly instead of shipping a
// silently wrong byte-offset contract downstream.
const jsonSchemaSource = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["text", "pages", "sections", "flags", "metadata"],
  "properties": {
    "text": {"type": "string"},
    "pages": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["start", "end", "label"],
        "properties": {
          "start": {"type": "integer"},
          "end": {"type": "integer"},
          "label": {"type": "string"}
        }
      }
    },
    "sections": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["start", "end", "title", "level", "confidence"],
        "properties": {
          "start": {"type": "integer"},
          "end": {"type": "integer"},
          "title": {"type": "string"},
          "level": {"type": "integer"},
          "confidence": {"type": "number"}
        }
      }
    },
    "flags": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["offset", "reason", "confidence"],
        "properties": {
          "offset": {"type": "integer"},
          "reason": {"type": "string"},
          "confidence": {"type": "number"}
        }
      }
    },
    "metadata": {"type": "object"}
  }
}`

var jsonSchema *jsonschema.Schema

func init() {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("scholardoc-export.json", bytes.NewReader([]byte(jsonSchemaSource))); err != nil {
		panic(fmt.Sprintf("export: invalid embedded json schema: %v", err))
	}
	schema, err := compiler.Compile("scholardoc-export.json")
	if err != nil {
		panic(fmt.Sprintf("export: failed to compile embedded json schema: %v", err))
	}
	jsonSchema = schema
}

type jsonPage struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Label string `json:"label"`
}

type jsonSection struct {
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Title      string  `json:"title"`
	Level      int     `json:"level"`
	Confidence float64 `json:"confidence"`
}

type jsonFlag struct {
	Offset     int     `json:"offset"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

type jsonDocument struct {
	Text     string            `json:"text"`
	Pages    []jsonPage        `json:"pages"`
	Sections []jsonSection     `json:"sections"`
	Flags    []jsonFlag        `json:"flags"`
	Metadata map[string]string `json:"metadata"`
}

// JSON renders doc as the §6 JSON schema, byte-exact on UTF-8 offsets.
// metadata is merged into the output's free-form metadata object.
func JSON(doc document.ScholarDocument, metadata map[string]string) ([]byte, error) {
	// Empty, non-nil slices so an absent list encodes as [] rather than
	// null, which the schema's "array" type would reject.
	out := jsonDocument{
		Text:     doc.Text,
		Pages:    []jsonPage{},
		Sections: []jsonSection{},
		Flags:    []jsonFlag{},
		Metadata: metadata,
	}
	if out.Metadata == nil {
		out.Metadata = map[string]string{}
	}

	for _, p := range doc.PageSpans {
		out.Pages = append(out.Pages, jsonPage{
			Start: p.StartOffset,
			End:   p.EndOffset,
			Label: p.PrintedPage,
		})
	}
	for _, s := range doc.SectionSpans {
		out.Sections = append(out.Sections, jsonSection{
			Start:      s.Start,
			End:        s.End,
			Title:      s.Title,
			Level:      s.Level,
			Confidence: s.Confidence,
		})
	}
	for _, f := range doc.FlaggedWords {
		out.Flags = append(out.Flags, jsonFlag{
			Offset:     f.Offset,
			Reason:     string(f.Reason),
			Confidence: f.Confidence,
		})
	}

	raw, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("export: marshal document: %w", err)
	}

	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("export: re-decode for validation: %w", err)
	}
	if err := jsonSchema.Validate(decoded); err != nil {
		return nil, fmt.Errorf("export: document failed schema validation: %w", err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("export: indent: %w", err)
	}
	return pretty.Bytes(), nil
}
