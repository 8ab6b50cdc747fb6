// Package render writes reports as text, JSON or YAML.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/pretty"
	"sigs.k8s.io/yaml"

	"workerscope/internal/model"
)

// Format is an output format name
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts text, json, yaml (case-insensitive); empty means text
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q, want text, json or yaml", s)
	}
}

// ContentType is the HTTP content type for a format
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json; charset=utf-8"
	case FormatYAML:
		return "application/yaml; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Write renders report to w in the given format
func Write(w io.Writer, report *model.Report, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatYAML:
		return writeYAML(w, report)
	case FormatText, "":
		return WriteText(w, report)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// JSON returns the indented JSON of v
func JSON(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal json: %w", err)
	}
	return pretty.Pretty(data), nil
}

func writeJSON(w io.Writer, report *model.Report) error {
	data, err := JSON(report)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func writeYAML(w io.Writer, report *model.Report) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal yaml: %w", err)
	}
	_, err = w.Write(data)
	return err
}
