// Package output renders reports, plans and evaluations as YAML or JSON.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/wudi/schemadiff/internal/errors"
)

// Format names an output encoding.
type Format string

const (
	// FormatYAML is the default output format.
	FormatYAML     Format = "yaml"
	FormatJSON     Format = "json"
	FormatTemplate Format = "template"
)

// DefaultFormat is used when no format is configured.
const DefaultFormat = FormatYAML

// ParseFormat parses a format name, case-insensitively. An empty name
// selects DefaultFormat.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultFormat, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "template":
		return FormatTemplate, nil
	default:
		return "", errors.New(errors.KindInvalidFormat,
			fmt.Sprintf("invalid output format: %q (expected yaml, json or template)", s))
	}
}

// Formatter encodes values for display.
type Formatter interface {
	Format(v any) (string, error)
	FormatToWriter(w io.Writer, v any) error
}

// GetFormatter returns the formatter for f. Template formatters need their
// text and are built with NewTemplateFormatter.
func GetFormatter(f Format) (Formatter, error) {
	switch f {
	case FormatYAML:
		return NewYAMLFormatter(), nil
	case FormatJSON:
		return NewJSONFormatter(), nil
	default:
		return nil, errors.New(errors.KindInvalidFormat, fmt.Sprintf("unsupported output format: %q", f))
	}
}

// YAMLFormatter encodes values as YAML using their yaml struct tags.
type YAMLFormatter struct{}

func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

func (f *YAMLFormatter) Format(v any) (string, error) {
	raw, err := f.encode(v)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (f *YAMLFormatter) FormatToWriter(w io.Writer, v any) error {
	raw, err := f.encode(v)
	if err != nil {
		return err
	}
	return write(w, raw)
}

func (f *YAMLFormatter) encode(v any) ([]byte, error) {
	raw, err := yaml.MarshalWithOptions(v, yaml.Indent(2))
	if err != nil {
		return nil, errors.Wrap(err, errors.KindJSON, "encode yaml output")
	}
	return raw, nil
}

// JSONFormatter encodes values as indented JSON.
type JSONFormatter struct {
	Indent string
}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{Indent: "  "}
}

func (f *JSONFormatter) Format(v any) (string, error) {
	raw, err := f.encode(v)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (f *JSONFormatter) FormatToWriter(w io.Writer, v any) error {
	raw, err := f.encode(v)
	if err != nil {
		return err
	}
	return write(w, raw)
}

func (f *JSONFormatter) encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", f.Indent)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, errors.KindJSON, "encode json output")
	}
	return buf.Bytes(), nil
}

func write(w io.Writer, raw []byte) error {
	if _, err := w.Write(raw); err != nil {
		return errors.Wrap(err, errors.KindIO, "write output")
	}
	return nil
}

// FormatToWriter writes v to w in format f.
func FormatToWriter(w io.Writer, f Format, v any) error {
	formatter, err := GetFormatter(f)
	if err != nil {
		return err
	}
	return formatter.FormatToWriter(w, v)
}
