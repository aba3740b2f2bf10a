// Package schema defines the versioned schema documents that analyzers compare.
package schema

import (
	"path/filepath"
	"strings"

	"github.com/wudi/schemadiff/internal/errors"
)

// Format identifies the dialect a schema is written in.
type Format string

const (
	FormatJSONSchema Format = "json_schema"
	FormatOpenAPI    Format = "openapi"
	FormatProtobuf   Format = "protobuf"
	FormatSQL        Format = "sql_ddl"
)

// Formats lists every supported format in a stable order.
var Formats = []Format{FormatJSONSchema, FormatOpenAPI, FormatProtobuf, FormatSQL}

var formatAliases = map[string]Format{
	"json_schema": FormatJSONSchema,
	"jsonschema":  FormatJSONSchema,
	"json":        FormatJSONSchema,
	"openapi":     FormatOpenAPI,
	"openapi3":    FormatOpenAPI,
	"oas":         FormatOpenAPI,
	"protobuf":    FormatProtobuf,
	"proto":       FormatProtobuf,
	"sql_ddl":     FormatSQL,
	"sql":         FormatSQL,
	"ddl":         FormatSQL,
}

var extensionFormats = map[string]Format{
	".json":      FormatJSONSchema,
	".yaml":      FormatOpenAPI,
	".yml":       FormatOpenAPI,
	".proto":     FormatProtobuf,
	".textproto": FormatProtobuf,
	".pbtxt":     FormatProtobuf,
	".sql":       FormatSQL,
}

// ParseFormat resolves a format name or alias.
func ParseFormat(name string) (Format, error) {
	if f, ok := formatAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return f, nil
	}
	return "", errors.New(errors.KindInvalidFormat, "unsupported schema format: "+name)
}

// FormatFromPath infers a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	if f, ok := extensionFormats[strings.ToLower(filepath.Ext(path))]; ok {
		return f, nil
	}
	return "", errors.New(errors.KindInvalidFormat, "cannot infer schema format from "+path)
}

// Schema is one version of a schema document. It is read-only once built.
type Schema struct {
	format  Format
	content string
	version string
}

// New creates a schema. The version is an opaque label.
func New(format Format, content, version string) *Schema {
	return &Schema{format: format, content: content, version: version}
}

func (s *Schema) Format() Format  { return s.format }
func (s *Schema) Content() string { return s.content }
func (s *Schema) Version() string { return s.version }
