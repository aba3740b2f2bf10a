// Package openapi compares OpenAPI 3 documents path by path and operation by
// operation.
package openapi

import (
	"bytes"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/openbindings/openbindings-go/canonicaljson"
	"github.com/wudi/schemadiff/internal/analyzer"
	"github.com/wudi/schemadiff/internal/change"
	"github.com/wudi/schemadiff/internal/report"
	"github.com/wudi/schemadiff/internal/schema"
)

// CodePrefix prefixes every OpenAPI validation code.
const CodePrefix = "API"

// Weights are the score deductions per change type.
var Weights = report.Weights{Addition: 5, Removal: 20, Modification: 10, Rename: 8}

// RequiredParameterDeduction replaces the modification weight for a
// parameter that became required.
const RequiredParameterDeduction = 25

const optionalToRequired = "optional to required"

// New returns the OpenAPI analyzer.
func New(opts ...analyzer.Option) *analyzer.Engine[*openapi3.T] {
	return analyzer.NewEngine[*openapi3.T](schema.FormatOpenAPI, Strategy{}, analyzer.Rules{
		Weights:  Weights,
		Deduct:   Deduct,
		Classify: Classify,
		Issues:   true,
	}, opts...)
}

// Deduct scores a change, charging more for parameters made required.
func Deduct(c change.Change) int {
	if c.Type == change.Modification && strings.Contains(c.Description, optionalToRequired) {
		return RequiredParameterDeduction
	}
	return Weights.Of(c.Type)
}

// Classify flags removals as API001, and modifications as API002 when they
// make a parameter required or change a schema type. The rules match on
// location and description text only.
func Classify(c change.Change) (report.ValidationError, bool) {
	switch c.Type {
	case change.Removal:
		return report.ValidationError{
			Message:  "Breaking change: " + c.Description,
			Location: c.Location,
			Code:     report.CodeFor(CodePrefix, report.SeverityError),
		}, true
	case change.Modification:
		if (strings.Contains(c.Location, "parameters") && strings.Contains(c.Description, "required")) ||
			(strings.Contains(c.Location, "schema") && strings.Contains(c.Description, "type")) {
			return report.ValidationError{
				Message:  "Breaking change: " + c.Description,
				Location: c.Location,
				Code:     report.CodeFor(CodePrefix, report.SeverityWarning),
			}, true
		}
	}
	return report.ValidationError{}, false
}

// Strategy parses and diffs OpenAPI documents.
type Strategy struct{}

// Parse loads a JSON or YAML OpenAPI document. Internal references are
// resolved; external ones are rejected.
func (Strategy) Parse(content string) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = false
	return loader.LoadFromData([]byte(content))
}

// Metadata records the info.version of both documents.
func (Strategy) Metadata(old, new *openapi3.T) map[string]string {
	return map[string]string{
		"old_version": infoVersion(old),
		"new_version": infoVersion(new),
	}
}

func infoVersion(doc *openapi3.T) string {
	if doc == nil || doc.Info == nil {
		return ""
	}
	return doc.Info.Version
}

// Diff compares paths, then component schemas, then security schemes.
func (Strategy) Diff(old, new *openapi3.T) []change.Change {
	d := &differ{}
	d.paths(old.Paths.Map(), new.Paths.Map())
	d.components(old.Components, new.Components)
	return d.changes
}

// equal compares two document fragments by their canonical JSON encoding.
func equal(a, b any) bool {
	ab, err := canonicaljson.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := canonicaljson.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}
