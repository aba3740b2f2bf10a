// Package tmplutil holds the function map shared by output templates.
package tmplutil

import (
	"encoding/json"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/goccy/go-yaml"
)

// FuncMap returns all Sprig functions plus json, yaml and field helpers.
func FuncMap() template.FuncMap {
	fm := sprig.TxtFuncMap()

	fm["json"] = func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	}
	fm["yaml"] = func(v any) (string, error) {
		b, err := yaml.Marshal(v)
		return strings.TrimSuffix(string(b), "\n"), err
	}
	// field collects one key from a list of objects, e.g.
	// {{ field "location" .changes | join ", " }}
	fm["field"] = func(key string, list []any) []any {
		out := make([]any, 0, len(list))
		for _, item := range list {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m[key])
			}
		}
		return out
	}

	return fm
}
