// Package jsonschema compares JSON Schema documents as generic JSON trees.
package jsonschema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/openbindings/openbindings-go/canonicaljson"
	jsv "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/wudi/schemadiff/internal/analyzer"
	"github.com/wudi/schemadiff/internal/change"
	"github.com/wudi/schemadiff/internal/errors"
	"github.com/wudi/schemadiff/internal/report"
	"github.com/wudi/schemadiff/internal/schema"
)

// Weights are the score deductions per change type.
var Weights = report.Weights{Addition: 5, Removal: 20, Modification: 10, Rename: 8}

// New returns the JSON Schema analyzer. It reports no issues and accepts
// every change sequence as valid.
func New(opts ...analyzer.Option) *analyzer.Engine[any] {
	return analyzer.NewEngine[any](schema.FormatJSONSchema, Strategy{}, analyzer.Rules{
		Weights: Weights,
	}, opts...)
}

// Strategy parses and diffs JSON documents.
type Strategy struct{}

// Parse decodes content keeping numbers exact as json.Number.
func (Strategy) Parse(content string) (any, error) {
	doc, err := jsv.UnmarshalJSON(strings.NewReader(content))
	if err != nil {
		return nil, errors.Wrap(err, errors.KindJSON, "invalid JSON document")
	}
	return doc, nil
}

// Diff walks both trees from the root. Object keys are visited in sorted
// order. Arrays of different length report one length change and then
// compare only the shared prefix; trailing elements are not examined.
func (Strategy) Diff(old, new any) []change.Change {
	var d differ
	d.compare("", old, new)
	return d.changes
}

type differ struct {
	changes []change.Change
}

func (d *differ) compare(path string, old, new any) {
	switch o := old.(type) {
	case map[string]any:
		if n, ok := new.(map[string]any); ok {
			d.compareObjects(path, o, n)
			return
		}
	case []any:
		if n, ok := new.([]any); ok {
			d.compareArrays(path, o, n)
			return
		}
	}
	if reflect.DeepEqual(old, new) {
		return
	}

	oldText, newText := render(old), render(new)
	d.changes = append(d.changes, change.New(change.Modification, path,
		fmt.Sprintf("Value changed from %s to %s", oldText, newText),
		map[string]string{
			"old_value": oldText,
			"new_value": newText,
		}))
}

func (d *differ) compareObjects(path string, old, new map[string]any) {
	change.MatchByKey(change.SortedKeys(old), change.SortedKeys(new), change.Identity, change.Visitor[string]{
		Matched: func(key, _ string) {
			d.compare(path+"/"+key, old[key], new[key])
		},
		Removed: func(key string) {
			d.changes = append(d.changes, change.New(change.Removal, path+"/"+key,
				fmt.Sprintf("Property '%s' was removed", key),
				map[string]string{"property": key}))
		},
		Added: func(key string) {
			d.changes = append(d.changes, change.New(change.Addition, path+"/"+key,
				fmt.Sprintf("New property '%s' was added", key),
				map[string]string{"property": key}))
		},
	})
}

func (d *differ) compareArrays(path string, old, new []any) {
	if len(old) != len(new) {
		d.changes = append(d.changes, change.New(change.Modification, path,
			fmt.Sprintf("Array length changed from %d to %d", len(old), len(new)),
			map[string]string{
				"old_length": strconv.Itoa(len(old)),
				"new_length": strconv.Itoa(len(new)),
			}))
	}
	for i := 0; i < min(len(old), len(new)); i++ {
		d.compare(path+"/"+strconv.Itoa(i), old[i], new[i])
	}
}

// render prints a value as canonical JSON. Top-level numbers keep their
// source literal since canonical form would round them to float64.
func render(v any) string {
	if n, ok := v.(json.Number); ok {
		return n.String()
	}
	b, err := canonicaljson.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
