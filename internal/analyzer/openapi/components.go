package openapi

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/wudi/schemadiff/internal/change"
)

// components compares named schemas and security schemes as whole values.
// A missing components section counts as empty.
func (d *differ) components(old, new *openapi3.Components) {
	var (
		oldSchemas, newSchemas openapi3.Schemas
		oldSec, newSec         openapi3.SecuritySchemes
	)
	if old != nil {
		oldSchemas, oldSec = old.Schemas, old.SecuritySchemes
	}
	if new != nil {
		newSchemas, newSec = new.Schemas, new.SecuritySchemes
	}

	flatDiff(d, "/components/schemas/", "Schema", oldSchemas, newSchemas)
	flatDiff(d, "/components/securitySchemes/", "Security scheme", oldSec, newSec)
}

func flatDiff[V any](d *differ, prefix, noun string, old, new map[string]V) {
	change.MatchByKey(change.SortedKeys(old), change.SortedKeys(new), change.Identity, change.Visitor[string]{
		Removed: func(name string) {
			d.add(change.Removal, prefix+name, fmt.Sprintf("%s '%s' was removed", noun, name), nil)
		},
		Added: func(name string) {
			d.add(change.Addition, prefix+name, fmt.Sprintf("%s '%s' was added", noun, name), nil)
		},
		Equal: func(name, _ string) bool { return equal(old[name], new[name]) },
		Matched: func(name, _ string) {
			d.add(change.Modification, prefix+name, fmt.Sprintf("%s '%s' was modified", noun, name), nil)
		},
	})
}
