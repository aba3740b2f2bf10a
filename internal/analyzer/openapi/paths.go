package openapi

import (
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/wudi/schemadiff/internal/change"
)

// methods are compared in this order.
var methods = []struct {
	name string
	verb string
}{
	{"get", http.MethodGet},
	{"post", http.MethodPost},
	{"put", http.MethodPut},
	{"delete", http.MethodDelete},
	{"patch", http.MethodPatch},
	{"head", http.MethodHead},
	{"options", http.MethodOptions},
}

type differ struct {
	changes []change.Change
}

func (d *differ) add(t change.Type, location, description string, metadata map[string]string) {
	d.changes = append(d.changes, change.New(t, location, description, metadata))
}

// paths skips path items that are references on either side.
func (d *differ) paths(old, new map[string]*openapi3.PathItem) {
	isRef := func(item *openapi3.PathItem) bool { return item == nil || item.Ref != "" }

	change.MatchByKey(change.SortedKeys(old), change.SortedKeys(new), change.Identity, change.Visitor[string]{
		Removed: func(p string) {
			if isRef(old[p]) {
				return
			}
			d.add(change.Removal, "/paths"+p, fmt.Sprintf("Path '%s' was removed", p), map[string]string{"path": p})
		},
		Added: func(p string) {
			if isRef(new[p]) {
				return
			}
			d.add(change.Addition, "/paths"+p, fmt.Sprintf("New path '%s' was added", p), map[string]string{"path": p})
		},
		Matched: func(p, _ string) {
			if isRef(old[p]) || isRef(new[p]) {
				return
			}
			d.operations(p, old[p], new[p])
		},
	})
}

func (d *differ) operations(path string, old, new *openapi3.PathItem) {
	for _, m := range methods {
		oldOp, newOp := old.GetOperation(m.verb), new.GetOperation(m.verb)
		location := "/paths" + path + "/" + m.name

		switch {
		case oldOp != nil && newOp != nil:
			d.parameters(path, m.name, oldOp.Parameters, newOp.Parameters)
			d.requestBody(location, oldOp.RequestBody, newOp.RequestBody)
			d.responses(location, oldOp.Responses.Map(), newOp.Responses.Map())
		case oldOp != nil:
			d.add(change.Removal, location, fmt.Sprintf("HTTP method '%s' was removed from '%s'", m.name, path), nil)
		case newOp != nil:
			d.add(change.Addition, location, fmt.Sprintf("HTTP method '%s' was added to '%s'", m.name, path), nil)
		}
	}
}

// parameters matches by name regardless of location and reports only
// parameters that went from optional to required. Referenced parameters are
// ignored.
func (d *differ) parameters(path, method string, old, new openapi3.Parameters) {
	change.MatchByKey(inlineParameters(old), inlineParameters(new),
		func(p *openapi3.Parameter) string { return p.Name },
		change.Visitor[*openapi3.Parameter]{
			Matched: func(o, n *openapi3.Parameter) {
				if o.Required || !n.Required {
					return
				}
				d.add(change.Modification,
					"/paths"+path+"/"+method+"/parameters/"+o.Name,
					fmt.Sprintf("Parameter '%s' changed from %s", o.Name, optionalToRequired),
					map[string]string{
						"path":      path,
						"method":    method,
						"parameter": o.Name,
					})
			},
		})
}

func inlineParameters(params openapi3.Parameters) []*openapi3.Parameter {
	out := make([]*openapi3.Parameter, 0, len(params))
	for _, p := range params {
		if p == nil || p.Ref != "" || p.Value == nil {
			continue
		}
		out = append(out, p.Value)
	}
	return out
}

func (d *differ) requestBody(location string, old, new *openapi3.RequestBodyRef) {
	location += "/requestBody"
	switch {
	case old != nil && new == nil:
		d.add(change.Removal, location, "Request body was removed", nil)
	case old == nil && new != nil:
		d.add(change.Addition, location, "Request body was added", nil)
	case old != nil && new != nil && !equal(old, new):
		d.add(change.Modification, location, "Request body was modified", nil)
	}
}

func (d *differ) responses(location string, old, new map[string]*openapi3.ResponseRef) {
	change.MatchByKey(change.SortedKeys(old), change.SortedKeys(new), change.Identity, change.Visitor[string]{
		Removed: func(status string) {
			d.add(change.Removal, location+"/responses/"+status, fmt.Sprintf("Response '%s' was removed", status), nil)
		},
		Added: func(status string) {
			d.add(change.Addition, location+"/responses/"+status, fmt.Sprintf("Response '%s' was added", status), nil)
		},
		Equal: func(status, _ string) bool { return equal(old[status], new[status]) },
		Matched: func(status, _ string) {
			d.add(change.Modification, location+"/responses/"+status, fmt.Sprintf("Response '%s' was modified", status), nil)
		},
	})
}
