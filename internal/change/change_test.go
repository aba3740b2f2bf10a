package change

import (
	"reflect"
	"strings"
	"testing"
)

func TestNewFillsMetadata(t *testing.T) {
	c := New(Addition, "/properties/age", "Property 'age' was added", nil)
	if c.Metadata == nil {
		t.Fatal("expected non-nil metadata map")
	}
	if c.IsBreaking() {
		t.Error("addition should not be breaking")
	}
}

func TestIsBreaking(t *testing.T) {
	tests := []struct {
		typ  Type
		want bool
	}{
		{Addition, false},
		{Removal, true},
		{Modification, true},
		{Rename, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			if got := New(tt.typ, "/x", "", nil).IsBreaking(); got != tt.want {
				t.Errorf("IsBreaking() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCount(t *testing.T) {
	changes := []Change{
		New(Addition, "/a", "", nil),
		New(Addition, "/b", "", nil),
		New(Removal, "/c", "", nil),
		New(Modification, "/d", "", nil),
	}

	c := Count(changes)
	want := Counts{Additions: 2, Removals: 1, Modifications: 1, Renames: 0, Total: 4}
	if c != want {
		t.Errorf("Count = %+v, want %+v", c, want)
	}

	ctx := c.Context()
	wantCtx := map[string]string{
		"additions": "2", "removals": "1", "modifications": "1", "renames": "0", "total_changes": "4",
	}
	if !reflect.DeepEqual(ctx, wantCtx) {
		t.Errorf("Context = %v, want %v", ctx, wantCtx)
	}
}

type named struct {
	name  string
	value int
}

func TestMatchByKey(t *testing.T) {
	before := []named{{"id", 1}, {"name", 2}, {"legacy", 3}, {"same", 4}}
	after := []named{{"name", 20}, {"same", 4}, {"id", 1}, {"email", 5}}

	var events []string
	MatchByKey(before, after, func(n named) string { return n.name }, Visitor[named]{
		Removed: func(o named) { events = append(events, "removed:"+o.name) },
		Added:   func(n named) { events = append(events, "added:"+n.name) },
		Matched: func(o, n named) { events = append(events, "matched:"+o.name) },
		Equal:   func(o, n named) bool { return o.value == n.value },
	})

	want := []string{"matched:name", "removed:legacy", "added:email"}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestMatchByKeyWithoutEqual(t *testing.T) {
	var matched []string
	MatchByKey([]string{"a", "b"}, []string{"b", "a"}, Identity, Visitor[string]{
		Matched: func(o, n string) { matched = append(matched, o+n) },
	})

	if got := strings.Join(matched, ","); got != "aa,bb" {
		t.Errorf("matched = %s, want aa,bb", got)
	}
}

func TestMatchByKeyDuplicateKeysUseFirst(t *testing.T) {
	before := []named{{"x", 1}}
	after := []named{{"x", 10}, {"x", 11}}

	var got int
	MatchByKey(before, after, func(n named) string { return n.name }, Visitor[named]{
		Matched: func(o, n named) { got = n.value },
		Added:   func(n named) { t.Errorf("unexpected addition %v", n) },
	})

	if got != 10 {
		t.Errorf("matched value = %d, want 10", got)
	}
}

func TestMatchByKeySymmetry(t *testing.T) {
	a := []string{"keep", "drop"}
	b := []string{"keep", "fresh"}

	var forward, backward []string
	MatchByKey(a, b, Identity, Visitor[string]{
		Removed: func(s string) { forward = append(forward, "-"+s) },
		Added:   func(s string) { forward = append(forward, "+"+s) },
	})
	MatchByKey(b, a, Identity, Visitor[string]{
		Removed: func(s string) { backward = append(backward, "+"+s) },
		Added:   func(s string) { backward = append(backward, "-"+s) },
	})

	if !reflect.DeepEqual(forward, []string{"-drop", "+fresh"}) {
		t.Errorf("forward = %v", forward)
	}
	if !reflect.DeepEqual(backward, []string{"+fresh", "-drop"}) {
		t.Errorf("backward = %v", backward)
	}
}

func TestSortedKeys(t *testing.T) {
	got := SortedKeys(map[string]int{"b": 1, "a": 2, "c": 3})
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("SortedKeys = %v", got)
	}
}
