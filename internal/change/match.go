package change

import (
	"cmp"
	"slices"
)

// Visitor receives the outcome of MatchByKey. Nil callbacks are skipped.
type Visitor[T any] struct {
	Removed func(before T)
	Added   func(after T)
	Matched func(before, after T)

	// Equal, when set, suppresses Matched for pairs it reports as equal.
	Equal func(before, after T) bool
}

// MatchByKey pairs the elements of before and after by key. Elements of
// before are visited first in their order, as Matched or Removed; elements
// of after with no counterpart follow in their order as Added. When keys
// repeat, an element pairs with the first element of after carrying its key.
func MatchByKey[T any](before, after []T, key func(T) string, v Visitor[T]) {
	firstNew := make(map[string]int, len(after))
	for i, n := range after {
		k := key(n)
		if _, ok := firstNew[k]; !ok {
			firstNew[k] = i
		}
	}

	oldKeys := make(map[string]struct{}, len(before))
	for _, o := range before {
		k := key(o)
		oldKeys[k] = struct{}{}

		i, ok := firstNew[k]
		if !ok {
			if v.Removed != nil {
				v.Removed(o)
			}
			continue
		}
		n := after[i]
		if v.Equal != nil && v.Equal(o, n) {
			continue
		}
		if v.Matched != nil {
			v.Matched(o, n)
		}
	}

	if v.Added == nil {
		return
	}
	for _, n := range after {
		if _, ok := oldKeys[key(n)]; !ok {
			v.Added(n)
		}
	}
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Identity is the key function for collections of plain strings.
func Identity(s string) string { return s }
