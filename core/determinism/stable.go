// Package determinism provides ordering helpers so that every table produced by the
// pipeline is emitted in the same order for the same inputs.
package determinism

import (
	"cmp"
	"slices"
)

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// RangeMapSorted iterates over a map in sorted key order
func RangeMapSorted[K cmp.Ordered, V any](m map[K]V, fn func(K, V) bool) {
	for _, k := range SortedKeys(m) {
		if !fn(k, m[k]) {
			break
		}
	}
}

// Unique returns the distinct values of key(row) in ascending order.
func Unique[T any, K cmp.Ordered](rows []T, key func(T) K) []K {
	seen := make(map[K]struct{})
	for _, r := range rows {
		seen[key(r)] = struct{}{}
	}
	return SortedKeys(seen)
}

// SortRows sorts rows stably by the comparison chain.
func SortRows[T any](rows []T, less ...func(a, b T) int) {
	slices.SortStableFunc(rows, func(a, b T) int {
		for _, c := range less {
			if r := c(a, b); r != 0 {
				return r
			}
		}
		return 0
	})
}

// By builds a comparison over an ordered field.
func By[T any, K cmp.Ordered](field func(T) K) func(a, b T) int {
	return func(a, b T) int {
		return cmp.Compare(field(a), field(b))
	}
}
