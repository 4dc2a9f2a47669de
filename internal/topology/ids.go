package topology

import "sort"

// #region ids
// NodeId, StateId, OpId, CapId and ReqId are opaque identifiers, unique
// within their respective scope. They are distinct named types (rather
// than bare strings) so a caller can't accidentally pass a StateId where
// an OpId is expected.
type NodeId string
type StateId string
type OpId string
type CapId string
type ReqId string

// #endregion ids

// #region sort-helpers
// sortedStringKeys returns the keys of m sorted lexicographically. Every
// map iteration in this package whose order affects move enumeration goes
// through a helper like this one rather than a raw `range`, so that move
// enumeration order (and therefore witness selection in Planner) is
// reproducible across runs.
func sortedStringKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// #endregion sort-helpers
