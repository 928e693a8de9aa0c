package effects

import "sort"

// SortByTier returns the active identifiers stable-sorted ascending by their
// table tier. Ties preserve the operator's toggle order, and unknown
// identifiers sort at DefaultTier. The sort is total: any permutation of the
// same identifier set yields the same pipeline order per tier band, so
// toggle order never changes the composited output.
//
// Parameters:
//   - ids: the active effect identifiers in toggle order
//   - table: the descriptor table supplying tiers
//
// Returns:
//   - []string: a new slice with the identifiers in pipeline order
func SortByTier(ids []string, table *Table) []string {
	ordered := make([]string, len(ids))
	copy(ordered, ids)
	sort.SliceStable(ordered, func(i, j int) bool {
		return table.TierFor(ordered[i]) < table.TierFor(ordered[j])
	})
	return ordered
}
