package planner

import "sort"

// sortRecords returns a reordered copy of the records. The input slice is never
// mutated. Ties on length keep their relative input order.
func sortRecords(items []ItemRecord, order SortOrder) []ItemRecord {
	out := make([]ItemRecord, len(items))
	copy(out, items)

	switch order {
	case ShortToLong:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Length < out[j].Length
		})
	case LongToShort:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Length > out[j].Length
		})
	}

	return out
}
