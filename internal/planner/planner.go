// Package planner splits weighted, variable-length item records into packs
// bounded by a per-pack item count and total weight. The fill is a single
// greedy left-to-right pass over the (optionally re-sorted) records, splitting
// a record's quantity across consecutive packs whenever it does not fit whole.
package planner

import (
	"fmt"
	"math"
)

// Plan partitions the item records into packs under the given limits.
//
// Records are offered to the packer in the order selected by order. Each pack
// is filled as far as both limits allow before the next one is opened, so the
// same item id can appear in consecutive packs. Packs are numbered from 1 in
// creation order.
//
// Plan is a pure function: identical inputs always produce identical packs and
// the input slice is never mutated. It fails with ErrInvalidLimits before any
// packing work, and with ErrUnpackableItem when a single unit of some record
// cannot fit into an empty pack; no partial result is returned in either case.
func Plan(items []ItemRecord, order SortOrder, limits PackLimits) ([]Pack, error) {
	if limits.MaxItems <= 0 || limits.MaxWeight <= 0 {
		return nil, fmt.Errorf("%w: got %d items, %v weight", ErrInvalidLimits, limits.MaxItems, limits.MaxWeight)
	}
	for _, rec := range items {
		if rec.Quantity < 0 || rec.UnitWeight < 0 {
			return nil, fmt.Errorf("%w: item %d", ErrInvalidItemRecord, rec.ID)
		}
	}

	sorted := sortRecords(items, order)

	var packs []Pack
	current := newAccumulator(limits)
	number := 1

	for _, rec := range sorted {
		remaining := rec.Quantity
		for remaining > 0 {
			placeable := placeableUnits(current, rec, remaining)
			if placeable > 0 {
				current.add(rec, placeable)
				remaining -= placeable
				continue
			}
			if current.empty() {
				return nil, fmt.Errorf("%w: item %d with unit weight %v under limits of %d items and %v weight",
					ErrUnpackableItem, rec.ID, rec.UnitWeight, limits.MaxItems, limits.MaxWeight)
			}
			packs = append(packs, current.finalize(number))
			number++
			current = newAccumulator(limits)
		}
	}

	if !current.empty() {
		packs = append(packs, current.finalize(number))
	}

	return packs, nil
}

// placeableUnits computes how many units of the record fit into the current
// pack without breaking either limit. A zero unit weight leaves the weight
// dimension unbounded.
func placeableUnits(current *accumulator, rec ItemRecord, remaining int) int {
	placeable := remaining
	if byCount := current.remainingItems(); byCount < placeable {
		placeable = byCount
	}
	if rec.UnitWeight > 0 {
		// Compare as float64 before converting so huge quotients cannot
		// overflow the int conversion.
		if byWeight := math.Floor(current.remainingWeight() / rec.UnitWeight); byWeight < float64(placeable) {
			placeable = int(byWeight)
		}
	}
	if placeable < 0 {
		return 0
	}
	return placeable
}
