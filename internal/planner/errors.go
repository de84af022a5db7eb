package planner

import "errors"

var (
	// ErrInvalidLimits is returned when the pack limits have a non-positive item
	// capacity or weight capacity.
	ErrInvalidLimits = errors.New("pack limits must allow at least one item and a positive weight")
	// ErrInvalidItemRecord is returned when an item record carries a negative
	// quantity or a negative unit weight.
	ErrInvalidItemRecord = errors.New("item record must have a non-negative quantity and unit weight")
	// ErrUnknownSortOrder is returned when a sort order token is not one of
	// NATURAL, SHORT_TO_LONG, LONG_TO_SHORT.
	ErrUnknownSortOrder = errors.New("sort order must be one of NATURAL, SHORT_TO_LONG, LONG_TO_SHORT")
	// ErrUnpackableItem is returned when a single unit of an item cannot fit into
	// an empty pack under the given limits.
	ErrUnpackableItem = errors.New("a single unit of the item does not fit into an empty pack")
)
