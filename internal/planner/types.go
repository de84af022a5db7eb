package planner

import "fmt"

// SortOrder controls the order in which item records are offered to the packer.
type SortOrder int

const (
	// Natural keeps the input order unchanged.
	Natural SortOrder = iota
	// ShortToLong packs the shortest items first.
	ShortToLong
	// LongToShort packs the longest items first.
	LongToShort
)

const (
	naturalToken     = "NATURAL"
	shortToLongToken = "SHORT_TO_LONG"
	longToShortToken = "LONG_TO_SHORT"
)

// ParseSortOrder converts one of the wire tokens NATURAL, SHORT_TO_LONG or
// LONG_TO_SHORT into a SortOrder. Tokens are matched case-sensitively.
func ParseSortOrder(s string) (SortOrder, error) {
	switch s {
	case naturalToken:
		return Natural, nil
	case shortToLongToken:
		return ShortToLong, nil
	case longToShortToken:
		return LongToShort, nil
	default:
		return Natural, fmt.Errorf("%w: got %q", ErrUnknownSortOrder, s)
	}
}

// String returns the wire token for the sort order.
func (o SortOrder) String() string {
	switch o {
	case ShortToLong:
		return shortToLongToken
	case LongToShort:
		return longToShortToken
	default:
		return naturalToken
	}
}

// ItemRecord describes a batch of Quantity identical physical items.
// Records are values and are never mutated by the planner.
type ItemRecord struct {
	ID         int
	Length     int
	Quantity   int
	UnitWeight float64
}

// PackLimits holds the per-pack constraints, constant for a whole planning run.
type PackLimits struct {
	MaxItems  int
	MaxWeight float64
}

// PackEntry is a possibly partial slice of one item record's quantity that was
// assigned to a single pack.
type PackEntry struct {
	ItemID     int
	Length     int
	Quantity   int
	UnitWeight float64
}

// Pack is a finalized group of item quantities. TotalWeight is the sum of
// Quantity*UnitWeight over the entries; TotalLength is the longest entry, since
// a pack is as long as its longest item.
type Pack struct {
	Number      int
	Entries     []PackEntry
	TotalWeight float64
	TotalLength int
}
