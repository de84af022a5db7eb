package planner

// accumulator tracks the pack currently being filled. One accumulator produces
// exactly one pack; it is discarded after finalize.
type accumulator struct {
	limits    PackLimits
	entries   []PackEntry
	itemCount int
	weight    float64
	maxLength int
}

func newAccumulator(limits PackLimits) *accumulator {
	return &accumulator{limits: limits}
}

func (a *accumulator) remainingItems() int {
	return a.limits.MaxItems - a.itemCount
}

func (a *accumulator) remainingWeight() float64 {
	return a.limits.MaxWeight - a.weight
}

func (a *accumulator) empty() bool {
	return len(a.entries) == 0
}

// add appends an entry for quantity units of the record. The caller guarantees
// the addition stays within the limits.
func (a *accumulator) add(rec ItemRecord, quantity int) {
	a.entries = append(a.entries, PackEntry{
		ItemID:     rec.ID,
		Length:     rec.Length,
		Quantity:   quantity,
		UnitWeight: rec.UnitWeight,
	})
	a.itemCount += quantity
	a.weight += float64(quantity) * rec.UnitWeight
	if rec.Length > a.maxLength {
		a.maxLength = rec.Length
	}
}

func (a *accumulator) finalize(number int) Pack {
	return Pack{
		Number:      number,
		Entries:     a.entries,
		TotalWeight: a.weight,
		TotalLength: a.maxLength,
	}
}
