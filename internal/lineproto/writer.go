package lineproto

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/eugenenazirov/pack-planner/internal/planner"
)

// WriteBatch renders the packs of one planned batch: per pack a
// "Pack Number: N" header, one id,length,quantity,unitWeight line per entry,
// and a "Pack Length: L, Pack Weight: W" summary, with a blank line between
// packs.
func WriteBatch(w io.Writer, packs []planner.Pack) error {
	for i, pack := range packs {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := writePack(w, pack); err != nil {
			return err
		}
	}
	return nil
}

func writePack(w io.Writer, pack planner.Pack) error {
	if _, err := fmt.Fprintf(w, "Pack Number: %d\n", pack.Number); err != nil {
		return err
	}
	for _, entry := range pack.Entries {
		_, err := fmt.Fprintf(w, "%d,%d,%d,%s\n",
			entry.ItemID, entry.Length, entry.Quantity, formatUnitWeight(entry.UnitWeight))
		if err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Pack Length: %d, Pack Weight: %s\n",
		pack.TotalLength, formatPackWeight(pack.TotalWeight))
	return err
}

// formatUnitWeight renders a unit weight exactly as it was parsed, in the
// shortest form that round-trips.
func formatUnitWeight(weight float64) string {
	return strconv.FormatFloat(weight, 'f', -1, 64)
}

// formatPackWeight renders a pack total rounded to the displayed two-decimal
// precision, with trailing zeros trimmed. Rounding keeps accumulated IEEE
// error out of the summary line (30*9.653+10*11.21 prints as 401.69, not
// 401.69000000000005).
func formatPackWeight(weight float64) string {
	rounded := math.Round(weight*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
