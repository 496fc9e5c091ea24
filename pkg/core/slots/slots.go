// Package slots derives the bookable slots of a shift from its time
// range and interval. The functions here are pure; slots are never
// stored anywhere, they are recomputed from the owning shift every
// time they are needed.
package slots

import (
	"time"

	"github.com/jkoskela/nakkikone/pkg/core/model"
)

// Generate returns the ordered slot sequence of a shift. A shift
// spanning [start, end) with interval I yields floor((end-start)/I)
// contiguous slots; a final partial slot is discarded. A span shorter
// than the interval yields an empty sequence, not an error.
//
// Shift validity (interval > 0, end > start) is enforced at shift
// creation time, not here.
func Generate(shift *model.Shift) []model.Slot {
	if shift.Interval <= 0 || !shift.End.After(shift.Start) {
		return nil
	}

	n := int(shift.End.Sub(shift.Start) / shift.Interval)
	generated := make([]model.Slot, 0, n)
	for i := 0; i < n; i++ {
		slotStart := shift.Start.Add(time.Duration(i) * shift.Interval)
		generated = append(generated, model.Slot{
			ShiftID: shift.ID,
			Start:   slotStart,
			End:     slotStart.Add(shift.Interval),
		})
	}

	return generated
}

// Aligned reports whether the given instant is one of the shift's
// generated slot starts.
func Aligned(shift *model.Shift, slotStart time.Time) bool {
	for _, slot := range Generate(shift) {
		if slot.Start.Equal(slotStart) {
			return true
		}
	}
	return false
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Back-to-back slots do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
