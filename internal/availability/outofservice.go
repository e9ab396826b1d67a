package availability

import (
	"github.com/filter-tracker/backend/internal/storage/models"
)

// RemovedQuantity returns how many units of the accessory are out of
// service on the given day: the sum of every window whose inclusive
// [start, end] span contains the day. Overlapping windows stack, so two
// windows each removing one unit remove two on their overlap.
func RemovedQuantity(acc *models.Accessory, day string) int {
	removed := 0
	for i := range acc.Windows {
		if acc.Windows[i].Contains(day) {
			removed += acc.Windows[i].Quantity
		}
	}
	return removed
}
