package availability

import (
	"github.com/filter-tracker/backend/internal/storage/models"
)

// AllocatedQuantity sums the quantity of the accessory committed on the
// given day across every booking passed in, regardless of which filter
// the booking belongs to. The accessory pool is shared, so allocations by
// any filter in the pool consume the same units. Returns 0 when no booking
// references the accessory on that day.
func AllocatedQuantity(accessoryID int, day string, bookings []models.Booking) int {
	total := 0
	for i := range bookings {
		if bookings[i].Date != day {
			continue
		}
		for _, alloc := range bookings[i].Allocations {
			if alloc.AccessoryID == accessoryID {
				total += alloc.Quantity
			}
		}
	}
	return total
}
