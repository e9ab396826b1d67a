package availability

import (
	"github.com/filter-tracker/backend/internal/storage/models"
)

// Result is the availability of one accessory over a requested date range.
type Result struct {
	AccessoryID       int  `json:"accessory_id"`
	AvailableQuantity int  `json:"available_quantity"`
	AllocatedCount    int  `json:"allocated_count"`
	OutOfService      bool `json:"out_of_service_during_period"`
	CriticalShortfall bool `json:"critical_shortfall"`
}

// Compute returns the accessory's availability for the filter over
// [start, end] inclusive.
//
// The available quantity is the minimum per-day capacity across the range,
// where capacity(d) = total - removed(d) - allocated(d). A multi-day
// booking consumes its allocation quantity on every day it spans, so the
// range is only bookable up to the quantity that holds on the tightest day.
// Allocations from bookings on every filter sharing the pool count, and
// the result is clamped at zero.
//
// OutOfService is set when any day in the range has removed capacity, even
// if the available quantity stays positive: partial out-of-service is
// surfaced as a warning, not silently absorbed.
//
// An accessory outside the filter's pool, a zero total quantity, or an
// empty range (end before start) all yield zero availability.
func Compute(filterID int, acc *models.Accessory, bookings []models.Booking, start, end string) (Result, error) {
	res := Result{AccessoryID: acc.ID}

	if acc.Pool != PoolFor(filterID) {
		return res, nil
	}

	days, err := EnumerateDays(start, end)
	if err != nil {
		return res, err
	}
	if len(days) == 0 || acc.TotalQuantity <= 0 {
		return res, nil
	}

	minCapacity := acc.TotalQuantity
	for i, day := range days {
		removed := RemovedQuantity(acc, day)
		allocated := AllocatedQuantity(acc.ID, day, bookings)

		if removed > 0 {
			res.OutOfService = true
		}
		if allocated > res.AllocatedCount {
			res.AllocatedCount = allocated
		}

		capacity := acc.TotalQuantity - removed - allocated
		if i == 0 || capacity < minCapacity {
			minCapacity = capacity
		}
	}

	if minCapacity > 0 {
		res.AvailableQuantity = minCapacity
	}

	// Read-time advisory only: critical equipment may be sourced
	// externally, so a shortfall never blocks a booking.
	if acc.Critical && acc.RequiredPerBooking > 0 && res.AvailableQuantity < acc.RequiredPerBooking {
		res.CriticalShortfall = true
	}

	return res, nil
}

// ComputeAll returns availability for every accessory visible to the
// filter under the pool assignment rule, preserving input order.
func ComputeAll(filterID int, accessories []models.Accessory, bookings []models.Booking, start, end string) ([]Result, error) {
	visible := VisibleTo(filterID, accessories)
	results := make([]Result, 0, len(visible))
	for i := range visible {
		r, err := Compute(filterID, &visible[i], bookings, start, end)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}
