package availability

import (
	"sort"

	"github.com/filter-tracker/backend/internal/storage/models"
)

// Violation records one (day, accessory) pair where a pending submission
// asks for more units than the pool can supply on that day.
type Violation struct {
	AccessoryID   int    `json:"accessory_id"`
	AccessoryName string `json:"accessory_name"`
	Date          string `json:"date"`
	Requested     int    `json:"requested_quantity"`
	Available     int    `json:"available_quantity"`
}

// ValidateCommit re-checks a set of pending per-day bookings against the
// current persisted state (which must exclude the pending set itself).
// For every (day, accessory) pair implied by the pending bookings it
// recomputes capacity(d) = total - removed(d) - allocated(d) and collects
// a violation when the requested quantity exceeds it. Requests within the
// pending set are summed per pair first, so two pending bookings for the
// same accessory on the same day are checked against the pool together.
//
// This is the final server-side guard against two clients committing
// against the same stale availability read. It only rejects; there is no
// locking, retry, or queuing, and the caller must persist nothing from a
// submission that produced violations.
func ValidateCommit(pending []models.Booking, accessories []models.Accessory, existing []models.Booking) []Violation {
	byID := make(map[int]*models.Accessory, len(accessories))
	for i := range accessories {
		byID[accessories[i].ID] = &accessories[i]
	}

	type pairKey struct {
		day         string
		accessoryID int
	}
	requested := make(map[pairKey]int)
	names := make(map[pairKey]string)
	for i := range pending {
		for _, alloc := range pending[i].Allocations {
			k := pairKey{day: pending[i].Date, accessoryID: alloc.AccessoryID}
			requested[k] += alloc.Quantity
			names[k] = alloc.AccessoryName
		}
	}

	var violations []Violation
	for k, want := range requested {
		acc, ok := byID[k.accessoryID]
		if !ok {
			// Existence is checked before validation; an unknown id
			// here means the accessory vanished mid-request.
			violations = append(violations, Violation{
				AccessoryID:   k.accessoryID,
				AccessoryName: names[k],
				Date:          k.day,
				Requested:     want,
			})
			continue
		}

		capacity := acc.TotalQuantity - RemovedQuantity(acc, k.day) - AllocatedQuantity(acc.ID, k.day, existing)
		if capacity < 0 {
			capacity = 0
		}
		if want > capacity {
			violations = append(violations, Violation{
				AccessoryID:   acc.ID,
				AccessoryName: acc.Name,
				Date:          k.day,
				Requested:     want,
				Available:     capacity,
			})
		}
	}

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].Date != violations[j].Date {
			return violations[i].Date < violations[j].Date
		}
		return violations[i].AccessoryID < violations[j].AccessoryID
	})

	return violations
}
