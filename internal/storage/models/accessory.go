package models

import (
	"time"
)

// PoolTag identifies which shared accessory pool an accessory belongs to.
// An accessory belongs to exactly one pool and never crosses pools.
type PoolTag string

const (
	PoolA PoolTag = "pool-a"
	PoolB PoolTag = "pool-b"
)

// Valid reports whether the tag is one of the two fixed pools.
func (p PoolTag) Valid() bool {
	return p == PoolA || p == PoolB
}

// Accessory represents a shared piece of equipment available for booking
// allocations. TotalQuantity is the ceiling of units owned; it is never
// reduced by allocation, only by out-of-service windows on a per-day basis.
type Accessory struct {
	ID                 int                  `json:"id"`
	Name               string               `json:"name"`
	Pool               PoolTag              `json:"pool"`
	TotalQuantity      int                  `json:"total_quantity"`
	Unit               string               `json:"unit,omitempty"`
	Notes              string               `json:"notes,omitempty"`
	Critical           bool                 `json:"critical"`
	RequiredPerBooking int                  `json:"required_per_booking"`
	Windows            []OutOfServiceWindow `json:"out_of_service_windows"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

// OutOfServiceWindow removes Quantity units of an accessory from the pool
// for every day in [StartDate, EndDate], bounds inclusive. Overlapping
// windows on the same accessory stack additively.
type OutOfServiceWindow struct {
	ID          string    `json:"id"`
	AccessoryID int       `json:"accessory_id"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	Quantity    int       `json:"quantity"`
	Reason      string    `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Contains reports whether the given day falls inside the window.
// YYYY-MM-DD strings compare correctly lexicographically.
func (w *OutOfServiceWindow) Contains(day string) bool {
	return w.StartDate <= day && day <= w.EndDate
}
