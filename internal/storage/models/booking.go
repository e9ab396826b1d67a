package models

import (
	"time"
)

// Booking type constants.
const (
	BookingTypeOrdinary = "booking"
	BookingTypeService  = "service"
)

// Booking represents a filter committed to a job location on a single
// calendar day. A multi-day job is stored as one Booking row per day, so
// allocation quantities are consumed on each day independently.
type Booking struct {
	ID          string                `json:"id"`
	FilterID    int                   `json:"filter_id"`
	Date        string                `json:"date"`
	Location    string                `json:"location"`
	Type        string                `json:"type"`
	Allocations []AccessoryAllocation `json:"allocations"`
	CreatedAt   time.Time             `json:"created_at"`
}

// IsService reports whether the booking is a service visit.
func (b *Booking) IsService() bool {
	return b.Type == BookingTypeService
}

// AccessoryAllocation commits a quantity of an accessory to a booking for
// its day. AccessoryName and Unit are snapshots taken at booking time so
// historical bookings still render correctly if the accessory is later
// renamed or deleted.
type AccessoryAllocation struct {
	AccessoryID   int    `json:"accessory_id"`
	AccessoryName string `json:"accessory_name"`
	Unit          string `json:"unit,omitempty"`
	Quantity      int    `json:"quantity"`
}
