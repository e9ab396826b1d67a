package models

import (
	"time"
)

// DayLayout is the calendar-day format used throughout the system.
// Dates are timezone-naive YYYY-MM-DD strings; callers must not attach
// time-of-day semantics.
const DayLayout = "2006-01-02"

// Filter represents one of the four filtration units. Filters are seeded
// once at first startup and never deleted; all other fields are mutated in
// place via partial field updates (last write wins).
type Filter struct {
	ID                   int       `json:"id"`
	Name                 string    `json:"name"`
	Location             string    `json:"location"`
	UVCapability         bool      `json:"uv_capability"`
	TenMicronCapability  bool      `json:"ten_micron_capability"`
	Notes                string    `json:"notes"`
	ServiceFrequencyDays int       `json:"service_frequency_days"`
	LastServiceDate      *string   `json:"last_service_date,omitempty"`
	Bookings             []Booking `json:"bookings"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Capability labels derived from the two capability flags.
const (
	CapabilityTenMicronUV = "10 Micron + UV"
	CapabilityTenMicron   = "10 Micron"
	CapabilityBase        = "25 Micron"
)

// CapabilityLabel returns the derived three-level filtration capability.
func (f *Filter) CapabilityLabel() string {
	switch {
	case f.UVCapability && f.TenMicronCapability:
		return CapabilityTenMicronUV
	case f.TenMicronCapability:
		return CapabilityTenMicron
	default:
		return CapabilityBase
	}
}

// ServiceStatus describes where a filter stands in its service cadence.
type ServiceStatus struct {
	NextServiceDate *string `json:"next_service_date,omitempty"`
	Due             bool    `json:"due"`
}

// ServiceStatusAt computes the service status as of the given day.
// A filter with no service history or no cadence is never due.
func (f *Filter) ServiceStatusAt(today string) ServiceStatus {
	if f.LastServiceDate == nil || f.ServiceFrequencyDays <= 0 {
		return ServiceStatus{}
	}

	last, err := time.Parse(DayLayout, *f.LastServiceDate)
	if err != nil {
		return ServiceStatus{}
	}

	next := last.AddDate(0, 0, f.ServiceFrequencyDays).Format(DayLayout)
	return ServiceStatus{
		NextServiceDate: &next,
		Due:             today >= next,
	}
}
