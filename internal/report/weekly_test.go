package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filter-tracker/backend/internal/storage/models"
)

func reportClock(t *testing.T) time.Time {
	t.Helper()
	now, err := time.Parse("2006-01-02 15:04", "2026-03-02 07:00")
	require.NoError(t, err)
	return now
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "Weekly Filter Status Report - 2026-03-02", Subject(reportClock(t)))
}

func TestGenerateIdleFleet(t *testing.T) {
	fleet := []models.Filter{
		{ID: 1, Name: "Filter 1", Location: "Storage", UVCapability: true, TenMicronCapability: true, ServiceFrequencyDays: 90},
		{ID: 2, Name: "Filter 2", Location: "Storage", ServiceFrequencyDays: 90},
	}

	text := Generate(fleet, reportClock(t))

	assert.Contains(t, text, "WEEKLY FILTER STATUS REPORT")
	assert.Contains(t, text, "Report Period: 2026-03-02 - 2026-03-09")
	assert.Contains(t, text, "FILTER 1: Filter 1")
	assert.Contains(t, text, "Filtration Capability: 10 Micron + UV")
	assert.Contains(t, text, "Filtration Capability: 25 Micron")
	assert.Contains(t, text, "Service Information: No service history recorded")
	assert.Contains(t, text, "Total Filters: 2")
	assert.Contains(t, text, "Available for Next Week: 2")
	assert.Contains(t, text, "Scheduled for Next Week: 0")
	assert.Contains(t, text, "Services Due: 0")
	assert.Equal(t, 2, strings.Count(text, "Status: Available"))
}

func TestGenerateListsUpcomingBookings(t *testing.T) {
	last := "2026-01-15"
	fleet := []models.Filter{
		{
			ID: 1, Name: "Filter 1", Location: "Site 12",
			ServiceFrequencyDays: 90, LastServiceDate: &last,
			Bookings: []models.Booking{
				{Date: "2026-02-20", Location: "Old Job"},
				{Date: "2026-03-04", Location: "Site 12"},
				{Date: "2026-03-06", Location: "Depot", Type: models.BookingTypeService},
				{Date: "2026-03-15", Location: "Future Job"},
			},
		},
	}

	text := Generate(fleet, reportClock(t))

	assert.Contains(t, text, "Bookings for Next 7 Days:")
	assert.Contains(t, text, "- 2026-03-04: Site 12")
	assert.Contains(t, text, "- 2026-03-06: Depot (Service)")
	assert.NotContains(t, text, "Old Job")
	assert.NotContains(t, text, "Future Job")
	assert.Contains(t, text, "Status: Scheduled")
	assert.Contains(t, text, "Last Service: 2026-01-15")
	assert.Contains(t, text, "Next Service Due: 2026-04-15")
	assert.NotContains(t, text, "OVERDUE")
}

func TestGenerateFlagsOverdueService(t *testing.T) {
	last := "2025-11-01"
	fleet := []models.Filter{
		{
			ID: 3, Name: "Filter 3", Location: "Storage",
			ServiceFrequencyDays: 90, LastServiceDate: &last,
		},
	}

	text := Generate(fleet, reportClock(t))

	assert.Contains(t, text, "Next Service Due: 2026-01-30 (OVERDUE)")
	assert.Contains(t, text, "Services Due: 1")
	assert.Contains(t, text, "Filters Requiring Service:")
	assert.Contains(t, text, "- Filter 3 (Storage)")
}

func TestGenerateIncludesNotes(t *testing.T) {
	fleet := []models.Filter{
		{ID: 2, Name: "Filter 2", Location: "Storage", Notes: "Awaiting replacement gasket"},
	}

	text := Generate(fleet, reportClock(t))
	assert.Contains(t, text, "Notes: Awaiting replacement gasket")
}

func TestGenerateIsDeterministic(t *testing.T) {
	fleet := []models.Filter{
		{ID: 1, Name: "Filter 1", Location: "Storage"},
	}
	now := reportClock(t)

	assert.Equal(t, Generate(fleet, now), Generate(fleet, now))
}
