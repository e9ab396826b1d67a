// Package report renders the weekly fleet status report and schedules its
// generation. The report is plain text meant to be pasted into an email;
// this package never sends anything.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/filter-tracker/backend/internal/storage/models"
)

// Subject returns the report's subject line for the given day.
func Subject(now time.Time) string {
	return fmt.Sprintf("Weekly Filter Status Report - %s", now.Format(models.DayLayout))
}

// Generate renders the weekly status report over the given fleet state.
// Filters must arrive with their bookings attached. The clock is injected
// so the output is a pure function of its inputs.
func Generate(filters []models.Filter, now time.Time) string {
	today := now.Format(models.DayLayout)
	weekOut := now.AddDate(0, 0, 7).Format(models.DayLayout)

	var b strings.Builder
	rule := strings.Repeat("=", 60)
	subRule := strings.Repeat("-", 30)

	fmt.Fprintf(&b, "Subject: %s\n\n", Subject(now))
	b.WriteString("WEEKLY FILTER STATUS REPORT\n")
	fmt.Fprintf(&b, "Generated on: %s\n", now.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Report Period: %s - %s\n", today, weekOut)
	fmt.Fprintf(&b, "%s\n\n", rule)

	var servicesDue []models.Filter
	available := 0
	scheduled := 0

	for i, f := range filters {
		fmt.Fprintf(&b, "FILTER %d: %s\n", f.ID, f.Name)
		fmt.Fprintf(&b, "%s\n", subRule)
		fmt.Fprintf(&b, "Location: %s\n", f.Location)

		fmt.Fprintf(&b, "Filtration Capability: %s\n", f.CapabilityLabel())
		fmt.Fprintf(&b, "  - UV Capability: %s\n", yesNo(f.UVCapability))
		fmt.Fprintf(&b, "  - 10 Micron Capability: %s\n", yesNo(f.TenMicronCapability))

		status := f.ServiceStatusAt(today)
		if f.LastServiceDate != nil {
			b.WriteString("Service Information:\n")
			fmt.Fprintf(&b, "  - Last Service: %s\n", *f.LastServiceDate)
			fmt.Fprintf(&b, "  - Service Frequency: Every %d days\n", f.ServiceFrequencyDays)
			if status.NextServiceDate != nil {
				fmt.Fprintf(&b, "  - Next Service Due: %s", *status.NextServiceDate)
				if status.Due {
					b.WriteString(" (OVERDUE)")
				}
				b.WriteString("\n")
			}
		} else {
			b.WriteString("Service Information: No service history recorded\n")
		}
		if status.Due {
			servicesDue = append(servicesDue, f)
		}

		week := bookingsInRange(f.Bookings, today, weekOut)
		if len(week) > 0 {
			scheduled++
			b.WriteString("Bookings for Next 7 Days:\n")
			for _, bk := range week {
				line := fmt.Sprintf("  - %s: %s", bk.Date, bk.Location)
				if bk.IsService() {
					line += " (Service)"
				}
				b.WriteString(line + "\n")
			}
		} else {
			available++
			b.WriteString("Bookings for Next 7 Days: None scheduled\n")
		}

		if notes := strings.TrimSpace(f.Notes); notes != "" {
			fmt.Fprintf(&b, "Notes: %s\n", notes)
		}

		if len(week) == 0 {
			b.WriteString("Status: Available\n")
		} else {
			b.WriteString("Status: Scheduled\n")
		}

		if i < len(filters)-1 {
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "\n%s\nSUMMARY\n%s\n", rule, subRule)
	fmt.Fprintf(&b, "Total Filters: %d\n", len(filters))
	fmt.Fprintf(&b, "Available for Next Week: %d\n", available)
	fmt.Fprintf(&b, "Scheduled for Next Week: %d\n", scheduled)
	fmt.Fprintf(&b, "Services Due: %d\n", len(servicesDue))

	if len(servicesDue) > 0 {
		b.WriteString("\nFilters Requiring Service:\n")
		for _, f := range servicesDue {
			fmt.Fprintf(&b, "  - %s (%s)\n", f.Name, f.Location)
		}
	}

	fmt.Fprintf(&b, "\n%s\n", rule)
	b.WriteString("This report was automatically generated by the Filter Status Tracker system.\n")
	b.WriteString("For updates or changes, please access the system directly.\n")

	return b.String()
}

// bookingsInRange returns the bookings dated within [start, end] inclusive.
// Bookings arrive date-ordered from storage, so the result stays ordered.
func bookingsInRange(bookings []models.Booking, start, end string) []models.Booking {
	var out []models.Booking
	for _, b := range bookings {
		if b.Date >= start && b.Date <= end {
			out = append(out, b)
		}
	}
	return out
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
