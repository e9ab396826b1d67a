// Package booking orchestrates booking commits and removals: validation,
// capacity re-checks, persistence, and the last-service watermark.
package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/filter-tracker/backend/internal/availability"
	"github.com/filter-tracker/backend/internal/storage"
	"github.com/filter-tracker/backend/internal/storage/models"
)

// ErrFilterNotFound is returned when the target filter does not exist.
var ErrFilterNotFound = errors.New("filter not found")

// ValidationError reports a malformed submission. Nothing is persisted.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// CapacityError reports that the submission exceeded accessory capacity on
// at least one day. The whole batch is rejected and nothing is persisted.
type CapacityError struct {
	Violations []availability.Violation
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("accessory capacity exceeded on %d day/accessory pairs", len(e.Violations))
}

// PendingAllocation requests a per-day quantity of an accessory for every
// day of a pending booking.
type PendingAllocation struct {
	AccessoryID int `json:"accessory_id"`
	Quantity    int `json:"quantity"`
}

// PendingBooking is one entry of a commit submission: a set of selected
// days, a job location, a type tag, and the accessory quantities consumed
// on each of those days.
type PendingBooking struct {
	Dates       []string            `json:"dates"`
	Location    string              `json:"location"`
	Type        string              `json:"type"`
	Allocations []PendingAllocation `json:"allocations"`
}

// CommitResult summarizes a successful commit.
type CommitResult struct {
	FilterID        int     `json:"filter_id"`
	BookingsCreated int     `json:"bookings_created"`
	LastServiceDate *string `json:"last_service_date,omitempty"`
}

// Service coordinates booking writes against the repositories.
type Service struct {
	db          *storage.DB
	filters     *storage.FilterRepository
	accessories *storage.AccessoryRepository
	bookings    *storage.BookingRepository
}

// NewService creates a booking service.
func NewService(db *storage.DB, filters *storage.FilterRepository, accessories *storage.AccessoryRepository, bookings *storage.BookingRepository) *Service {
	return &Service{
		db:          db,
		filters:     filters,
		accessories: accessories,
		bookings:    bookings,
	}
}

// Commit validates and persists a batch of pending bookings for a filter.
//
// Capacity is re-checked against current persisted state inside the write
// transaction, so two clients that both read stale availability cannot both
// commit: the later submission's excess is rejected with an itemized list
// of violations and none of its bookings are written. There is no locking,
// retry, or queuing beyond that.
//
// Committing a service booking advances the filter's last-service date to
// the latest committed service day when that is later than the recorded
// one; an older service day never moves the watermark backward.
func (s *Service) Commit(ctx context.Context, filterID int, pending []PendingBooking) (*CommitResult, error) {
	filter, err := s.filters.GetByID(ctx, filterID)
	if err != nil {
		return nil, err
	}
	if filter == nil {
		return nil, ErrFilterNotFound
	}

	if len(pending) == 0 {
		return nil, &ValidationError{Message: "no pending bookings submitted"}
	}

	accessories, err := s.accessories.List(ctx)
	if err != nil {
		return nil, err
	}

	expanded, err := s.expand(filterID, pending, accessories)
	if err != nil {
		return nil, err
	}

	result := &CommitResult{FilterID: filterID}

	err = s.db.Transaction(func(tx *sql.Tx) error {
		existing, err := s.bookings.ListAllTx(ctx, tx)
		if err != nil {
			return err
		}

		if violations := availability.ValidateCommit(expanded, accessories, existing); len(violations) > 0 {
			return &CapacityError{Violations: violations}
		}

		var latestService string
		for i := range expanded {
			if err := s.bookings.CreateTx(ctx, tx, &expanded[i]); err != nil {
				return err
			}
			if expanded[i].IsService() && expanded[i].Date > latestService {
				latestService = expanded[i].Date
			}
		}

		if latestService != "" {
			if err := s.filters.AdvanceLastServiceDate(ctx, tx, filterID, latestService); err != nil {
				return err
			}
		}

		result.BookingsCreated = len(expanded)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if updated, err := s.filters.GetByID(ctx, filterID); err == nil && updated != nil {
		result.LastServiceDate = updated.LastServiceDate
	}

	return result, nil
}

// expand turns the submission into one per-day Booking row per selected
// date, resolving accessory name/unit snapshots from the live accessory
// set. A multi-day selection consumes its allocation quantities on each
// day independently.
func (s *Service) expand(filterID int, pending []PendingBooking, accessories []models.Accessory) ([]models.Booking, error) {
	byID := make(map[int]*models.Accessory, len(accessories))
	for i := range accessories {
		byID[accessories[i].ID] = &accessories[i]
	}
	pool := availability.PoolFor(filterID)

	var expanded []models.Booking
	for _, p := range pending {
		if len(p.Dates) == 0 {
			return nil, &ValidationError{Message: "booking has no dates selected"}
		}
		if p.Type != models.BookingTypeOrdinary && p.Type != models.BookingTypeService {
			return nil, &ValidationError{Message: fmt.Sprintf("unknown booking type %q", p.Type)}
		}

		location := p.Location
		if location == "" {
			if p.Type != models.BookingTypeService {
				return nil, &ValidationError{Message: "job location is required"}
			}
			location = "Service"
		}

		var allocations []models.AccessoryAllocation
		for _, a := range p.Allocations {
			acc, ok := byID[a.AccessoryID]
			if !ok {
				return nil, &ValidationError{Message: fmt.Sprintf("accessory %d does not exist", a.AccessoryID)}
			}
			if acc.Pool != pool {
				return nil, &ValidationError{Message: fmt.Sprintf("accessory %q is not available to filter %d", acc.Name, filterID)}
			}
			if a.Quantity <= 0 {
				return nil, &ValidationError{Message: fmt.Sprintf("allocation quantity for %q must be positive", acc.Name)}
			}
			allocations = append(allocations, models.AccessoryAllocation{
				AccessoryID:   acc.ID,
				AccessoryName: acc.Name,
				Unit:          acc.Unit,
				Quantity:      a.Quantity,
			})
		}

		for _, date := range p.Dates {
			if !availability.ValidDay(date) {
				return nil, &ValidationError{Message: fmt.Sprintf("malformed date %q", date)}
			}
			expanded = append(expanded, models.Booking{
				FilterID:    filterID,
				Date:        date,
				Location:    location,
				Type:        p.Type,
				Allocations: allocations,
			})
		}
	}

	return expanded, nil
}

// Remove deletes a filter's booking on a single day. Returns the number of
// bookings removed.
func (s *Service) Remove(ctx context.Context, filterID int, date string) (int, error) {
	if !availability.ValidDay(date) {
		return 0, &ValidationError{Message: fmt.Sprintf("malformed date %q", date)}
	}
	return s.bookings.DeleteByDate(ctx, filterID, date)
}

// RemoveRange deletes a date-contiguous group of a filter's bookings,
// bounds inclusive. Returns the number of bookings removed.
func (s *Service) RemoveRange(ctx context.Context, filterID int, start, end string) (int, error) {
	if !availability.ValidDay(start) || !availability.ValidDay(end) {
		return 0, &ValidationError{Message: "malformed date range"}
	}
	if end < start {
		return 0, &ValidationError{Message: "end date is before start date"}
	}
	return s.bookings.DeleteByRange(ctx, filterID, start, end)
}
