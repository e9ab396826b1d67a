package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/filter-tracker/backend/internal/storage/models"
)

// BookingRepository provides data access for per-day bookings and their
// accessory allocations.
type BookingRepository struct {
	BaseRepository
}

// NewBookingRepository creates a new booking repository.
func NewBookingRepository(db *DB) *BookingRepository {
	return &BookingRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

const bookingColumns = "id, filter_id, date, location, type, created_at"

// ListAll retrieves every booking on every filter, ordered by date.
// Availability math aggregates across the whole fleet because accessory
// pools are shared between filters.
func (r *BookingRepository) ListAll(ctx context.Context) ([]models.Booking, error) {
	return r.list(ctx, r.DB(), "", nil)
}

// ListByFilter retrieves a filter's bookings ordered by date.
func (r *BookingRepository) ListByFilter(ctx context.Context, filterID int) ([]models.Booking, error) {
	return r.list(ctx, r.DB(), "WHERE filter_id = ?", []any{filterID})
}

// ListAllTx is ListAll executed against the given transaction, so commit
// validation sees a consistent snapshot.
func (r *BookingRepository) ListAllTx(ctx context.Context, q Queryable) ([]models.Booking, error) {
	return r.list(ctx, q, "", nil)
}

func (r *BookingRepository) list(ctx context.Context, q Queryable, where string, args []any) ([]models.Booking, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings "+where+" ORDER BY date, filter_id", args...)
	if err != nil {
		return nil, fmt.Errorf("querying bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	index := make(map[string]int)
	for rows.Next() {
		var b models.Booking
		if err := rows.Scan(&b.ID, &b.FilterID, &b.Date, &b.Location, &b.Type, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning booking: %w", err)
		}
		b.Allocations = []models.AccessoryAllocation{}
		index[b.ID] = len(bookings)
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return bookings, nil
	}

	allocRows, err := q.QueryContext(ctx, `
		SELECT booking_id, accessory_id, accessory_name, unit, quantity
		FROM booking_allocations
	`)
	if err != nil {
		return nil, fmt.Errorf("querying booking allocations: %w", err)
	}
	defer allocRows.Close()

	for allocRows.Next() {
		var bookingID string
		var a models.AccessoryAllocation
		if err := allocRows.Scan(&bookingID, &a.AccessoryID, &a.AccessoryName, &a.Unit, &a.Quantity); err != nil {
			return nil, fmt.Errorf("scanning booking allocation: %w", err)
		}
		if i, ok := index[bookingID]; ok {
			bookings[i].Allocations = append(bookings[i].Allocations, a)
		}
	}

	return bookings, allocRows.Err()
}

// CreateTx inserts a booking and its allocations within a transaction.
// The caller owns the transaction so a rejected batch persists nothing.
func (r *BookingRepository) CreateTx(ctx context.Context, tx *sql.Tx, b *models.Booking) error {
	b.ID = GenerateID()
	b.CreatedAt = r.Now()

	_, err := tx.ExecContext(ctx, `
		INSERT INTO bookings (id, filter_id, date, location, type, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, b.ID, b.FilterID, b.Date, b.Location, b.Type, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting booking: %w", err)
	}

	for _, a := range b.Allocations {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO booking_allocations (booking_id, accessory_id, accessory_name, unit, quantity)
			VALUES (?, ?, ?, ?, ?)
		`, b.ID, a.AccessoryID, a.AccessoryName, a.Unit, a.Quantity)
		if err != nil {
			return fmt.Errorf("inserting booking allocation: %w", err)
		}
	}

	return nil
}

// DeleteByDate removes a filter's booking on a single day.
// Returns the number of bookings removed.
func (r *BookingRepository) DeleteByDate(ctx context.Context, filterID int, date string) (int, error) {
	result, err := r.DB().ExecContext(ctx,
		"DELETE FROM bookings WHERE filter_id = ? AND date = ?", filterID, date)
	if err != nil {
		return 0, fmt.Errorf("deleting booking: %w", err)
	}

	n, _ := result.RowsAffected()
	return int(n), nil
}

// DeleteByRange removes a filter's bookings across a date-contiguous group,
// bounds inclusive. Returns the number of bookings removed.
func (r *BookingRepository) DeleteByRange(ctx context.Context, filterID int, start, end string) (int, error) {
	result, err := r.DB().ExecContext(ctx,
		"DELETE FROM bookings WHERE filter_id = ? AND date >= ? AND date <= ?", filterID, start, end)
	if err != nil {
		return 0, fmt.Errorf("deleting bookings in range: %w", err)
	}

	n, _ := result.RowsAffected()
	return int(n), nil
}
