package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/filter-tracker/backend/internal/storage/models"
)

// FilterRepository provides data access for the filter fleet.
type FilterRepository struct {
	BaseRepository
}

// NewFilterRepository creates a new filter repository.
func NewFilterRepository(db *DB) *FilterRepository {
	return &FilterRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// EnsureDefaults seeds the four fleet filters on first startup. Filters are
// created exactly once and never deleted; subsequent startups are a no-op.
func (r *FilterRepository) EnsureDefaults(ctx context.Context) error {
	var count int
	if err := r.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM filters").Scan(&count); err != nil {
		return fmt.Errorf("counting filters: %w", err)
	}
	if count > 0 {
		return nil
	}

	for id := 1; id <= 4; id++ {
		_, err := r.DB().ExecContext(ctx, `
			INSERT INTO filters (id, name, location, uv_capability, ten_micron_capability, notes, service_frequency_days)
			VALUES (?, ?, 'Storage', 1, 1, '', 90)
		`, id, fmt.Sprintf("Filter %d", id))
		if err != nil {
			return fmt.Errorf("seeding filter %d: %w", id, err)
		}
	}

	return nil
}

// List retrieves all filters ordered by id. Bookings are not attached;
// use BookingRepository to load them.
func (r *FilterRepository) List(ctx context.Context) ([]models.Filter, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, name, location, uv_capability, ten_micron_capability, notes,
		       service_frequency_days, last_service_date, created_at, updated_at
		FROM filters ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying filters: %w", err)
	}
	defer rows.Close()

	var filters []models.Filter
	for rows.Next() {
		var f models.Filter
		if err := rows.Scan(
			&f.ID, &f.Name, &f.Location, &f.UVCapability, &f.TenMicronCapability,
			&f.Notes, &f.ServiceFrequencyDays, &f.LastServiceDate, &f.CreatedAt, &f.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning filter: %w", err)
		}
		filters = append(filters, f)
	}

	return filters, rows.Err()
}

// GetByID retrieves a filter by its id. Returns nil when it does not exist.
func (r *FilterRepository) GetByID(ctx context.Context, id int) (*models.Filter, error) {
	f := &models.Filter{}

	err := r.DB().QueryRowContext(ctx, `
		SELECT id, name, location, uv_capability, ten_micron_capability, notes,
		       service_frequency_days, last_service_date, created_at, updated_at
		FROM filters WHERE id = ?
	`, id).Scan(
		&f.ID, &f.Name, &f.Location, &f.UVCapability, &f.TenMicronCapability,
		&f.Notes, &f.ServiceFrequencyDays, &f.LastServiceDate, &f.CreatedAt, &f.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying filter: %w", err)
	}

	return f, nil
}

// FilterUpdate carries the fields of a partial filter update. Nil fields
// are left untouched; set fields replace the stored value (last write wins,
// there is no version check).
type FilterUpdate struct {
	Name                 *string `json:"name,omitempty"`
	Location             *string `json:"location,omitempty"`
	UVCapability         *bool   `json:"uv_capability,omitempty"`
	TenMicronCapability  *bool   `json:"ten_micron_capability,omitempty"`
	Notes                *string `json:"notes,omitempty"`
	ServiceFrequencyDays *int    `json:"service_frequency_days,omitempty"`
	LastServiceDate      *string `json:"last_service_date,omitempty"`
}

// UpdateFields merges the set fields of the update into the filter row.
func (r *FilterRepository) UpdateFields(ctx context.Context, id int, u FilterUpdate) error {
	var sets []string
	var args []any

	add := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Location != nil {
		add("location", *u.Location)
	}
	if u.UVCapability != nil {
		add("uv_capability", *u.UVCapability)
	}
	if u.TenMicronCapability != nil {
		add("ten_micron_capability", *u.TenMicronCapability)
	}
	if u.Notes != nil {
		add("notes", *u.Notes)
	}
	if u.ServiceFrequencyDays != nil {
		add("service_frequency_days", *u.ServiceFrequencyDays)
	}
	if u.LastServiceDate != nil {
		add("last_service_date", *u.LastServiceDate)
	}

	if len(sets) == 0 {
		return nil
	}

	add("updated_at", r.Now())
	args = append(args, id)

	result, err := r.DB().ExecContext(ctx,
		"UPDATE filters SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("updating filter: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("filter not found: %d", id)
	}

	return nil
}

// AdvanceLastServiceDate moves the filter's last-service date forward to
// the given day if it is later than the recorded one. The watermark is
// monotonic: an older service booking never moves it backward.
func (r *FilterRepository) AdvanceLastServiceDate(ctx context.Context, q Queryable, filterID int, day string) error {
	_, err := q.ExecContext(ctx, `
		UPDATE filters SET last_service_date = ?, updated_at = ?
		WHERE id = ? AND (last_service_date IS NULL OR last_service_date < ?)
	`, day, r.Now(), filterID, day)

	if err != nil {
		return fmt.Errorf("advancing last service date: %w", err)
	}

	return nil
}
