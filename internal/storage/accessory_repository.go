package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/filter-tracker/backend/internal/storage/models"
)

// AccessoryRepository provides data access for shared accessories and their
// out-of-service windows.
type AccessoryRepository struct {
	BaseRepository
}

// NewAccessoryRepository creates a new accessory repository.
func NewAccessoryRepository(db *DB) *AccessoryRepository {
	return &AccessoryRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create inserts a new accessory, assigning the next unused integer id.
// Ids are globally unique across both pools.
func (r *AccessoryRepository) Create(ctx context.Context, acc *models.Accessory) error {
	acc.CreatedAt = r.Now()
	acc.UpdatedAt = acc.CreatedAt

	return r.Transaction(func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			"SELECT COALESCE(MAX(id), 0) + 1 FROM accessories",
		).Scan(&acc.ID); err != nil {
			return fmt.Errorf("assigning accessory id: %w", err)
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO accessories (id, name, pool, total_quantity, unit, notes, critical, required_per_booking, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, acc.ID, acc.Name, acc.Pool, acc.TotalQuantity, acc.Unit, acc.Notes,
			acc.Critical, acc.RequiredPerBooking, acc.CreatedAt, acc.UpdatedAt)

		if err != nil {
			return fmt.Errorf("inserting accessory: %w", err)
		}
		return nil
	})
}

// GetByID retrieves an accessory with its out-of-service windows.
// Returns nil when it does not exist.
func (r *AccessoryRepository) GetByID(ctx context.Context, id int) (*models.Accessory, error) {
	acc := &models.Accessory{}

	err := r.DB().QueryRowContext(ctx, `
		SELECT id, name, pool, total_quantity, unit, notes, critical, required_per_booking, created_at, updated_at
		FROM accessories WHERE id = ?
	`, id).Scan(
		&acc.ID, &acc.Name, &acc.Pool, &acc.TotalQuantity, &acc.Unit, &acc.Notes,
		&acc.Critical, &acc.RequiredPerBooking, &acc.CreatedAt, &acc.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying accessory: %w", err)
	}

	windows, err := r.listWindows(ctx, "WHERE accessory_id = ?", id)
	if err != nil {
		return nil, err
	}
	acc.Windows = windows

	return acc, nil
}

// List retrieves all accessories with their out-of-service windows,
// ordered by id.
func (r *AccessoryRepository) List(ctx context.Context) ([]models.Accessory, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, name, pool, total_quantity, unit, notes, critical, required_per_booking, created_at, updated_at
		FROM accessories ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying accessories: %w", err)
	}
	defer rows.Close()

	var accessories []models.Accessory
	index := make(map[int]int)
	for rows.Next() {
		var acc models.Accessory
		if err := rows.Scan(
			&acc.ID, &acc.Name, &acc.Pool, &acc.TotalQuantity, &acc.Unit, &acc.Notes,
			&acc.Critical, &acc.RequiredPerBooking, &acc.CreatedAt, &acc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning accessory: %w", err)
		}
		acc.Windows = []models.OutOfServiceWindow{}
		index[acc.ID] = len(accessories)
		accessories = append(accessories, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	windows, err := r.listWindows(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, w := range windows {
		if i, ok := index[w.AccessoryID]; ok {
			accessories[i].Windows = append(accessories[i].Windows, w)
		}
	}

	return accessories, nil
}

// AccessoryUpdate carries the fields of a partial accessory update.
// Nil fields are left untouched.
type AccessoryUpdate struct {
	Name               *string         `json:"name,omitempty"`
	Pool               *models.PoolTag `json:"pool,omitempty"`
	TotalQuantity      *int            `json:"total_quantity,omitempty"`
	Unit               *string         `json:"unit,omitempty"`
	Notes              *string         `json:"notes,omitempty"`
	Critical           *bool           `json:"critical,omitempty"`
	RequiredPerBooking *int            `json:"required_per_booking,omitempty"`
}

// UpdateFields merges the set fields of the update into the accessory row.
func (r *AccessoryRepository) UpdateFields(ctx context.Context, id int, u AccessoryUpdate) error {
	var sets []string
	var args []any

	add := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Pool != nil {
		add("pool", *u.Pool)
	}
	if u.TotalQuantity != nil {
		add("total_quantity", *u.TotalQuantity)
	}
	if u.Unit != nil {
		add("unit", *u.Unit)
	}
	if u.Notes != nil {
		add("notes", *u.Notes)
	}
	if u.Critical != nil {
		add("critical", *u.Critical)
	}
	if u.RequiredPerBooking != nil {
		add("required_per_booking", *u.RequiredPerBooking)
	}

	if len(sets) == 0 {
		return nil
	}

	add("updated_at", r.Now())
	args = append(args, id)

	result, err := r.DB().ExecContext(ctx,
		"UPDATE accessories SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("updating accessory: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("accessory not found: %d", id)
	}

	return nil
}

// Delete removes an accessory and its windows. Historical booking
// allocations referencing it are left alone: they carry their own
// name/unit snapshot.
func (r *AccessoryRepository) Delete(ctx context.Context, id int) error {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM accessories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting accessory: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("accessory not found: %d", id)
	}

	return nil
}

// AddWindow inserts an out-of-service window for an accessory.
func (r *AccessoryRepository) AddWindow(ctx context.Context, w *models.OutOfServiceWindow) error {
	w.ID = GenerateID()
	w.CreatedAt = r.Now()

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO out_of_service_windows (id, accessory_id, start_date, end_date, quantity, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, w.ID, w.AccessoryID, w.StartDate, w.EndDate, w.Quantity, w.Reason, w.CreatedAt)

	if err != nil {
		return fmt.Errorf("inserting out-of-service window: %w", err)
	}

	return nil
}

// DeleteWindow removes an out-of-service window by id.
func (r *AccessoryRepository) DeleteWindow(ctx context.Context, accessoryID int, windowID string) error {
	result, err := r.DB().ExecContext(ctx,
		"DELETE FROM out_of_service_windows WHERE id = ? AND accessory_id = ?", windowID, accessoryID)
	if err != nil {
		return fmt.Errorf("deleting out-of-service window: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("out-of-service window not found: %s", windowID)
	}

	return nil
}

func (r *AccessoryRepository) listWindows(ctx context.Context, where string, args ...any) ([]models.OutOfServiceWindow, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, accessory_id, start_date, end_date, quantity, reason, created_at
		FROM out_of_service_windows `+where+` ORDER BY start_date
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying out-of-service windows: %w", err)
	}
	defer rows.Close()

	var windows []models.OutOfServiceWindow
	for rows.Next() {
		var w models.OutOfServiceWindow
		if err := rows.Scan(&w.ID, &w.AccessoryID, &w.StartDate, &w.EndDate, &w.Quantity, &w.Reason, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning out-of-service window: %w", err)
		}
		windows = append(windows, w)
	}

	return windows, rows.Err()
}
