package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/filter-tracker/backend/internal/api/middleware"
	"github.com/filter-tracker/backend/internal/storage"
	"github.com/filter-tracker/backend/internal/storage/models"
	"github.com/filter-tracker/backend/internal/websocket"
)

// CreateAccessoryRequest carries the fields for a new accessory.
type CreateAccessoryRequest struct {
	Name               string         `json:"name"`
	Pool               models.PoolTag `json:"pool"`
	TotalQuantity      int            `json:"total_quantity"`
	Unit               string         `json:"unit"`
	Notes              string         `json:"notes"`
	Critical           bool           `json:"critical"`
	RequiredPerBooking int            `json:"required_per_booking"`
}

// ListAccessories returns all accessories with their out-of-service windows.
func ListAccessories(accessories *storage.AccessoryRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := accessories.List(r.Context())
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query accessories")
			return
		}

		if all == nil {
			all = []models.Accessory{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(all)
	}
}

// CreateAccessory adds a new accessory, assigning the next unused integer id.
func CreateAccessory(accessories *storage.AccessoryRepository, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAccessoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		if req.Name == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Accessory name is required")
			return
		}
		if !req.Pool.Valid() {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Pool must be pool-a or pool-b")
			return
		}
		if req.TotalQuantity < 0 || req.RequiredPerBooking < 0 {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Quantities must not be negative")
			return
		}

		acc := &models.Accessory{
			Name:               req.Name,
			Pool:               req.Pool,
			TotalQuantity:      req.TotalQuantity,
			Unit:               req.Unit,
			Notes:              req.Notes,
			Critical:           req.Critical,
			RequiredPerBooking: req.RequiredPerBooking,
			Windows:            []models.OutOfServiceWindow{},
		}

		if err := accessories.Create(r.Context(), acc); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to create accessory")
			return
		}

		if hub != nil {
			websocket.NewEventBroadcaster(hub).BroadcastAccessoryUpdated(acc.ID, acc.Name)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(acc)
	}
}

// UpdateAccessory merges the given fields into the accessory.
func UpdateAccessory(accessories *storage.AccessoryRepository, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, ok := accessoryID(w, r)
		if !ok {
			return
		}

		var update storage.AccessoryUpdate
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		if update.Name != nil && *update.Name == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Accessory name must not be empty")
			return
		}
		if update.Pool != nil && !update.Pool.Valid() {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Pool must be pool-a or pool-b")
			return
		}
		if (update.TotalQuantity != nil && *update.TotalQuantity < 0) ||
			(update.RequiredPerBooking != nil && *update.RequiredPerBooking < 0) {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Quantities must not be negative")
			return
		}

		existing, err := accessories.GetByID(ctx, id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query accessory")
			return
		}
		if existing == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Accessory not found")
			return
		}

		if err := accessories.UpdateFields(ctx, id, update); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to update accessory")
			return
		}

		if hub != nil {
			websocket.NewEventBroadcaster(hub).BroadcastAccessoryUpdated(id, existing.Name)
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteAccessory removes an accessory and its windows. Historical booking
// allocations keep their denormalized snapshot and are left untouched.
func DeleteAccessory(accessories *storage.AccessoryRepository, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, ok := accessoryID(w, r)
		if !ok {
			return
		}

		existing, err := accessories.GetByID(ctx, id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query accessory")
			return
		}
		if existing == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Accessory not found")
			return
		}

		if err := accessories.Delete(ctx, id); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to delete accessory")
			return
		}

		if hub != nil {
			websocket.NewEventBroadcaster(hub).BroadcastAccessoryDeleted(id, existing.Name)
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// AddWindowRequest carries the fields for a new out-of-service window.
type AddWindowRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
}

// AddOutOfServiceWindow attaches a maintenance window to an accessory.
func AddOutOfServiceWindow(accessories *storage.AccessoryRepository, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, ok := accessoryID(w, r)
		if !ok {
			return
		}

		var req AddWindowRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		if !validDay(req.StartDate) || !validDay(req.EndDate) {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Dates must be YYYY-MM-DD")
			return
		}
		if req.EndDate < req.StartDate {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "End date is before start date")
			return
		}
		if req.Quantity <= 0 {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Removed quantity must be positive")
			return
		}

		existing, err := accessories.GetByID(ctx, id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query accessory")
			return
		}
		if existing == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Accessory not found")
			return
		}

		window := &models.OutOfServiceWindow{
			AccessoryID: id,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
			Quantity:    req.Quantity,
			Reason:      req.Reason,
		}

		if err := accessories.AddWindow(ctx, window); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to add out-of-service window")
			return
		}

		if hub != nil {
			websocket.NewEventBroadcaster(hub).BroadcastAccessoryUpdated(id, existing.Name)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(window)
	}
}

// DeleteOutOfServiceWindow removes a maintenance window.
func DeleteOutOfServiceWindow(accessories *storage.AccessoryRepository, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, ok := accessoryID(w, r)
		if !ok {
			return
		}
		windowID := mux.Vars(r)["windowID"]

		if err := accessories.DeleteWindow(ctx, id, windowID); err != nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Out-of-service window not found")
			return
		}

		if hub != nil {
			websocket.NewEventBroadcaster(hub).BroadcastAccessoryUpdated(id, "")
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// accessoryID parses the {id} path variable, writing a 400 on failure.
func accessoryID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Accessory id must be an integer")
		return 0, false
	}
	return id, true
}

func validDay(s string) bool {
	_, err := time.Parse(models.DayLayout, s)
	return err == nil
}
