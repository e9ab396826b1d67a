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

// FilterResponse is a filter annotated with its derived capability label
// and service status.
type FilterResponse struct {
	models.Filter
	Capability    string               `json:"capability"`
	ServiceStatus models.ServiceStatus `json:"service_status"`
}

func filterResponse(f models.Filter, today string) FilterResponse {
	return FilterResponse{
		Filter:        f,
		Capability:    f.CapabilityLabel(),
		ServiceStatus: f.ServiceStatusAt(today),
	}
}

// ListFilters returns the whole fleet with bookings attached.
func ListFilters(filters *storage.FilterRepository, bookings *storage.BookingRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		fleet, err := filters.List(ctx)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query filters")
			return
		}

		today := time.Now().Format(models.DayLayout)
		response := make([]FilterResponse, 0, len(fleet))
		for _, f := range fleet {
			f.Bookings, err = bookings.ListByFilter(ctx, f.ID)
			if err != nil {
				middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query bookings")
				return
			}
			response = append(response, filterResponse(f, today))
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}

// GetFilter returns a single filter with its bookings.
func GetFilter(filters *storage.FilterRepository, bookings *storage.BookingRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, ok := filterID(w, r)
		if !ok {
			return
		}

		f, err := filters.GetByID(ctx, id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query filter")
			return
		}
		if f == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Filter not found")
			return
		}

		f.Bookings, err = bookings.ListByFilter(ctx, f.ID)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query bookings")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(filterResponse(*f, time.Now().Format(models.DayLayout)))
	}
}

// UpdateFilter merges the given fields into the filter document.
// Absent fields are left untouched; the update is last-write-wins.
func UpdateFilter(filters *storage.FilterRepository, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, ok := filterID(w, r)
		if !ok {
			return
		}

		var update storage.FilterUpdate
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		if update.ServiceFrequencyDays != nil && *update.ServiceFrequencyDays <= 0 {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Service frequency must be positive")
			return
		}
		if update.LastServiceDate != nil {
			if _, err := time.Parse(models.DayLayout, *update.LastServiceDate); err != nil {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Last service date must be YYYY-MM-DD")
				return
			}
		}

		existing, err := filters.GetByID(ctx, id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query filter")
			return
		}
		if existing == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Filter not found")
			return
		}

		if err := filters.UpdateFields(ctx, id, update); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to update filter")
			return
		}

		if hub != nil {
			websocket.NewEventBroadcaster(hub).BroadcastFilterUpdated(id)
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// filterID parses the {id} path variable, writing a 400 on failure.
func filterID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Filter id must be an integer")
		return 0, false
	}
	return id, true
}
