package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/filter-tracker/backend/internal/api/middleware"
	"github.com/filter-tracker/backend/internal/booking"
	"github.com/filter-tracker/backend/internal/websocket"
)

// CommitBookingsRequest is a batch of pending bookings to persist together.
type CommitBookingsRequest struct {
	Bookings []booking.PendingBooking `json:"bookings"`
}

// CommitBookings persists a batch of pending bookings for a filter.
// Capacity violations reject the whole batch with an itemized list and
// nothing is written.
func CommitBookings(service *booking.Service, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := filterID(w, r)
		if !ok {
			return
		}

		var req CommitBookingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		result, err := service.Commit(r.Context(), id, req.Bookings)
		if err != nil {
			writeCommitError(w, err)
			return
		}

		if hub != nil {
			websocket.NewEventBroadcaster(hub).BroadcastBookingCommitted(
				result.FilterID, result.BookingsCreated, result.LastServiceDate)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(result)
	}
}

func writeCommitError(w http.ResponseWriter, err error) {
	var validationErr *booking.ValidationError
	var capacityErr *booking.CapacityError

	switch {
	case errors.Is(err, booking.ErrFilterNotFound):
		middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Filter not found")
	case errors.As(err, &validationErr):
		middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, validationErr.Message)
	case errors.As(err, &capacityErr):
		middleware.WriteErrorWithDetails(w, http.StatusConflict, middleware.ErrCapacityViolation,
			"Requested accessory quantities exceed availability", capacityErr.Violations)
	default:
		middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to commit bookings")
	}
}

// RemoveBookings removes a filter's booking on a single day (?date=) or a
// date-contiguous group (?start=&end=).
func RemoveBookings(service *booking.Service, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := filterID(w, r)
		if !ok {
			return
		}

		q := r.URL.Query()
		date := q.Get("date")
		start, end := q.Get("start"), q.Get("end")

		var removed int
		var err error
		switch {
		case date != "":
			removed, err = service.Remove(r.Context(), id, date)
			start, end = date, date
		case start != "" && end != "":
			removed, err = service.RemoveRange(r.Context(), id, start, end)
		default:
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Provide either date or start and end")
			return
		}

		if err != nil {
			var validationErr *booking.ValidationError
			if errors.As(err, &validationErr) {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, validationErr.Message)
				return
			}
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to remove bookings")
			return
		}

		if removed == 0 {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "No bookings on the given dates")
			return
		}

		if hub != nil {
			websocket.NewEventBroadcaster(hub).BroadcastBookingRemoved(id, start, end, removed)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int{"bookings_removed": removed})
	}
}
