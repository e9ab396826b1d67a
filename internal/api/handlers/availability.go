package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/filter-tracker/backend/internal/api/middleware"
	"github.com/filter-tracker/backend/internal/availability"
	"github.com/filter-tracker/backend/internal/storage"
	"github.com/filter-tracker/backend/internal/storage/models"
)

// AccessoryAvailability is an accessory annotated with its availability
// over the queried date range.
type AccessoryAvailability struct {
	models.Accessory
	AvailableQuantity        int  `json:"available_quantity"`
	AllocatedCount           int  `json:"allocated_count"`
	OutOfServiceDuringPeriod bool `json:"out_of_service_during_period"`
	CriticalShortfall        bool `json:"critical_shortfall"`
}

// GetAvailableAccessories is the primary availability read: every accessory
// visible to the filter's pool, annotated with the quantity available on
// the tightest day of the requested range. Bookings on every filter in the
// pool count against capacity, since accessories are shared.
func GetAvailableAccessories(filters *storage.FilterRepository, accessories *storage.AccessoryRepository, bookings *storage.BookingRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, ok := filterID(w, r)
		if !ok {
			return
		}

		start := r.URL.Query().Get("start")
		end := r.URL.Query().Get("end")
		if !availability.ValidDay(start) || !availability.ValidDay(end) {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "start and end must be YYYY-MM-DD")
			return
		}
		if end < start {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "End date is before start date")
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

		all, err := accessories.List(ctx)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query accessories")
			return
		}

		// Availability is always a live recomputation over the full
		// booking history; nothing is cached or decremented.
		booked, err := bookings.ListAll(ctx)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query bookings")
			return
		}

		visible := availability.VisibleTo(id, all)
		response := make([]AccessoryAvailability, 0, len(visible))
		for i := range visible {
			result, err := availability.Compute(id, &visible[i], booked, start, end)
			if err != nil {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, err.Error())
				return
			}
			response = append(response, AccessoryAvailability{
				Accessory:                visible[i],
				AvailableQuantity:        result.AvailableQuantity,
				AllocatedCount:           result.AllocatedCount,
				OutOfServiceDuringPeriod: result.OutOfService,
				CriticalShortfall:        result.CriticalShortfall,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}
