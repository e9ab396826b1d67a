package handlers

import (
	"net/http"
	"time"

	"github.com/filter-tracker/backend/internal/api/middleware"
	"github.com/filter-tracker/backend/internal/report"
	"github.com/filter-tracker/backend/internal/storage"
)

// WeeklyReport renders the weekly fleet status report as plain text.
// The text is meant to be copied into an email; nothing is sent from here.
func WeeklyReport(filters *storage.FilterRepository, bookings *storage.BookingRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, err := report.Build(r.Context(), filters, bookings, time.Now())
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to generate report")
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(text))
	}
}
