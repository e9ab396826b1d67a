// Package api provides HTTP routing and handlers for the REST API.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/filter-tracker/backend/internal/api/handlers"
	"github.com/filter-tracker/backend/internal/api/middleware"
	"github.com/filter-tracker/backend/internal/booking"
	"github.com/filter-tracker/backend/internal/storage"
	"github.com/filter-tracker/backend/internal/websocket"
)

// Deps bundles the dependencies the router hands to handlers.
type Deps struct {
	DB             *storage.DB
	Hub            *websocket.Hub
	Filters        *storage.FilterRepository
	Accessories    *storage.AccessoryRepository
	Bookings       *storage.BookingRepository
	BookingService *booking.Service
	StaticDir      string
}

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(deps Deps) *mux.Router {
	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logging)
	r.Use(middleware.ErrorRecovery)

	// API subrouter
	api := r.PathPrefix("/api").Subrouter()

	// Health and status endpoints
	api.HandleFunc("/health", handlers.HealthCheck(deps.DB)).Methods("GET")
	api.HandleFunc("/status", handlers.Status(deps.DB, deps.Hub)).Methods("GET")

	// WebSocket endpoint
	api.HandleFunc("/ws", handlers.WebSocketUpgrade(deps.Hub)).Methods("GET")

	// Filter endpoints
	api.HandleFunc("/filters", handlers.ListFilters(deps.Filters, deps.Bookings)).Methods("GET")
	api.HandleFunc("/filters/{id}", handlers.GetFilter(deps.Filters, deps.Bookings)).Methods("GET")
	api.HandleFunc("/filters/{id}", handlers.UpdateFilter(deps.Filters, deps.Hub)).Methods("PUT")

	// Availability read
	api.HandleFunc("/filters/{id}/accessories/available",
		handlers.GetAvailableAccessories(deps.Filters, deps.Accessories, deps.Bookings)).Methods("GET")

	// Booking endpoints
	api.HandleFunc("/filters/{id}/bookings", handlers.CommitBookings(deps.BookingService, deps.Hub)).Methods("POST")
	api.HandleFunc("/filters/{id}/bookings", handlers.RemoveBookings(deps.BookingService, deps.Hub)).Methods("DELETE")

	// Accessory endpoints
	api.HandleFunc("/accessories", handlers.ListAccessories(deps.Accessories)).Methods("GET")
	api.HandleFunc("/accessories", handlers.CreateAccessory(deps.Accessories, deps.Hub)).Methods("POST")
	api.HandleFunc("/accessories/{id}", handlers.UpdateAccessory(deps.Accessories, deps.Hub)).Methods("PUT")
	api.HandleFunc("/accessories/{id}", handlers.DeleteAccessory(deps.Accessories, deps.Hub)).Methods("DELETE")
	api.HandleFunc("/accessories/{id}/windows", handlers.AddOutOfServiceWindow(deps.Accessories, deps.Hub)).Methods("POST")
	api.HandleFunc("/accessories/{id}/windows/{windowID}", handlers.DeleteOutOfServiceWindow(deps.Accessories, deps.Hub)).Methods("DELETE")

	// Report endpoint
	api.HandleFunc("/reports/weekly", handlers.WeeklyReport(deps.Filters, deps.Bookings)).Methods("GET")

	// Serve static frontend files
	if deps.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(deps.StaticDir)))
	}

	return r
}
