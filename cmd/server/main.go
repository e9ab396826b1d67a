// Package main is the entry point for the filtration fleet tracker server.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/filter-tracker/backend/internal/api"
	"github.com/filter-tracker/backend/internal/booking"
	"github.com/filter-tracker/backend/internal/report"
	"github.com/filter-tracker/backend/internal/storage"
	"github.com/filter-tracker/backend/internal/websocket"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
// Defaults to "dev" when not provided.
var version = "dev"

func main() {
	// Parse command-line flags
	addr := flag.String("addr", ":8090", "HTTP server address")
	dataDir := flag.String("data", "/data", "Data directory for SQLite database")
	staticDir := flag.String("static", "./static", "Directory for static frontend files")
	reportSpec := flag.String("report-spec", "", "Cron expression for the weekly report (default Monday 07:00)")
	healthCheck := flag.Bool("health-check", false, "Run health check and exit")
	flag.Parse()

	// Health check mode for Docker HEALTHCHECK
	if *healthCheck {
		if err := runHealthCheck(*addr); err != nil {
			log.Fatalf("Health check failed: %v", err)
		}
		os.Exit(0)
	}

	// Allow overriding version via environment (e.g., injected by container build/runtime)
	if envVer := os.Getenv("VERSION"); envVer != "" {
		version = envVer
	}

	log.Printf("Starting Filtration Fleet Tracker (version: %s)...", version)

	// Initialize database
	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		log.Fatalf("Failed to create data directory %q: %v", *dataDir, err)
	}
	dbPath := *dataDir + "/filter-tracker.db"
	db, err := storage.NewDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := storage.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations complete")

	// Initialize repositories
	filterRepo := storage.NewFilterRepository(db)
	accessoryRepo := storage.NewAccessoryRepository(db)
	bookingRepo := storage.NewBookingRepository(db)

	// Seed the fixed fleet on first run
	if err := filterRepo.EnsureDefaults(context.Background()); err != nil {
		log.Fatalf("Failed to seed default filters: %v", err)
	}

	// Initialize WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize booking service
	bookingService := booking.NewService(db, filterRepo, accessoryRepo, bookingRepo)

	// Start the weekly report scheduler
	reportScheduler := report.NewScheduler(filterRepo, bookingRepo, hub, *reportSpec)
	if err := reportScheduler.Start(); err != nil {
		log.Printf("Warning: Failed to start report scheduler: %v", err)
	}

	// Initialize HTTP router
	router := api.NewRouter(api.Deps{
		DB:             db,
		Hub:            hub,
		Filters:        filterRepo,
		Accessories:    accessoryRepo,
		Bookings:       bookingRepo,
		BookingService: bookingService,
		StaticDir:      *staticDir,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         *addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		log.Printf("Server listening on %s", *addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Stop the report scheduler
	reportScheduler.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// runHealthCheck performs a health check against the running server.
func runHealthCheck(addr string) error {
	url := "http://localhost" + addr + "/api/health"
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return http.ErrAbortHandler
	}
	return nil
}
