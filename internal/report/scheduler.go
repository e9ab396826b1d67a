package report

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/filter-tracker/backend/internal/storage"
	"github.com/filter-tracker/backend/internal/websocket"
)

// Scheduler renders the weekly report on a cron schedule and announces it
// over the WebSocket hub.
type Scheduler struct {
	cron        *cron.Cron
	filters     *storage.FilterRepository
	bookings    *storage.BookingRepository
	broadcaster *websocket.EventBroadcaster
	spec        string
}

// NewScheduler creates a report scheduler. The spec is a cron expression;
// when empty it defaults to Monday 07:00.
func NewScheduler(filters *storage.FilterRepository, bookings *storage.BookingRepository, hub *websocket.Hub, spec string) *Scheduler {
	if spec == "" {
		spec = "0 7 * * 1"
	}

	var broadcaster *websocket.EventBroadcaster
	if hub != nil {
		broadcaster = websocket.NewEventBroadcaster(hub)
	}

	return &Scheduler{
		cron:        cron.New(),
		filters:     filters,
		bookings:    bookings,
		broadcaster: broadcaster,
		spec:        spec,
	}
}

// Start begins the scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.generate); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("Weekly report scheduler started (spec: %s)", s.spec)
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Weekly report scheduler stopped")
}

func (s *Scheduler) generate() {
	ctx := context.Background()
	now := time.Now()

	if _, err := Build(ctx, s.filters, s.bookings, now); err != nil {
		log.Printf("Failed to generate weekly report: %v", err)
		if s.broadcaster != nil {
			s.broadcaster.BroadcastNotification("error", "Weekly Report", "Report generation failed")
		}
		return
	}

	log.Printf("Weekly report generated: %s", Subject(now))
	if s.broadcaster != nil {
		s.broadcaster.BroadcastReportGenerated(Subject(now))
	}
}

// Build loads the fleet state and renders the report text.
func Build(ctx context.Context, filters *storage.FilterRepository, bookings *storage.BookingRepository, now time.Time) (string, error) {
	fleet, err := filters.List(ctx)
	if err != nil {
		return "", err
	}

	for i := range fleet {
		fleet[i].Bookings, err = bookings.ListByFilter(ctx, fleet[i].ID)
		if err != nil {
			return "", err
		}
	}

	return Generate(fleet, now), nil
}
