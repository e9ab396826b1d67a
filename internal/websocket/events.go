package websocket

import (
	"log"
	"time"
)

// EventBroadcaster handles broadcasting WebSocket events.
type EventBroadcaster struct {
	hub *Hub
}

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster(hub *Hub) *EventBroadcaster {
	return &EventBroadcaster{hub: hub}
}

// BroadcastFilterUpdated announces that a filter's fields changed.
func (b *EventBroadcaster) BroadcastFilterUpdated(filterID int) {
	b.broadcast(NewMessage(TypeFilterUpdated, FilterUpdatedPayload{FilterID: filterID}))
}

// BroadcastAccessoryUpdated announces that an accessory was created or
// its fields or out-of-service windows changed.
func (b *EventBroadcaster) BroadcastAccessoryUpdated(accessoryID int, name string) {
	b.broadcast(NewMessage(TypeAccessoryUpdated, AccessoryPayload{AccessoryID: accessoryID, Name: name}))
}

// BroadcastAccessoryDeleted announces that an accessory was removed.
func (b *EventBroadcaster) BroadcastAccessoryDeleted(accessoryID int, name string) {
	b.broadcast(NewMessage(TypeAccessoryDeleted, AccessoryPayload{AccessoryID: accessoryID, Name: name}))
}

// BroadcastBookingCommitted announces a successful booking batch commit.
func (b *EventBroadcaster) BroadcastBookingCommitted(filterID, bookingsCreated int, lastServiceDate *string) {
	b.broadcast(NewMessage(TypeBookingCommitted, BookingCommittedPayload{
		FilterID:        filterID,
		BookingsCreated: bookingsCreated,
		LastServiceDate: lastServiceDate,
	}))
}

// BroadcastBookingRemoved announces booking removal for a day or range.
func (b *EventBroadcaster) BroadcastBookingRemoved(filterID int, start, end string, removed int) {
	b.broadcast(NewMessage(TypeBookingRemoved, BookingRemovedPayload{
		FilterID:        filterID,
		StartDate:       start,
		EndDate:         end,
		BookingsRemoved: removed,
	}))
}

// BroadcastReportGenerated announces that the weekly report was rendered.
func (b *EventBroadcaster) BroadcastReportGenerated(subject string) {
	b.broadcast(NewMessage(TypeReportGenerated, ReportGeneratedPayload{
		GeneratedAt: time.Now().UTC(),
		Subject:     subject,
	}))
}

// BroadcastNotification sends a notification to all connected clients.
func (b *EventBroadcaster) BroadcastNotification(level, title, message string) {
	b.broadcast(NewMessage(TypeNotification, NotificationPayload{
		Level:       level,
		Title:       title,
		Message:     message,
		Dismissible: true,
	}))
}

// broadcast sends a message to all connected clients.
func (b *EventBroadcaster) broadcast(msg Message) {
	data, err := msg.JSON()
	if err != nil {
		log.Printf("Error encoding WebSocket message: %v", err)
		return
	}

	b.hub.Broadcast(data)
}
