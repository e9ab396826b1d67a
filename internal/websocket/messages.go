package websocket

import (
	"encoding/json"
	"time"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

const (
	// Server -> Client event types
	TypeFilterUpdated    MessageType = "filter.updated"
	TypeAccessoryUpdated MessageType = "accessory.updated"
	TypeAccessoryDeleted MessageType = "accessory.deleted"
	TypeBookingCommitted MessageType = "booking.committed"
	TypeBookingRemoved   MessageType = "booking.removed"
	TypeReportGenerated  MessageType = "report.generated"
	TypeNotification     MessageType = "notification"

	// Client -> Server command types
	TypePing MessageType = "ping"

	// Server -> Client response types
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"
)

// Message represents a WebSocket message envelope.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON serializes the message to JSON bytes.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// FilterUpdatedPayload is the payload for filter.updated events.
type FilterUpdatedPayload struct {
	FilterID int `json:"filter_id"`
}

// AccessoryPayload is the payload for accessory.updated and
// accessory.deleted events.
type AccessoryPayload struct {
	AccessoryID int    `json:"accessory_id"`
	Name        string `json:"name,omitempty"`
}

// BookingCommittedPayload is the payload for booking.committed events.
type BookingCommittedPayload struct {
	FilterID        int     `json:"filter_id"`
	BookingsCreated int     `json:"bookings_created"`
	LastServiceDate *string `json:"last_service_date,omitempty"`
}

// BookingRemovedPayload is the payload for booking.removed events.
type BookingRemovedPayload struct {
	FilterID        int    `json:"filter_id"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	BookingsRemoved int    `json:"bookings_removed"`
}

// ReportGeneratedPayload is the payload for report.generated events.
type ReportGeneratedPayload struct {
	GeneratedAt time.Time `json:"generated_at"`
	Subject     string    `json:"subject"`
}

// NotificationPayload is the payload for notification events.
type NotificationPayload struct {
	Level       string `json:"level"` // info, warning, error, success
	Title       string `json:"title"`
	Message     string `json:"message"`
	Dismissible bool   `json:"dismissible"`
}

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	OriginalType string `json:"original_type,omitempty"`
}
