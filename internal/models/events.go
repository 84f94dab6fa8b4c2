package models

import (
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventTypeOrderNotification = "ORDER_NOTIFICATION"
)

// Notification messages emitted by the order coordinator
const (
	MessageOrderCreated   = "Order created successfully"
	MessageOrderUpdated   = "Order updated successfully"
	MessageOrderCancelled = "Order deleted successfully"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// NotificationEvent is published once per successful order operation
type NotificationEvent struct {
	BaseEvent
	Message string    `json:"message"`
	OrderID uuid.UUID `json:"order_id"`
}

// NewNotificationEvent stamps a fresh event id and server time.
func NewNotificationEvent(message string, orderID uuid.UUID) *NotificationEvent {
	return &NotificationEvent{
		BaseEvent: BaseEvent{
			EventID:   uuid.New().String(),
			EventType: EventTypeOrderNotification,
			Timestamp: time.Now().UTC(),
		},
		Message: message,
		OrderID: orderID,
	}
}
