package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event is an immutable, timestamped fact recorded for traceability.
// Metadata is an opaque serialized payload owned by the caller domain.
type Event struct {
	EventID   uuid.UUID `json:"event_id"`
	UserID    string    `json:"user_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  string    `json:"metadata"`
}

// EventRef is the minimal projection used by the retention sweep.
type EventRef struct {
	EventID   uuid.UUID
	Timestamp time.Time
}

// Event type vocabulary is open; these are the values this service emits.
const (
	EventLogin             = "login"
	EventLogout            = "logout"
	EventActivityTouch     = "activity_touch"
	EventCreateProduct     = "create_product"
	EventOrderCreated      = "order_created"
	EventUpdateStock       = "update_stock"
	EventViewOrders        = "view_orders"
	EventDeleteUnavailable = "delete_unavailable_products"
)
