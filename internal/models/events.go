package models

import "time"

// Event types
const (
	EventTypeReservationCreated   = "RESERVATION_CREATED"
	EventTypeReservationConfirmed = "RESERVATION_CONFIRMED"
	EventTypeReservationCancelled = "RESERVATION_CANCELLED"
	EventTypeReservationsExpired  = "RESERVATIONS_EXPIRED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// ReservationCreatedEvent published when a hold is admitted
type ReservationCreatedEvent struct {
	BaseEvent
	ReservationID string    `json:"reservation_id"`
	ItemID        string    `json:"item_id"`
	CustomerID    string    `json:"customer_id"`
	Quantity      int       `json:"quantity"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// ReservationConfirmedEvent published when a hold is confirmed and the
// item total is debited
type ReservationConfirmedEvent struct {
	BaseEvent
	ReservationID string `json:"reservation_id"`
	ItemID        string `json:"item_id"`
	Quantity      int    `json:"quantity"`
}

// ReservationCancelledEvent published when a pending hold is released
type ReservationCancelledEvent struct {
	BaseEvent
	ReservationID string `json:"reservation_id"`
	ItemID        string `json:"item_id"`
	Quantity      int    `json:"quantity"`
}

// ReservationsExpiredEvent published after a sweep expires overdue holds
type ReservationsExpiredEvent struct {
	BaseEvent
	ExpiredCount int64 `json:"expired_count"`
}
