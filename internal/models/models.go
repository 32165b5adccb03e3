package models

import "time"

// Item represents a stock-keeping item. TotalQuantity is the currently
// owned stock: confirmed reservations debit it permanently, pending
// reservations do not.
type Item struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	TotalQuantity int       `db:"total_quantity" json:"total_quantity"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Reservation represents a customer's hold on item quantity.
type Reservation struct {
	ID             string    `db:"id" json:"id"`
	ItemID         string    `db:"item_id" json:"item_id"`
	CustomerID     string    `db:"customer_id" json:"customer_id"`
	Quantity       int       `db:"quantity" json:"quantity"`
	Status         string    `db:"status" json:"status"`
	ExpiresAt      time.Time `db:"expires_at" json:"expires_at"`
	IdempotencyKey string    `db:"idempotency_key" json:"idempotency_key,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Reservation statuses. PENDING is the only non-terminal state.
const (
	ReservationStatusPending   = "PENDING"
	ReservationStatusConfirmed = "CONFIRMED"
	ReservationStatusCancelled = "CANCELLED"
	ReservationStatusExpired   = "EXPIRED"
)

// Expired reports whether the reservation is logically expired at now,
// regardless of whether the sweep has flipped its status yet.
func (r *Reservation) Expired(now time.Time) bool {
	return r.ExpiresAt.Before(now)
}

// ItemStatus is the derived quantity view of an item. It is computed on
// demand and never persisted or cached.
type ItemStatus struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	TotalQuantity     int    `json:"total_quantity"`
	AvailableQuantity int    `json:"available_quantity"`
	ReservedQuantity  int    `json:"reserved_quantity"`
	ConfirmedQuantity int    `json:"confirmed_quantity"`
}

// ItemUpdate carries a partial item update. Nil fields are left untouched.
type ItemUpdate struct {
	Name          *string `json:"name,omitempty"`
	TotalQuantity *int    `json:"total_quantity,omitempty"`
}

// Empty reports whether the update would change nothing.
func (u ItemUpdate) Empty() bool {
	return u.Name == nil && u.TotalQuantity == nil
}

// SweepResult reports the outcome of an expiry sweep.
type SweepResult struct {
	ExpiredCount int64 `json:"expired_count"`
}
