package service

import (
	"context"
	"time"

	"reservation-service/internal/models"
)

// Store is the persistence contract the services depend on. The sqlx
// store and the in-memory store both satisfy it; every check-then-act
// sequence (admission, confirm, cancel) is atomic behind this interface.
type Store interface {
	CreateItem(ctx context.Context, item *models.Item) error
	GetItemByID(ctx context.Context, id string) (*models.Item, error)
	ListItems(ctx context.Context) ([]models.Item, error)
	UpdateItem(ctx context.Context, id string, upd models.ItemUpdate) (*models.Item, error)
	DeleteItem(ctx context.Context, id string) error

	CreateReservation(ctx context.Context, r *models.Reservation) error
	GetReservationByID(ctx context.Context, id string) (*models.Reservation, error)
	GetReservationByIdempotencyKey(ctx context.Context, key string) (*models.Reservation, error)
	ListReservations(ctx context.Context) ([]models.Reservation, error)
	ActiveQuantities(ctx context.Context, itemID string) (reserved, confirmed int, err error)
	ConfirmReservation(ctx context.Context, id string, now time.Time) (*models.Reservation, error)
	CancelReservation(ctx context.Context, id string) (*models.Reservation, error)
	ExpireReservations(ctx context.Context, now time.Time) (int64, error)
}

// EventPublisher publishes reservation lifecycle events. Satisfied by
// broker.EventPublisher; may be nil when no broker is configured.
type EventPublisher interface {
	PublishReservationCreated(ctx context.Context, event *models.ReservationCreatedEvent) error
	PublishReservationConfirmed(ctx context.Context, event *models.ReservationConfirmedEvent) error
	PublishReservationCancelled(ctx context.Context, event *models.ReservationCancelledEvent) error
	PublishReservationsExpired(ctx context.Context, event *models.ReservationsExpiredEvent) error
}

// IdempotencyCache is the fast-path duplicate-request check. Satisfied
// by redisclient.Client; may be nil, in which case only the database key
// lookup is used.
type IdempotencyCache interface {
	SetIdempotencyKey(ctx context.Context, key, reservationID string, ttl time.Duration) error
	GetIdempotencyKey(ctx context.Context, key string) (string, error)
}
