package broker

import (
	"context"
	"fmt"

	"reservation-service/internal/models"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishReservationCreated publishes ReservationCreated event
func (ep *EventPublisher) PublishReservationCreated(ctx context.Context, event *models.ReservationCreatedEvent) error {
	key := fmt.Sprintf("reservation-%s", event.ReservationID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishReservationConfirmed publishes ReservationConfirmed event
func (ep *EventPublisher) PublishReservationConfirmed(ctx context.Context, event *models.ReservationConfirmedEvent) error {
	key := fmt.Sprintf("reservation-%s", event.ReservationID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishReservationCancelled publishes ReservationCancelled event
func (ep *EventPublisher) PublishReservationCancelled(ctx context.Context, event *models.ReservationCancelledEvent) error {
	key := fmt.Sprintf("reservation-%s", event.ReservationID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishReservationsExpired publishes ReservationsExpired event
func (ep *EventPublisher) PublishReservationsExpired(ctx context.Context, event *models.ReservationsExpiredEvent) error {
	return ep.producer.PublishEvent(ctx, "reservation-sweep", event)
}
