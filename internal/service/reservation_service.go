package service

import (
	"context"
	"fmt"
	"time"

	"reservation-service/internal/apperr"
	"reservation-service/internal/models"
	"reservation-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReservationService drives the reservation lifecycle: admission,
// confirmation, cancellation and expiry. It holds no mutable state of
// its own; the store provides the serializability the quantity
// invariant depends on.
type ReservationService struct {
	store  Store
	cache  IdempotencyCache
	events EventPublisher
	logger *zap.Logger
	ttl    time.Duration
	now    func() time.Time
}

// NewReservationService creates a new reservation service. cache and
// events may be nil when redis or kafka are not configured.
func NewReservationService(store Store, cache IdempotencyCache, events EventPublisher, ttl time.Duration) *ReservationService {
	return &ReservationService{
		store:  store,
		cache:  cache,
		events: events,
		logger: util.GetLogger(),
		ttl:    ttl,
		now:    time.Now,
	}
}

// CreateReservationRequest represents a request to place a hold
type CreateReservationRequest struct {
	ItemID         string `json:"item_id" binding:"required"`
	CustomerID     string `json:"customer_id" binding:"required"`
	Quantity       int    `json:"quantity" binding:"required,min=1"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// Create admits a new hold against an item. The availability check and
// the insert run atomically in the store; pending holds are soft, so the
// item's total quantity is untouched.
func (s *ReservationService) Create(ctx context.Context, req *CreateReservationRequest) (*models.Reservation, error) {
	ctx, span := util.StartSpan(ctx, "ReservationService.Create")
	defer span.End()

	start := time.Now()
	defer func() {
		util.AdmissionLatency.Observe(time.Since(start).Seconds())
	}()

	if req.IdempotencyKey != "" {
		existing, err := s.findByIdempotencyKey(ctx, req.IdempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("failed to check idempotency: %w", err)
		}
		if existing != nil {
			s.logger.Info("Duplicate reservation request detected",
				zap.String("idempotency_key", req.IdempotencyKey),
				zap.String("reservation_id", existing.ID))
			return existing, nil
		}
	}

	reservation := &models.Reservation{
		ID:             uuid.New().String(),
		ItemID:         req.ItemID,
		CustomerID:     req.CustomerID,
		Quantity:       req.Quantity,
		Status:         models.ReservationStatusPending,
		ExpiresAt:      s.now().Add(s.ttl),
		IdempotencyKey: req.IdempotencyKey,
	}

	if err := s.store.CreateReservation(ctx, reservation); err != nil {
		switch apperr.KindOf(err) {
		case apperr.KindConflict:
			util.ReservationsRejectedTotal.WithLabelValues("insufficient_quantity").Inc()
		case apperr.KindNotFound:
			util.ReservationsRejectedTotal.WithLabelValues("item_not_found").Inc()
		}
		return nil, err
	}

	util.ReservationsCreatedTotal.Inc()
	s.logger.Info("Reservation created",
		zap.String("reservation_id", reservation.ID),
		zap.String("item_id", reservation.ItemID),
		zap.Int("quantity", reservation.Quantity),
		zap.Time("expires_at", reservation.ExpiresAt))

	if req.IdempotencyKey != "" && s.cache != nil {
		if err := s.cache.SetIdempotencyKey(ctx, req.IdempotencyKey, reservation.ID, s.ttl); err != nil {
			s.logger.Warn("Failed to cache idempotency key", zap.Error(err))
		}
	}

	s.publishCreated(ctx, reservation)
	return reservation, nil
}

// findByIdempotencyKey checks the cache first, then the database.
func (s *ReservationService) findByIdempotencyKey(ctx context.Context, key string) (*models.Reservation, error) {
	if s.cache != nil {
		id, err := s.cache.GetIdempotencyKey(ctx, key)
		if err != nil {
			s.logger.Warn("Idempotency cache lookup failed, falling back to DB", zap.Error(err))
		} else if id != "" {
			reservation, err := s.store.GetReservationByID(ctx, id)
			if err == nil {
				return reservation, nil
			}
		}
	}
	return s.store.GetReservationByIdempotencyKey(ctx, key)
}

// Confirm permanently deducts a pending hold from the item's total and
// flips the reservation to CONFIRMED. Confirming an already confirmed
// reservation is an idempotent no-op.
func (s *ReservationService) Confirm(ctx context.Context, id string) (*models.Reservation, error) {
	ctx, span := util.StartSpan(ctx, "ReservationService.Confirm")
	defer span.End()

	reservation, err := s.store.ConfirmReservation(ctx, id, s.now())
	if err != nil {
		switch apperr.KindOf(err) {
		case apperr.KindConflict:
			util.ReservationsRejectedTotal.WithLabelValues("insufficient_at_confirm").Inc()
		case apperr.KindInvalidState:
			util.ReservationsRejectedTotal.WithLabelValues("invalid_state").Inc()
		}
		return nil, err
	}

	util.ReservationsConfirmedTotal.Inc()
	s.logger.Info("Reservation confirmed",
		zap.String("reservation_id", reservation.ID),
		zap.String("item_id", reservation.ItemID),
		zap.Int("quantity", reservation.Quantity))

	s.publishConfirmed(ctx, reservation)
	return reservation, nil
}

// Cancel releases a pending hold without touching the item's total.
// Cancelling an already cancelled reservation is an idempotent no-op.
func (s *ReservationService) Cancel(ctx context.Context, id string) (*models.Reservation, error) {
	ctx, span := util.StartSpan(ctx, "ReservationService.Cancel")
	defer span.End()

	reservation, err := s.store.CancelReservation(ctx, id)
	if err != nil {
		if apperr.IsKind(err, apperr.KindInvalidState) {
			util.ReservationsRejectedTotal.WithLabelValues("invalid_state").Inc()
		}
		return nil, err
	}

	util.ReservationsCancelledTotal.Inc()
	s.logger.Info("Reservation cancelled",
		zap.String("reservation_id", reservation.ID),
		zap.String("item_id", reservation.ItemID))

	s.publishCancelled(ctx, reservation)
	return reservation, nil
}

// Expire sweeps every overdue pending reservation to EXPIRED. The sweep
// is idempotent and safe to run concurrently with itself.
func (s *ReservationService) Expire(ctx context.Context) (*models.SweepResult, error) {
	ctx, span := util.StartSpan(ctx, "ReservationService.Expire")
	defer span.End()

	util.SweepRunsTotal.Inc()

	count, err := s.store.ExpireReservations(ctx, s.now())
	if err != nil {
		return nil, err
	}

	if count > 0 {
		util.ReservationsExpiredTotal.Add(float64(count))
		s.logger.Info("Reservations expired", zap.Int64("count", count))
		s.publishExpired(ctx, count)
	}

	return &models.SweepResult{ExpiredCount: count}, nil
}

// Get retrieves a reservation by ID.
func (s *ReservationService) Get(ctx context.Context, id string) (*models.Reservation, error) {
	return s.store.GetReservationByID(ctx, id)
}

// List retrieves all reservations, newest first.
func (s *ReservationService) List(ctx context.Context) ([]models.Reservation, error) {
	return s.store.ListReservations(ctx)
}

// Event publishing is best effort: a broker outage must never roll back
// or block a committed state transition.

func (s *ReservationService) publishCreated(ctx context.Context, r *models.Reservation) {
	if s.events == nil {
		return
	}
	event := &models.ReservationCreatedEvent{
		BaseEvent:     s.baseEvent(models.EventTypeReservationCreated),
		ReservationID: r.ID,
		ItemID:        r.ItemID,
		CustomerID:    r.CustomerID,
		Quantity:      r.Quantity,
		ExpiresAt:     r.ExpiresAt,
	}
	if err := s.events.PublishReservationCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish ReservationCreated event", zap.Error(err))
	}
}

func (s *ReservationService) publishConfirmed(ctx context.Context, r *models.Reservation) {
	if s.events == nil {
		return
	}
	event := &models.ReservationConfirmedEvent{
		BaseEvent:     s.baseEvent(models.EventTypeReservationConfirmed),
		ReservationID: r.ID,
		ItemID:        r.ItemID,
		Quantity:      r.Quantity,
	}
	if err := s.events.PublishReservationConfirmed(ctx, event); err != nil {
		s.logger.Error("Failed to publish ReservationConfirmed event", zap.Error(err))
	}
}

func (s *ReservationService) publishCancelled(ctx context.Context, r *models.Reservation) {
	if s.events == nil {
		return
	}
	event := &models.ReservationCancelledEvent{
		BaseEvent:     s.baseEvent(models.EventTypeReservationCancelled),
		ReservationID: r.ID,
		ItemID:        r.ItemID,
		Quantity:      r.Quantity,
	}
	if err := s.events.PublishReservationCancelled(ctx, event); err != nil {
		s.logger.Error("Failed to publish ReservationCancelled event", zap.Error(err))
	}
}

func (s *ReservationService) publishExpired(ctx context.Context, count int64) {
	if s.events == nil {
		return
	}
	event := &models.ReservationsExpiredEvent{
		BaseEvent:    s.baseEvent(models.EventTypeReservationsExpired),
		ExpiredCount: count,
	}
	if err := s.events.PublishReservationsExpired(ctx, event); err != nil {
		s.logger.Error("Failed to publish ReservationsExpired event", zap.Error(err))
	}
}

func (s *ReservationService) baseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: s.now(),
	}
}
