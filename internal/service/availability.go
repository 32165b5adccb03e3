package service

import (
	"context"

	"reservation-service/internal/apperr"
	"reservation-service/internal/models"
	"reservation-service/internal/util"

	"go.uber.org/zap"
)

// AvailabilityService derives the quantity view of an item from its
// reservations. It owns no state and never caches: holds mutate too
// often for a cached view to stay truthful.
type AvailabilityService struct {
	store  Store
	logger *zap.Logger
}

// NewAvailabilityService creates a new availability service
func NewAvailabilityService(store Store) *AvailabilityService {
	return &AvailabilityService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// Status computes the derived ItemStatus for an item. Reserved counts
// PENDING and CONFIRMED holds; available is total minus reserved. A
// negative available quantity means the admission invariant was broken
// somewhere and is surfaced as an internal error, never clamped.
func (s *AvailabilityService) Status(ctx context.Context, itemID string) (*models.ItemStatus, error) {
	ctx, span := util.StartSpan(ctx, "AvailabilityService.Status")
	defer span.End()

	item, err := s.store.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	reserved, confirmed, err := s.store.ActiveQuantities(ctx, itemID)
	if err != nil {
		return nil, err
	}

	available := item.TotalQuantity - reserved
	if available < 0 {
		s.logger.Error("Inventory accounting inconsistency",
			zap.String("item_id", itemID),
			zap.Int("total_quantity", item.TotalQuantity),
			zap.Int("reserved_quantity", reserved))
		return nil, apperr.Internal("Inventory accounting inconsistency for item %s", itemID)
	}

	return &models.ItemStatus{
		ID:                item.ID,
		Name:              item.Name,
		TotalQuantity:     item.TotalQuantity,
		AvailableQuantity: available,
		ReservedQuantity:  reserved,
		ConfirmedQuantity: confirmed,
	}, nil
}
