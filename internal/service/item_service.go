package service

import (
	"context"
	"strings"

	"reservation-service/internal/apperr"
	"reservation-service/internal/models"
	"reservation-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ItemService handles item CRUD and the raw availability check.
type ItemService struct {
	store  Store
	logger *zap.Logger
}

// NewItemService creates a new item service
func NewItemService(store Store) *ItemService {
	return &ItemService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// CreateItemRequest represents a request to create an item
type CreateItemRequest struct {
	Name          string `json:"name" binding:"required"`
	TotalQuantity *int   `json:"total_quantity" binding:"required"`
}

// Create creates an item with a generated ID.
func (s *ItemService) Create(ctx context.Context, req *CreateItemRequest) (*models.Item, error) {
	ctx, span := util.StartSpan(ctx, "ItemService.Create")
	defer span.End()

	if strings.TrimSpace(req.Name) == "" {
		return nil, apperr.Validation("Item name is required")
	}
	if req.TotalQuantity == nil || *req.TotalQuantity < 0 {
		return nil, apperr.Validation("Quantity must be non-negative")
	}

	item := &models.Item{
		ID:            uuid.New().String(),
		Name:          req.Name,
		TotalQuantity: *req.TotalQuantity,
	}

	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	util.ItemsCreatedTotal.Inc()
	s.logger.Info("Item created",
		zap.String("item_id", item.ID),
		zap.Int("total_quantity", item.TotalQuantity))

	return item, nil
}

// Get retrieves an item by ID.
func (s *ItemService) Get(ctx context.Context, id string) (*models.Item, error) {
	return s.store.GetItemByID(ctx, id)
}

// List retrieves all items, newest first.
func (s *ItemService) List(ctx context.Context) ([]models.Item, error) {
	return s.store.ListItems(ctx)
}

// Update applies a partial update to an item.
func (s *ItemService) Update(ctx context.Context, id string, upd models.ItemUpdate) (*models.Item, error) {
	ctx, span := util.StartSpan(ctx, "ItemService.Update")
	defer span.End()

	if upd.Empty() {
		return nil, apperr.Validation("At least one field must be provided")
	}
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, apperr.Validation("Item name is required")
	}

	return s.store.UpdateItem(ctx, id, upd)
}

// Delete removes an item. Reservations against it are not cascaded.
func (s *ItemService) Delete(ctx context.Context, id string) error {
	ctx, span := util.StartSpan(ctx, "ItemService.Delete")
	defer span.End()

	if err := s.store.DeleteItem(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Item deleted", zap.String("item_id", id))
	return nil
}

// CheckAvailability answers whether the item's raw total covers the
// requested quantity. Existing holds are deliberately not counted here;
// reservation admission uses its own hold-aware check.
func (s *ItemService) CheckAvailability(ctx context.Context, id string, quantity int) (bool, error) {
	item, err := s.store.GetItemByID(ctx, id)
	if err != nil {
		return false, err
	}
	return item.TotalQuantity >= quantity, nil
}
