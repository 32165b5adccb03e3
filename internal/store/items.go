package store

import (
	"context"
	"database/sql"
	"fmt"

	"reservation-service/internal/apperr"
	"reservation-service/internal/models"
)

// CreateItem inserts a new item and fills in its timestamps.
func (s *Store) CreateItem(ctx context.Context, item *models.Item) error {
	query := `
		INSERT INTO items (id, name, total_quantity)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query, item.ID, item.Name, item.TotalQuantity).
		Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// GetItemByID retrieves an item by ID
func (s *Store) GetItemByID(ctx context.Context, id string) (*models.Item, error) {
	var item models.Item
	err := s.db.GetContext(ctx, &item, "SELECT * FROM items WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Item not found")
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListItems retrieves all items, newest first
func (s *Store) ListItems(ctx context.Context) ([]models.Item, error) {
	items := []models.Item{}
	err := s.db.SelectContext(ctx, &items, "SELECT * FROM items ORDER BY created_at DESC")
	return items, err
}

// UpdateItem applies a partial update and returns the updated item.
// A negative total quantity is rejected before touching the row.
func (s *Store) UpdateItem(ctx context.Context, id string, upd models.ItemUpdate) (*models.Item, error) {
	if upd.TotalQuantity != nil && *upd.TotalQuantity < 0 {
		return nil, apperr.Validation("Quantity must be non-negative")
	}

	var item models.Item
	query := `
		UPDATE items
		SET name = COALESCE($2, name),
		    total_quantity = COALESCE($3, total_quantity),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING *`

	err := s.db.GetContext(ctx, &item, query, id, upd.Name, upd.TotalQuantity)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Item not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return &item, nil
}

// DeleteItem deletes an item by ID
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM items WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.NotFound("Item not found")
	}
	return nil
}
