package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"reservation-service/internal/apperr"
	"reservation-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// idempotency_key is nullable in the schema so the unique constraint only
// applies to reservations that actually carry a key.
const reservationColumns = `
	id, item_id, customer_id, quantity, status, expires_at,
	COALESCE(idempotency_key, '') AS idempotency_key, created_at, updated_at`

// CreateReservation admits a hold inside a transaction: it locks the item
// row, sums the pending holds against it, and inserts only if enough
// quantity remains. Two concurrent calls against the same item serialize
// on the row lock, so they can never jointly overcommit.
func (s *Store) CreateReservation(ctx context.Context, r *models.Reservation) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var total int
	err = tx.GetContext(ctx, &total,
		"SELECT total_quantity FROM items WHERE id = $1 FOR UPDATE", r.ItemID)
	if err == sql.ErrNoRows {
		return apperr.NotFound("Item not found")
	}
	if err != nil {
		return fmt.Errorf("failed to lock item: %w", err)
	}

	// Only PENDING holds count against availability here: confirmed
	// reservations already reduced total_quantity at confirm time.
	var pending int
	err = tx.GetContext(ctx, &pending,
		"SELECT COALESCE(SUM(quantity), 0) FROM reservations WHERE item_id = $1 AND status = $2",
		r.ItemID, models.ReservationStatusPending)
	if err != nil {
		return fmt.Errorf("failed to sum pending holds: %w", err)
	}

	if total-pending < r.Quantity {
		return apperr.Conflict("Insufficient available quantity")
	}

	query := `
		INSERT INTO reservations (id, item_id, customer_id, quantity, status, expires_at, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
		RETURNING created_at, updated_at`

	err = tx.QueryRowxContext(ctx, query,
		r.ID, r.ItemID, r.CustomerID, r.Quantity, r.Status, r.ExpiresAt, r.IdempotencyKey).
		Scan(&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	return tx.Commit()
}

// GetReservationByID retrieves a reservation by ID
func (s *Store) GetReservationByID(ctx context.Context, id string) (*models.Reservation, error) {
	var r models.Reservation
	query := "SELECT " + reservationColumns + " FROM reservations WHERE id = $1"
	err := s.db.GetContext(ctx, &r, query, id)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Reservation not found")
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetReservationByIdempotencyKey retrieves a reservation by idempotency
// key, or nil when no reservation carries it.
func (s *Store) GetReservationByIdempotencyKey(ctx context.Context, key string) (*models.Reservation, error) {
	var r models.Reservation
	query := "SELECT " + reservationColumns + " FROM reservations WHERE idempotency_key = $1"
	err := s.db.GetContext(ctx, &r, query, key)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListReservations retrieves all reservations, newest first
func (s *Store) ListReservations(ctx context.Context) ([]models.Reservation, error) {
	reservations := []models.Reservation{}
	query := "SELECT " + reservationColumns + " FROM reservations ORDER BY created_at DESC"
	err := s.db.SelectContext(ctx, &reservations, query)
	return reservations, err
}

// ActiveQuantities sums the active holds against an item: reserved covers
// PENDING and CONFIRMED, confirmed covers CONFIRMED only.
func (s *Store) ActiveQuantities(ctx context.Context, itemID string) (reserved, confirmed int, err error) {
	query := `
		SELECT
			COALESCE(SUM(quantity), 0) AS reserved,
			COALESCE(SUM(quantity) FILTER (WHERE status = $3), 0) AS confirmed
		FROM reservations
		WHERE item_id = $1 AND status IN ($2, $3)`

	row := s.db.QueryRowxContext(ctx, query,
		itemID, models.ReservationStatusPending, models.ReservationStatusConfirmed)
	if err := row.Scan(&reserved, &confirmed); err != nil {
		return 0, 0, fmt.Errorf("failed to sum active holds: %w", err)
	}
	return reserved, confirmed, nil
}

// ConfirmReservation flips a pending reservation to CONFIRMED and debits
// the item's total in one transaction. Both rows are locked for the
// check-then-act sequence; either both writes apply or neither does.
func (s *Store) ConfirmReservation(ctx context.Context, id string, now time.Time) (*models.Reservation, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	r, err := lockReservation(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	// Idempotent retry: confirming a confirmed reservation is a no-op.
	if r.Status == models.ReservationStatusConfirmed {
		return r, tx.Commit()
	}

	// Expiry is a logical predicate on expires_at, not solely a status
	// value: the sweep may not have run yet.
	if r.Expired(now) {
		return nil, apperr.InvalidState("Cannot confirm expired reservation")
	}

	if r.Status != models.ReservationStatusPending {
		return nil, apperr.InvalidState("Cannot confirm reservation with status: %s", r.Status)
	}

	var total int
	err = tx.GetContext(ctx, &total,
		"SELECT total_quantity FROM items WHERE id = $1 FOR UPDATE", r.ItemID)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Item not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock item: %w", err)
	}

	newTotal := total - r.Quantity
	if newTotal < 0 {
		return nil, apperr.Conflict("Insufficient inventory to confirm")
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE items SET total_quantity = $1, updated_at = NOW() WHERE id = $2",
		newTotal, r.ItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to debit item: %w", err)
	}

	updated, err := updateReservationStatus(ctx, tx, id, models.ReservationStatusConfirmed)
	if err != nil {
		return nil, err
	}

	return updated, tx.Commit()
}

// CancelReservation flips a pending reservation to CANCELLED. Terminal
// states are final: only the cancel-on-cancelled retry passes through.
func (s *Store) CancelReservation(ctx context.Context, id string) (*models.Reservation, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	r, err := lockReservation(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if r.Status == models.ReservationStatusCancelled {
		return r, tx.Commit()
	}

	if r.Status == models.ReservationStatusConfirmed {
		return nil, apperr.InvalidState("Cannot cancel confirmed reservation")
	}

	if r.Status != models.ReservationStatusPending {
		return nil, apperr.InvalidState("Cannot cancel reservation with status: %s", r.Status)
	}

	updated, err := updateReservationStatus(ctx, tx, id, models.ReservationStatusCancelled)
	if err != nil {
		return nil, err
	}

	return updated, tx.Commit()
}

// ExpireReservations transitions every overdue pending reservation to
// EXPIRED and returns how many were flipped. The conditional update is
// atomic, so overlapping sweeps cannot double-count a row.
func (s *Store) ExpireReservations(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE reservations SET status = $1, updated_at = NOW() WHERE status = $2 AND expires_at < $3",
		models.ReservationStatusExpired, models.ReservationStatusPending, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire reservations: %w", err)
	}
	return res.RowsAffected()
}

func lockReservation(ctx context.Context, tx *sqlx.Tx, id string) (*models.Reservation, error) {
	var r models.Reservation
	query := "SELECT " + reservationColumns + " FROM reservations WHERE id = $1 FOR UPDATE"
	err := tx.GetContext(ctx, &r, query, id)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Reservation not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock reservation: %w", err)
	}
	return &r, nil
}

func updateReservationStatus(ctx context.Context, tx *sqlx.Tx, id, status string) (*models.Reservation, error) {
	var r models.Reservation
	query := `
		UPDATE reservations SET status = $2, updated_at = NOW() WHERE id = $1
		RETURNING ` + reservationColumns
	err := tx.GetContext(ctx, &r, query, id, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update reservation status: %w", err)
	}
	return &r, nil
}
