package store

import (
	"context"
	"testing"
	"time"

	"reservation-service/internal/apperr"
	"reservation-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStoreExpiryBoundary(t *testing.T) {
	mem := NewMemStore()
	ctx := context.Background()

	item := &models.Item{ID: "it-1", Name: "widget", TotalQuantity: 10}
	require.NoError(t, mem.CreateItem(ctx, item))

	now := time.Now()
	atBoundary := &models.Reservation{
		ID: "rs-boundary", ItemID: item.ID, CustomerID: "alice",
		Quantity: 1, Status: models.ReservationStatusPending, ExpiresAt: now,
	}
	require.NoError(t, mem.CreateReservation(ctx, atBoundary))

	// Expiry is strict: a hold expiring exactly at now is not overdue yet.
	count, err := mem.ExpireReservations(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	count, err = mem.ExpireReservations(ctx, now.Add(time.Nanosecond))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMemStoreTerminalStatesStayTerminal(t *testing.T) {
	mem := NewMemStore()
	ctx := context.Background()

	item := &models.Item{ID: "it-1", Name: "widget", TotalQuantity: 10}
	require.NoError(t, mem.CreateItem(ctx, item))

	r := &models.Reservation{
		ID: "rs-1", ItemID: item.ID, CustomerID: "alice",
		Quantity: 1, Status: models.ReservationStatusPending,
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, mem.CreateReservation(ctx, r))

	count, err := mem.ExpireReservations(ctx, time.Now())
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	// An expired reservation is final in every direction.
	_, err = mem.ConfirmReservation(ctx, r.ID, time.Now())
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))

	_, err = mem.CancelReservation(ctx, r.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))

	// And the sweep never touches it again.
	count, err = mem.ExpireReservations(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
