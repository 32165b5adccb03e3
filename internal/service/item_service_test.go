package service

import (
	"context"
	"testing"

	"reservation-service/internal/apperr"
	"reservation-service/internal/models"
	"reservation-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestCreateItem(t *testing.T) {
	svc := NewItemService(store.NewMemStore())
	ctx := context.Background()

	item, err := svc.Create(ctx, &CreateItemRequest{Name: "widget", TotalQuantity: intPtr(50)})
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "widget", item.Name)
	assert.Equal(t, 50, item.TotalQuantity)
	assert.False(t, item.CreatedAt.IsZero())
}

func TestCreateItemValidation(t *testing.T) {
	svc := NewItemService(store.NewMemStore())
	ctx := context.Background()

	_, err := svc.Create(ctx, &CreateItemRequest{Name: "  ", TotalQuantity: intPtr(1)})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.Create(ctx, &CreateItemRequest{Name: "widget", TotalQuantity: intPtr(-1)})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestListItemsNewestFirst(t *testing.T) {
	mem := store.NewMemStore()
	svc := NewItemService(mem)
	ctx := context.Background()

	_, err := svc.Create(ctx, &CreateItemRequest{Name: "first", TotalQuantity: intPtr(1)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &CreateItemRequest{Name: "second", TotalQuantity: intPtr(1)})
	require.NoError(t, err)

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "second", items[0].Name)
	assert.Equal(t, "first", items[1].Name)
}

func TestUpdateItemPartial(t *testing.T) {
	mem := store.NewMemStore()
	svc := NewItemService(mem)
	ctx := context.Background()

	item, err := svc.Create(ctx, &CreateItemRequest{Name: "widget", TotalQuantity: intPtr(10)})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, item.ID, models.ItemUpdate{TotalQuantity: intPtr(25)})
	require.NoError(t, err)
	assert.Equal(t, "widget", updated.Name)
	assert.Equal(t, 25, updated.TotalQuantity)

	updated, err = svc.Update(ctx, item.ID, models.ItemUpdate{Name: strPtr("gadget")})
	require.NoError(t, err)
	assert.Equal(t, "gadget", updated.Name)
	assert.Equal(t, 25, updated.TotalQuantity)
}

func TestUpdateItemValidation(t *testing.T) {
	mem := store.NewMemStore()
	svc := NewItemService(mem)
	ctx := context.Background()

	item, err := svc.Create(ctx, &CreateItemRequest{Name: "widget", TotalQuantity: intPtr(10)})
	require.NoError(t, err)

	_, err = svc.Update(ctx, item.ID, models.ItemUpdate{})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.Update(ctx, item.ID, models.ItemUpdate{TotalQuantity: intPtr(-5)})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.Update(ctx, "missing", models.ItemUpdate{Name: strPtr("x")})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestDeleteItem(t *testing.T) {
	mem := store.NewMemStore()
	svc := NewItemService(mem)
	ctx := context.Background()

	item, err := svc.Create(ctx, &CreateItemRequest{Name: "widget", TotalQuantity: intPtr(10)})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, item.ID))

	_, err = svc.Get(ctx, item.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	err = svc.Delete(ctx, item.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestCheckAvailabilityUsesRawTotal(t *testing.T) {
	mem := store.NewMemStore()
	svc := NewItemService(mem)
	engine := NewReservationService(mem, nil, nil, testTTL)
	ctx := context.Background()

	item, err := svc.Create(ctx, &CreateItemRequest{Name: "widget", TotalQuantity: intPtr(10)})
	require.NoError(t, err)

	// A pending hold does not affect this check: it compares against the
	// raw total only. Reservation admission has its own hold-aware gate.
	_, err = engine.Create(ctx, &CreateReservationRequest{
		ItemID: item.ID, CustomerID: "alice", Quantity: 8,
	})
	require.NoError(t, err)

	available, err := svc.CheckAvailability(ctx, item.ID, 10)
	require.NoError(t, err)
	assert.True(t, available)

	available, err = svc.CheckAvailability(ctx, item.ID, 11)
	require.NoError(t, err)
	assert.False(t, available)

	_, err = svc.CheckAvailability(ctx, "missing", 1)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
