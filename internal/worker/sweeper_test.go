package worker

import (
	"context"
	"testing"
	"time"

	"reservation-service/internal/models"
	"reservation-service/internal/service"
	"reservation-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLocker struct {
	grant    bool
	acquired int
	released int
}

func (f *fakeLocker) AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error) {
	f.acquired++
	return f.grant, nil
}

func (f *fakeLocker) ReleaseLock(ctx context.Context, lockKey string) error {
	f.released++
	return nil
}

func newSweepFixture(t *testing.T, locker Locker) (*Sweeper, *store.MemStore) {
	t.Helper()
	mem := store.NewMemStore()
	reservations := service.NewReservationService(mem, nil, nil, 15*time.Minute)
	return NewSweeper(reservations, locker, time.Minute), mem
}

func seedOverdue(t *testing.T, mem *store.MemStore, id string) {
	t.Helper()
	item := &models.Item{ID: "item-" + id, Name: "widget", TotalQuantity: 10}
	require.NoError(t, mem.CreateItem(context.Background(), item))
	require.NoError(t, mem.CreateReservation(context.Background(), &models.Reservation{
		ID:         id,
		ItemID:     item.ID,
		CustomerID: "alice",
		Quantity:   1,
		Status:     models.ReservationStatusPending,
		ExpiresAt:  time.Now().Add(-time.Minute),
	}))
}

func TestRunOnceExpiresOverdueHolds(t *testing.T) {
	locker := &fakeLocker{grant: true}
	sweeper, mem := newSweepFixture(t, locker)
	seedOverdue(t, mem, "rs-1")

	sweeper.RunOnce(context.Background())

	r, err := mem.GetReservationByID(context.Background(), "rs-1")
	require.NoError(t, err)
	assert.Equal(t, models.ReservationStatusExpired, r.Status)
	assert.Equal(t, 1, locker.acquired)
	assert.Equal(t, 1, locker.released)
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	locker := &fakeLocker{grant: false}
	sweeper, mem := newSweepFixture(t, locker)
	seedOverdue(t, mem, "rs-1")

	sweeper.RunOnce(context.Background())

	r, err := mem.GetReservationByID(context.Background(), "rs-1")
	require.NoError(t, err)
	assert.Equal(t, models.ReservationStatusPending, r.Status)
	assert.Equal(t, 0, locker.released)
}

func TestRunOnceWithoutLocker(t *testing.T) {
	sweeper, mem := newSweepFixture(t, nil)
	seedOverdue(t, mem, "rs-1")

	sweeper.RunOnce(context.Background())

	r, err := mem.GetReservationByID(context.Background(), "rs-1")
	require.NoError(t, err)
	assert.Equal(t, models.ReservationStatusExpired, r.Status)
}

func TestStartStopsOnContextCancel(t *testing.T) {
	sweeper, _ := newSweepFixture(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- sweeper.Start(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}
}
