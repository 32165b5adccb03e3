package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"reservation-service/internal/apperr"
	"reservation-service/internal/models"
)

// MemStore is an in-memory store with the same contract as Store. A
// single mutex serializes every operation, which gives the check-then-act
// sequences the same effective serializability the SQL store gets from
// row locks. Used by tests and local development.
type MemStore struct {
	mu           sync.Mutex
	items        map[string]models.Item
	reservations map[string]models.Reservation
	seq          int64
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		items:        make(map[string]models.Item),
		reservations: make(map[string]models.Reservation),
	}
}

// nextTime produces strictly increasing creation timestamps so that
// newest-first ordering is stable even within one clock tick.
func (m *MemStore) nextTime() time.Time {
	m.seq++
	return time.Now().Add(time.Duration(m.seq) * time.Nanosecond)
}

// CreateItem inserts a new item and fills in its timestamps.
func (m *MemStore) CreateItem(ctx context.Context, item *models.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.nextTime()
	item.CreatedAt = now
	item.UpdatedAt = now
	m.items[item.ID] = *item
	return nil
}

// GetItemByID retrieves an item by ID
func (m *MemStore) GetItemByID(ctx context.Context, id string) (*models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("Item not found")
	}
	return &item, nil
}

// ListItems retrieves all items, newest first
func (m *MemStore) ListItems(ctx context.Context) ([]models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]models.Item, 0, len(m.items))
	for _, item := range m.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

// UpdateItem applies a partial update and returns the updated item.
func (m *MemStore) UpdateItem(ctx context.Context, id string, upd models.ItemUpdate) (*models.Item, error) {
	if upd.TotalQuantity != nil && *upd.TotalQuantity < 0 {
		return nil, apperr.Validation("Quantity must be non-negative")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("Item not found")
	}

	if upd.Name != nil {
		item.Name = *upd.Name
	}
	if upd.TotalQuantity != nil {
		item.TotalQuantity = *upd.TotalQuantity
	}
	item.UpdatedAt = time.Now()
	m.items[id] = item
	return &item, nil
}

// DeleteItem deletes an item by ID
func (m *MemStore) DeleteItem(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return apperr.NotFound("Item not found")
	}
	delete(m.items, id)
	return nil
}

// CreateReservation admits a hold under the store lock: availability is
// recomputed from pending holds and the insert happens atomically with
// the check.
func (m *MemStore) CreateReservation(ctx context.Context, r *models.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[r.ItemID]
	if !ok {
		return apperr.NotFound("Item not found")
	}

	pending := 0
	for _, existing := range m.reservations {
		if existing.ItemID == r.ItemID && existing.Status == models.ReservationStatusPending {
			pending += existing.Quantity
		}
	}

	if item.TotalQuantity-pending < r.Quantity {
		return apperr.Conflict("Insufficient available quantity")
	}

	now := m.nextTime()
	r.CreatedAt = now
	r.UpdatedAt = now
	m.reservations[r.ID] = *r
	return nil
}

// GetReservationByID retrieves a reservation by ID
func (m *MemStore) GetReservationByID(ctx context.Context, id string) (*models.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reservations[id]
	if !ok {
		return nil, apperr.NotFound("Reservation not found")
	}
	return &r, nil
}

// GetReservationByIdempotencyKey retrieves a reservation by idempotency
// key, or nil when no reservation carries it.
func (m *MemStore) GetReservationByIdempotencyKey(ctx context.Context, key string) (*models.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.reservations {
		if r.IdempotencyKey == key {
			out := r
			return &out, nil
		}
	}
	return nil, nil
}

// ListReservations retrieves all reservations, newest first
func (m *MemStore) ListReservations(ctx context.Context) ([]models.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reservations := make([]models.Reservation, 0, len(m.reservations))
	for _, r := range m.reservations {
		reservations = append(reservations, r)
	}
	sort.Slice(reservations, func(i, j int) bool {
		return reservations[i].CreatedAt.After(reservations[j].CreatedAt)
	})
	return reservations, nil
}

// ActiveQuantities sums the active holds against an item.
func (m *MemStore) ActiveQuantities(ctx context.Context, itemID string) (reserved, confirmed int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.reservations {
		if r.ItemID != itemID {
			continue
		}
		switch r.Status {
		case models.ReservationStatusPending:
			reserved += r.Quantity
		case models.ReservationStatusConfirmed:
			reserved += r.Quantity
			confirmed += r.Quantity
		}
	}
	return reserved, confirmed, nil
}

// ConfirmReservation flips a pending reservation to CONFIRMED and debits
// the item total. Both writes happen under the store lock, or neither.
func (m *MemStore) ConfirmReservation(ctx context.Context, id string, now time.Time) (*models.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reservations[id]
	if !ok {
		return nil, apperr.NotFound("Reservation not found")
	}

	if r.Status == models.ReservationStatusConfirmed {
		return &r, nil
	}

	if r.Expired(now) {
		return nil, apperr.InvalidState("Cannot confirm expired reservation")
	}

	if r.Status != models.ReservationStatusPending {
		return nil, apperr.InvalidState("Cannot confirm reservation with status: %s", r.Status)
	}

	item, ok := m.items[r.ItemID]
	if !ok {
		return nil, apperr.NotFound("Item not found")
	}

	newTotal := item.TotalQuantity - r.Quantity
	if newTotal < 0 {
		return nil, apperr.Conflict("Insufficient inventory to confirm")
	}

	item.TotalQuantity = newTotal
	item.UpdatedAt = time.Now()
	m.items[r.ItemID] = item

	r.Status = models.ReservationStatusConfirmed
	r.UpdatedAt = time.Now()
	m.reservations[id] = r
	return &r, nil
}

// CancelReservation flips a pending reservation to CANCELLED.
func (m *MemStore) CancelReservation(ctx context.Context, id string) (*models.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reservations[id]
	if !ok {
		return nil, apperr.NotFound("Reservation not found")
	}

	if r.Status == models.ReservationStatusCancelled {
		return &r, nil
	}

	if r.Status == models.ReservationStatusConfirmed {
		return nil, apperr.InvalidState("Cannot cancel confirmed reservation")
	}

	if r.Status != models.ReservationStatusPending {
		return nil, apperr.InvalidState("Cannot cancel reservation with status: %s", r.Status)
	}

	r.Status = models.ReservationStatusCancelled
	r.UpdatedAt = time.Now()
	m.reservations[id] = r
	return &r, nil
}

// ExpireReservations transitions every overdue pending reservation to
// EXPIRED and returns how many were flipped.
func (m *MemStore) ExpireReservations(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for id, r := range m.reservations {
		if r.Status == models.ReservationStatusPending && r.ExpiresAt.Before(now) {
			r.Status = models.ReservationStatusExpired
			r.UpdatedAt = time.Now()
			m.reservations[id] = r
			count++
		}
	}
	return count, nil
}
