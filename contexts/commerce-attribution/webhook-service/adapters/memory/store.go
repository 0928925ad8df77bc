package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"magnolia/contexts/commerce-attribution/webhook-service/domain/entities"
	domainerrors "magnolia/contexts/commerce-attribution/webhook-service/domain/errors"
)

// Store is the in-memory adapter backing module tests. Orders and refunds
// dedupe on the same composite keys the postgres schema enforces.
type Store struct {
	mu sync.Mutex

	orders  map[string]entities.AttributedOrder
	refunds map[string]entities.AttributedRefund

	now time.Time
}

func NewStore() *Store {
	return &Store{
		orders:  make(map[string]entities.AttributedOrder),
		refunds: make(map[string]entities.AttributedRefund),
		now:     time.Now().UTC(),
	}
}

// SetNow pins the clock for deterministic tests.
func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now.UTC()
}

func (s *Store) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *Store) InsertIfAbsent(_ context.Context, order entities.AttributedOrder) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := compositeKey(order.ShopDomain, order.ExternalOrderID)
	if _, exists := s.orders[key]; exists {
		return false, nil
	}
	s.orders[key] = order
	return true, nil
}

func (s *Store) GetByExternalOrder(
	_ context.Context,
	shopDomain string,
	externalOrderID string,
) (entities.AttributedOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, exists := s.orders[compositeKey(shopDomain, externalOrderID)]
	if !exists {
		return entities.AttributedOrder{}, domainerrors.ErrOrderNotFound
	}
	return order, nil
}

// Orders returns a snapshot for test assertions.
func (s *Store) Orders() []entities.AttributedOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]entities.AttributedOrder, 0, len(s.orders))
	for _, order := range s.orders {
		items = append(items, order)
	}
	return items
}

// RefundStore exposes the refund slice of the store.
type RefundStore struct {
	store *Store
}

func (s *Store) Refunds() *RefundStore {
	return &RefundStore{store: s}
}

func (r *RefundStore) InsertIfAbsent(_ context.Context, refund entities.AttributedRefund) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := compositeKey(refund.ShopDomain, refund.ExternalRefundID)
	if _, exists := r.store.refunds[key]; exists {
		return false, nil
	}
	r.store.refunds[key] = refund
	return true, nil
}

// All returns a snapshot for test assertions.
func (r *RefundStore) All() []entities.AttributedRefund {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	items := make([]entities.AttributedRefund, 0, len(r.store.refunds))
	for _, refund := range r.store.refunds {
		items = append(items, refund)
	}
	return items
}

func compositeKey(shopDomain string, externalID string) string {
	return strings.TrimSpace(shopDomain) + "|" + strings.TrimSpace(externalID)
}
