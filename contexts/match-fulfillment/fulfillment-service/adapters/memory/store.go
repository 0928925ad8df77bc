package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"magnolia/contexts/match-fulfillment/fulfillment-service/domain/entities"
	domainerrors "magnolia/contexts/match-fulfillment/fulfillment-service/domain/errors"
)

// Store is the in-memory adapter backing module tests. It mirrors the
// postgres adapter's compare-and-swap semantics under a mutex.
type Store struct {
	mu sync.Mutex

	records   map[string]entities.OrderFulfillmentRecord
	discounts map[string]entities.MatchDiscount
	shipments map[string]entities.ManualShipment

	// accepted matches the reconciliation sweep should see, keyed by match
	// id; the postgres adapter reads these from the matches table.
	acceptedMatches []string

	idSeq int
	now   time.Time
}

func NewStore() *Store {
	return &Store{
		records:   make(map[string]entities.OrderFulfillmentRecord),
		discounts: make(map[string]entities.MatchDiscount),
		shipments: make(map[string]entities.ManualShipment),
		now:       time.Now().UTC(),
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

func (s *Store) NewID(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idSeq++
	return fmt.Sprintf("id-%04d", s.idSeq), nil
}

// SeedAcceptedMatch registers a match for the missing-discount sweep.
func (s *Store) SeedAcceptedMatch(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acceptedMatches = append(s.acceptedMatches, matchID)
}

func (s *Store) GetByMatch(_ context.Context, matchID string) (entities.OrderFulfillmentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, exists := s.records[strings.TrimSpace(matchID)]
	if !exists {
		return entities.OrderFulfillmentRecord{}, domainerrors.ErrRecordNotFound
	}
	return item, nil
}

func (s *Store) GetByExternalOrder(
	_ context.Context,
	shopDomain string,
	externalOrderID string,
) (entities.OrderFulfillmentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.records {
		if item.ShopDomain == strings.TrimSpace(shopDomain) && item.ExternalOrderID == strings.TrimSpace(externalOrderID) {
			return item, nil
		}
	}
	return entities.OrderFulfillmentRecord{}, domainerrors.ErrRecordNotFound
}

func (s *Store) CreateIfAbsent(
	_ context.Context,
	record entities.OrderFulfillmentRecord,
) (entities.OrderFulfillmentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, exists := s.records[record.MatchID]; exists {
		return existing, nil
	}
	s.records[record.MatchID] = record
	return record, nil
}

func (s *Store) SetDraftCreated(_ context.Context, recordID string, draftID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, exists := s.findRecord(recordID)
	if !exists {
		return false, nil
	}
	if item.Status != entities.OrderStatusPending && item.Status != entities.OrderStatusError {
		return false, nil
	}
	item.Status = entities.OrderStatusDraftCreated
	item.ExternalDraftID = strings.TrimSpace(draftID)
	item.Error = ""
	item.UpdatedAt = at.UTC()
	s.records[item.MatchID] = item
	return true, nil
}

func (s *Store) SetCompleted(_ context.Context, recordID string, externalOrderID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, exists := s.findRecord(recordID)
	if !exists || item.Status != entities.OrderStatusDraftCreated {
		return false, nil
	}
	item.Status = entities.OrderStatusCompleted
	item.ExternalOrderID = strings.TrimSpace(externalOrderID)
	item.Error = ""
	item.UpdatedAt = at.UTC()
	s.records[item.MatchID] = item
	return true, nil
}

func (s *Store) SetFulfilled(
	_ context.Context,
	recordID string,
	trackingNumber string,
	trackingURL string,
	at time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, exists := s.findRecord(recordID)
	if !exists || item.Status != entities.OrderStatusCompleted {
		return false, nil
	}
	item.Status = entities.OrderStatusFulfilled
	item.TrackingNumber = strings.TrimSpace(trackingNumber)
	item.TrackingURL = strings.TrimSpace(trackingURL)
	item.UpdatedAt = at.UTC()
	s.records[item.MatchID] = item
	return true, nil
}

func (s *Store) SetError(_ context.Context, recordID string, message string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, exists := s.findRecord(recordID)
	if !exists || item.Terminal() {
		return nil
	}
	item.Status = entities.OrderStatusError
	item.Error = strings.TrimSpace(message)
	item.UpdatedAt = at.UTC()
	s.records[item.MatchID] = item
	return nil
}

func (s *Store) ListRetryable(_ context.Context, limit int) ([]entities.OrderFulfillmentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]entities.OrderFulfillmentRecord, 0)
	for _, item := range s.records {
		if !item.Terminal() {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) findRecord(recordID string) (entities.OrderFulfillmentRecord, bool) {
	for _, item := range s.records {
		if item.RecordID == strings.TrimSpace(recordID) {
			return item, true
		}
	}
	return entities.OrderFulfillmentRecord{}, false
}

// DiscountStore exposes the discount slice of the store under the
// repository port names.
type DiscountStore struct {
	store *Store
}

func (s *Store) Discounts() *DiscountStore {
	return &DiscountStore{store: s}
}

func (d *DiscountStore) GetByMatch(_ context.Context, matchID string) (entities.MatchDiscount, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	item, exists := d.store.discounts[strings.TrimSpace(matchID)]
	if !exists {
		return entities.MatchDiscount{}, domainerrors.ErrRecordNotFound
	}
	return item, nil
}

func (d *DiscountStore) CreateIfAbsent(_ context.Context, discount entities.MatchDiscount) (bool, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	if _, exists := d.store.discounts[discount.MatchID]; exists {
		return false, nil
	}
	d.store.discounts[discount.MatchID] = discount
	return true, nil
}

func (d *DiscountStore) ListAcceptedMatchesMissingDiscount(_ context.Context, limit int) ([]string, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	missing := make([]string, 0)
	for _, matchID := range d.store.acceptedMatches {
		if _, exists := d.store.discounts[matchID]; !exists {
			missing = append(missing, matchID)
		}
	}
	if limit > 0 && len(missing) > limit {
		missing = missing[:limit]
	}
	return missing, nil
}

// ShipmentStore exposes the manual shipment slice of the store.
type ShipmentStore struct {
	store *Store
}

func (s *Store) Shipments() *ShipmentStore {
	return &ShipmentStore{store: s}
}

func (m *ShipmentStore) GetByMatch(_ context.Context, matchID string) (entities.ManualShipment, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	item, exists := m.store.shipments[strings.TrimSpace(matchID)]
	if !exists {
		return entities.ManualShipment{}, domainerrors.ErrRecordNotFound
	}
	return item, nil
}

func (m *ShipmentStore) CreateIfAbsent(_ context.Context, shipment entities.ManualShipment) (bool, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if _, exists := m.store.shipments[shipment.MatchID]; exists {
		return false, nil
	}
	m.store.shipments[shipment.MatchID] = shipment
	return true, nil
}
