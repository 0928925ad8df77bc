package directory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	shareddirectory "magnolia/internal/shared/directory"
)

// MemoryStore backs module tests that need directory reads without postgres.
type MemoryStore struct {
	mu       sync.RWMutex
	offers   map[string]shareddirectory.Offer
	brands   map[string]shareddirectory.Brand
	creators map[string]shareddirectory.Creator
	stores   map[string]shareddirectory.StoreConfig
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		offers:   make(map[string]shareddirectory.Offer),
		brands:   make(map[string]shareddirectory.Brand),
		creators: make(map[string]shareddirectory.Creator),
		stores:   make(map[string]shareddirectory.StoreConfig),
	}
}

func (s *MemoryStore) SeedOffer(offer shareddirectory.Offer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offers[offer.OfferID] = offer
}

func (s *MemoryStore) SeedBrand(brand shareddirectory.Brand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brands[brand.BrandID] = brand
}

func (s *MemoryStore) SeedCreator(creator shareddirectory.Creator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creators[creator.CreatorID] = creator
}

func (s *MemoryStore) SeedStore(store shareddirectory.StoreConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stores[store.BrandID] = store
}

func (s *MemoryStore) GetOffer(_ context.Context, offerID string) (shareddirectory.Offer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, exists := s.offers[strings.TrimSpace(offerID)]
	if !exists {
		return shareddirectory.Offer{}, shareddirectory.ErrOfferNotFound
	}
	return item, nil
}

func (s *MemoryStore) ListOffersByBrand(_ context.Context, brandID string) ([]shareddirectory.Offer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]shareddirectory.Offer, 0)
	for _, item := range s.offers {
		if item.BrandID == strings.TrimSpace(brandID) {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].OfferID < items[j].OfferID
	})
	return items, nil
}

func (s *MemoryStore) GetBrand(_ context.Context, brandID string) (shareddirectory.Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, exists := s.brands[strings.TrimSpace(brandID)]
	if !exists {
		return shareddirectory.Brand{}, shareddirectory.ErrBrandNotFound
	}
	return item, nil
}

func (s *MemoryStore) GetCreator(_ context.Context, creatorID string) (shareddirectory.Creator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, exists := s.creators[strings.TrimSpace(creatorID)]
	if !exists {
		return shareddirectory.Creator{}, shareddirectory.ErrCreatorNotFound
	}
	return item, nil
}

func (s *MemoryStore) ListCreators(_ context.Context) ([]shareddirectory.Creator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]shareddirectory.Creator, 0, len(s.creators))
	for _, item := range s.creators {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatorID < items[j].CreatorID
	})
	return items, nil
}

func (s *MemoryStore) StoreByBrand(_ context.Context, brandID string) (shareddirectory.StoreConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, exists := s.stores[strings.TrimSpace(brandID)]
	if !exists {
		return shareddirectory.StoreConfig{}, shareddirectory.ErrStoreNotFound
	}
	return item, nil
}

func (s *MemoryStore) StoreByDomain(_ context.Context, shopDomain string) (shareddirectory.StoreConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.stores {
		if item.ShopDomain == strings.TrimSpace(shopDomain) {
			return item, nil
		}
	}
	return shareddirectory.StoreConfig{}, shareddirectory.ErrStoreNotFound
}

func (s *MemoryStore) UpdateSubscription(
	_ context.Context,
	brandID string,
	status string,
	plan string,
	updatedAt time.Time,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, exists := s.stores[strings.TrimSpace(brandID)]
	if !exists {
		return shareddirectory.ErrStoreNotFound
	}
	item.SubscriptionStatus = strings.TrimSpace(status)
	item.SubscriptionPlan = strings.TrimSpace(plan)
	item.UpdatedAt = updatedAt.UTC()
	s.stores[item.BrandID] = item
	return nil
}
