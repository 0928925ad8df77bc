package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"magnolia/contexts/commerce-attribution/attribution-service/domain/entities"
	domainerrors "magnolia/contexts/commerce-attribution/attribution-service/domain/errors"
	"magnolia/contexts/commerce-attribution/attribution-service/ports"
)

type seededOrder struct {
	customerID  string
	amountCents int64
	currency    string
}

// Store is the seedable in-memory adapter backing aggregator tests. It
// plays the source tables (clicks, orders, refunds, redemptions, verified
// deliverables) plus the match read model.
type Store struct {
	mu sync.Mutex

	matches     map[string]ports.AttributionMatch
	clicks      map[string]int64
	orders      map[string][]seededOrder
	refunds     map[string][]int64
	redemptions map[string][]entities.Redemption
	verified    map[string]int64

	idSeq int
	now   time.Time
}

func NewStore() *Store {
	return &Store{
		matches:     make(map[string]ports.AttributionMatch),
		clicks:      make(map[string]int64),
		orders:      make(map[string][]seededOrder),
		refunds:     make(map[string][]int64),
		redemptions: make(map[string][]entities.Redemption),
		verified:    make(map[string]int64),
		now:         time.Now().UTC(),
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

func (s *Store) SeedMatch(match ports.AttributionMatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[match.MatchID] = match
}

func (s *Store) SeedClicks(matchID string, count int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clicks[matchID] += count
}

func (s *Store) SeedOrder(matchID string, customerID string, amountCents int64, currency string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[matchID] = append(s.orders[matchID], seededOrder{
		customerID:  customerID,
		amountCents: amountCents,
		currency:    currency,
	})
}

func (s *Store) SeedRefund(matchID string, amountCents int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refunds[matchID] = append(s.refunds[matchID], amountCents)
}

func (s *Store) SeedVerifiedDeliverable(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verified[matchID]++
}

func (s *Store) GetByID(_ context.Context, matchID string) (ports.AttributionMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	match, exists := s.matches[strings.TrimSpace(matchID)]
	if !exists {
		return ports.AttributionMatch{}, domainerrors.ErrMatchNotFound
	}
	return match, nil
}

func (s *Store) ListByCreator(_ context.Context, creatorID string) ([]ports.AttributionMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]ports.AttributionMatch, 0)
	for _, match := range s.matches {
		if match.CreatorID == strings.TrimSpace(creatorID) {
			items = append(items, match)
		}
	}
	sortMatches(items)
	return items, nil
}

func (s *Store) ListByOffer(_ context.Context, offerID string) ([]ports.AttributionMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]ports.AttributionMatch, 0)
	for _, match := range s.matches {
		if match.OfferID == strings.TrimSpace(offerID) {
			items = append(items, match)
		}
	}
	sortMatches(items)
	return items, nil
}

func (s *Store) StatsByMatch(_ context.Context, matchIDs []string) (map[string]ports.MatchStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := make(map[string]ports.MatchStats, len(matchIDs))
	for _, matchID := range matchIDs {
		stat := ports.MatchStats{
			Clicks:               s.clicks[matchID],
			VerifiedDeliverables: s.verified[matchID],
		}
		for _, order := range s.orders[matchID] {
			stat.OrderCount++
			stat.OrderRevenueCents += order.amountCents
			if stat.Currency == "" {
				stat.Currency = order.currency
			}
		}
		for _, cents := range s.refunds[matchID] {
			stat.RefundCount++
			stat.RefundTotalCents += cents
		}
		for _, redemption := range s.redemptions[matchID] {
			stat.RedemptionCount++
			stat.RedemptionRevenueCents += redemption.AmountCents
		}
		stats[matchID] = stat
	}
	return stats, nil
}

func (s *Store) RepeatBuyers(_ context.Context, matchIDs []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	perCustomer := make(map[string]int)
	for _, matchID := range matchIDs {
		for _, order := range s.orders[matchID] {
			if order.customerID == "" || order.customerID == "0" {
				continue
			}
			perCustomer[order.customerID]++
		}
	}
	var repeat int64
	for _, count := range perCustomer {
		if count >= 2 {
			repeat++
		}
	}
	return repeat, nil
}

func (s *Store) Insert(_ context.Context, redemption entities.Redemption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redemptions[redemption.MatchID] = append(s.redemptions[redemption.MatchID], redemption)
	return nil
}

// Redemptions returns a snapshot for test assertions.
func (s *Store) Redemptions(matchID string) []entities.Redemption {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]entities.Redemption, len(s.redemptions[matchID]))
	copy(items, s.redemptions[matchID])
	return items
}

func sortMatches(items []ports.AttributionMatch) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].MatchID < items[j].MatchID
	})
}
