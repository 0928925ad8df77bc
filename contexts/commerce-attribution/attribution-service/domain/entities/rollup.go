package entities

import "time"

// MatchRollup is the per-match join of every attribution source. All money
// is integer cents; display conversion happens in DTOs only.
type MatchRollup struct {
	MatchID   string
	OfferID   string
	CreatorID string
	Currency  string

	Clicks                 int64
	OrderCount             int64
	OrderRevenueCents      int64
	RefundCount            int64
	RefundTotalCents       int64
	RedemptionCount        int64
	RedemptionRevenueCents int64
	VerifiedDeliverables   int64

	NetRevenueCents int64
}

// RollupTotals aggregates a set of match rollups by creator or offer.
type RollupTotals struct {
	Clicks                 int64
	OrderCount             int64
	OrderRevenueCents      int64
	RefundCount            int64
	RefundTotalCents       int64
	RedemptionCount        int64
	RedemptionRevenueCents int64
	VerifiedDeliverables   int64
	RepeatBuyers           int64

	NetRevenueCents int64
	SeedCostCents   int64
	// ROIPercent is nil when seed cost is zero; never infinity.
	ROIPercent *float64
}

// NetRevenueCents derives net revenue as attributed orders minus refunds.
func NetRevenueCents(orderRevenueCents int64, refundTotalCents int64) int64 {
	return orderRevenueCents - refundTotalCents
}

// ROIPercent computes (net − seedCost) / seedCost × 100, or nil when the
// seed cost is zero.
func ROIPercent(netRevenueCents int64, seedCostCents int64) *float64 {
	if seedCostCents == 0 {
		return nil
	}
	roi := float64(netRevenueCents-seedCostCents) / float64(seedCostCents) * 100
	return &roi
}

// Redemption is a brand-entered manual revenue event. Immutable.
type Redemption struct {
	RedemptionID string
	MatchID      string
	Channel      string
	AmountCents  int64
	Currency     string
	Note         string
	CreatedAt    time.Time
}
