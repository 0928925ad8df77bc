package http

// All monetary fields are integer cents with a matching currency code;
// decimal display form is the consumer's concern.

type MatchRollupDTO struct {
	MatchID                string `json:"match_id"`
	OfferID                string `json:"offer_id"`
	CreatorID              string `json:"creator_id"`
	Currency               string `json:"currency,omitempty"`
	Clicks                 int64  `json:"clicks"`
	OrderCount             int64  `json:"order_count"`
	OrderRevenueCents      int64  `json:"order_revenue_cents"`
	RefundCount            int64  `json:"refund_count"`
	RefundTotalCents       int64  `json:"refund_total_cents"`
	RedemptionCount        int64  `json:"redemption_count"`
	RedemptionRevenueCents int64  `json:"redemption_revenue_cents"`
	VerifiedDeliverables   int64  `json:"verified_deliverables"`
	NetRevenueCents        int64  `json:"net_revenue_cents"`
}

type RollupTotalsDTO struct {
	Clicks                 int64    `json:"clicks"`
	OrderCount             int64    `json:"order_count"`
	OrderRevenueCents      int64    `json:"order_revenue_cents"`
	RefundCount            int64    `json:"refund_count"`
	RefundTotalCents       int64    `json:"refund_total_cents"`
	RedemptionCount        int64    `json:"redemption_count"`
	RedemptionRevenueCents int64    `json:"redemption_revenue_cents"`
	VerifiedDeliverables   int64    `json:"verified_deliverables"`
	RepeatBuyers           int64    `json:"repeat_buyers"`
	NetRevenueCents        int64    `json:"net_revenue_cents"`
	SeedCostCents          int64    `json:"seed_cost_cents"`
	ROIPercent             *float64 `json:"roi_percent"`
}

type CreatorAttributionResponse struct {
	CreatorID string           `json:"creator_id"`
	Matches   []MatchRollupDTO `json:"matches"`
	Totals    RollupTotalsDTO  `json:"totals"`
}

type OfferAttributionDTO struct {
	OfferID string           `json:"offer_id"`
	Title   string           `json:"title"`
	Matches []MatchRollupDTO `json:"matches"`
	Totals  RollupTotalsDTO  `json:"totals"`
}

type BrandAttributionResponse struct {
	BrandID string                `json:"brand_id"`
	Offers  []OfferAttributionDTO `json:"offers"`
}

type RecordRedemptionRequest struct {
	Channel  string `json:"channel"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Note     string `json:"note"`
}

type RecordRedemptionResponse struct {
	OK           bool   `json:"ok"`
	RedemptionID string `json:"redemption_id"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
