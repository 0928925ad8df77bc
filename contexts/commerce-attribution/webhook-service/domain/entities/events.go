package entities

import "time"

// AttributedOrder is a revenue event linked to a match via its campaign
// code. Immutable once written; redelivered webhooks dedupe on
// (shop_domain, external_order_id).
type AttributedOrder struct {
	MatchID            string
	ShopDomain         string
	ExternalOrderID    string
	ExternalCustomerID string
	DiscountCode       string
	Currency           string
	AmountCents        int64
	CreatedAt          time.Time
}

// AttributedRefund is a refund event resolved through the attributed order
// it reverses. Immutable; dedupes on (shop_domain, external_refund_id).
type AttributedRefund struct {
	MatchID          string
	ShopDomain       string
	ExternalRefundID string
	ExternalOrderID  string
	Currency         string
	AmountCents      int64
	CreatedAt        time.Time
}
