package http

// Payload shapes follow the commerce platform's webhook bodies. Numeric
// external ids arrive as JSON numbers and are stringified at the boundary.

type OrderPayload struct {
	ID         int64  `json:"id"`
	TotalPrice string `json:"total_price"`
	Currency   string `json:"currency"`
	Customer   struct {
		ID int64 `json:"id"`
	} `json:"customer"`
	DiscountCodes []struct {
		Code string `json:"code"`
	} `json:"discount_codes"`
}

type RefundPayload struct {
	ID           int64 `json:"id"`
	OrderID      int64 `json:"order_id"`
	Transactions []struct {
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
	} `json:"transactions"`
}

type FulfillmentPayload struct {
	OrderID        int64  `json:"order_id"`
	TrackingNumber string `json:"tracking_number"`
	TrackingURL    string `json:"tracking_url"`
}

type SubscriptionPayload struct {
	Status   string `json:"status"`
	PlanName string `json:"plan_name"`
	Metadata struct {
		BrandID string `json:"brand_id"`
	} `json:"metadata"`
}

type WebhookResponse struct {
	OK         bool  `json:"ok"`
	Attributed *bool `json:"attributed,omitempty"`
	Updated    *bool `json:"updated,omitempty"`
	Deduped    bool  `json:"deduped,omitempty"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
