package entities

import "time"

type OrderStatus string

const (
	OrderStatusPending      OrderStatus = "pending"
	OrderStatusDraftCreated OrderStatus = "draft_created"
	OrderStatusCompleted    OrderStatus = "completed"
	OrderStatusFulfilled    OrderStatus = "fulfilled"
	OrderStatusCanceled     OrderStatus = "canceled"
	OrderStatusError        OrderStatus = "error"
)

// OrderFulfillmentRecord tracks one external-platform order per match. The
// status advances strictly forward; error re-enters the sequence at the
// step that failed.
type OrderFulfillmentRecord struct {
	RecordID        string
	MatchID         string
	ShopDomain      string
	Status          OrderStatus
	ExternalDraftID string
	ExternalOrderID string
	TrackingNumber  string
	TrackingURL     string
	Error           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Terminal reports whether the orchestrator must never reprocess the record.
func (r OrderFulfillmentRecord) Terminal() bool {
	switch r.Status {
	case OrderStatusCompleted, OrderStatusFulfilled, OrderStatusCanceled:
		return true
	default:
		return false
	}
}

// MatchDiscount is the promotional code entitling a creator's audience,
// created once per match via insert-if-absent.
type MatchDiscount struct {
	MatchID                string
	ShopDomain             string
	Code                   string
	ExternalPriceRuleID    string
	ExternalDiscountCodeID string
	CreatedAt              time.Time
}

type ShipmentStatus string

const (
	ShipmentStatusPending ShipmentStatus = "pending"
	ShipmentStatusShipped ShipmentStatus = "shipped"
)

// ManualShipment is the non-automated fulfillment path used when no
// commerce integration or catalog mapping exists.
type ManualShipment struct {
	ShipmentID string
	MatchID    string
	Reason     string
	Status     ShipmentStatus
	CreatedAt  time.Time
}
