package ports

import (
	"context"
	"time"

	"magnolia/contexts/commerce-attribution/webhook-service/domain/entities"
	"magnolia/internal/shared/directory"
)

type OrderRepository interface {
	// InsertIfAbsent reports whether this delivery wrote the row; false
	// means the webhook was redelivered.
	InsertIfAbsent(ctx context.Context, order entities.AttributedOrder) (bool, error)
	GetByExternalOrder(ctx context.Context, shopDomain string, externalOrderID string) (entities.AttributedOrder, error)
}

type RefundRepository interface {
	InsertIfAbsent(ctx context.Context, refund entities.AttributedRefund) (bool, error)
}

// MatchRef is the slice of a match webhook ingestion needs.
type MatchRef struct {
	MatchID   string
	CreatorID string
}

type MatchReader interface {
	GetByCode(ctx context.Context, campaignCode string) (MatchRef, error)
	GetByID(ctx context.Context, matchID string) (MatchRef, error)
}

// FulfillmentMarker advances the seeding order to fulfilled when the
// platform reports shipment.
type FulfillmentMarker interface {
	MarkFulfilled(ctx context.Context, shopDomain string, externalOrderID string, trackingNumber string, trackingURL string) (matchID string, updated bool, err error)
}

// DeliverableRescheduler recomputes the content deadline after shipment.
type DeliverableRescheduler interface {
	RescheduleFromFulfillment(ctx context.Context, matchID string) error
}

type Notifier interface {
	Enqueue(ctx context.Context, channel string, to string, messageType string, payload map[string]any) error
}

type DirectoryReader interface {
	StoreByDomain(ctx context.Context, shopDomain string) (directory.StoreConfig, error)
	GetCreator(ctx context.Context, creatorID string) (directory.Creator, error)
}

type SubscriptionWriter interface {
	UpdateSubscription(ctx context.Context, brandID string, status string, plan string, updatedAt time.Time) error
}

type Clock interface {
	Now() time.Time
}
