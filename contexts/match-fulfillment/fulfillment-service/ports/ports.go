package ports

import (
	"context"
	"time"

	"magnolia/contexts/match-fulfillment/fulfillment-service/domain/entities"
	"magnolia/internal/shared/directory"
)

type RecordRepository interface {
	GetByMatch(ctx context.Context, matchID string) (entities.OrderFulfillmentRecord, error)
	GetByExternalOrder(ctx context.Context, shopDomain string, externalOrderID string) (entities.OrderFulfillmentRecord, error)
	// CreateIfAbsent inserts the pending record unless the match already has
	// one; it returns the row now stored for the match.
	CreateIfAbsent(ctx context.Context, record entities.OrderFulfillmentRecord) (entities.OrderFulfillmentRecord, error)
	// SetDraftCreated stamps the draft id and moves the record out of
	// pending/error. The guard keeps a concurrent run from regressing a
	// record that already completed.
	SetDraftCreated(ctx context.Context, recordID string, draftID string, at time.Time) (bool, error)
	SetCompleted(ctx context.Context, recordID string, externalOrderID string, at time.Time) (bool, error)
	// SetFulfilled is the shipment compare-and-swap: completed -> fulfilled.
	SetFulfilled(ctx context.Context, recordID string, trackingNumber string, trackingURL string, at time.Time) (bool, error)
	SetError(ctx context.Context, recordID string, message string, at time.Time) error
	ListRetryable(ctx context.Context, limit int) ([]entities.OrderFulfillmentRecord, error)
}

type DiscountRepository interface {
	GetByMatch(ctx context.Context, matchID string) (entities.MatchDiscount, error)
	// CreateIfAbsent reports whether this caller wrote the row.
	CreateIfAbsent(ctx context.Context, discount entities.MatchDiscount) (bool, error)
	// ListAcceptedMatchesMissingDiscount feeds the reconciliation sweep with
	// accepted matches that never got their code provisioned.
	ListAcceptedMatchesMissingDiscount(ctx context.Context, limit int) ([]string, error)
}

type ShipmentRepository interface {
	GetByMatch(ctx context.Context, matchID string) (entities.ManualShipment, error)
	CreateIfAbsent(ctx context.Context, shipment entities.ManualShipment) (bool, error)
}

// MatchInfo is the narrow slice of the match the runner needs.
type MatchInfo struct {
	MatchID      string
	OfferID      string
	CreatorID    string
	CampaignCode string
	Accepted     bool
}

type MatchReader interface {
	GetMatchInfo(ctx context.Context, matchID string) (MatchInfo, error)
}

type DraftOrderInput struct {
	MatchID    string
	CreatorID  string
	ProductIDs []string
	Note       string
}

// CommerceGateway wraps the brand's commerce platform admin API. Every call
// authenticates with the per-store access token.
type CommerceGateway interface {
	CreatePriceRule(ctx context.Context, store directory.StoreConfig, title string, code string) (string, error)
	CreateDiscountCode(ctx context.Context, store directory.StoreConfig, priceRuleID string, code string) (string, error)
	CreateDraftOrder(ctx context.Context, store directory.StoreConfig, draft DraftOrderInput) (string, error)
	// CompleteDraftOrder returns the external order id of the real order.
	CompleteDraftOrder(ctx context.Context, store directory.StoreConfig, draftID string) (string, error)
	ProductURL(ctx context.Context, store directory.StoreConfig, productID string) (string, error)
}

type DirectoryReader interface {
	GetOffer(ctx context.Context, offerID string) (directory.Offer, error)
	StoreByBrand(ctx context.Context, brandID string) (directory.StoreConfig, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
