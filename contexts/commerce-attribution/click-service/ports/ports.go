package ports

import (
	"context"
	"time"

	"magnolia/contexts/commerce-attribution/click-service/domain/entities"
	"magnolia/internal/shared/directory"
)

type ClickRepository interface {
	Append(ctx context.Context, click entities.LinkClick) error
}

// ClickMatch is the slice of a match the resolver needs.
type ClickMatch struct {
	MatchID      string
	OfferID      string
	CampaignCode string
}

type MatchReader interface {
	GetByCode(ctx context.Context, campaignCode string) (ClickMatch, error)
}

type DirectoryReader interface {
	GetOffer(ctx context.Context, offerID string) (directory.Offer, error)
	GetBrand(ctx context.Context, brandID string) (directory.Brand, error)
	StoreByBrand(ctx context.Context, brandID string) (directory.StoreConfig, error)
}

// ProductLinks resolves catalog deep links through the commerce gateway.
type ProductLinks interface {
	ProductURL(ctx context.Context, store directory.StoreConfig, productID string) (string, error)
}

// RateLimiter gates click recording per caller IP before any write.
type RateLimiter interface {
	Allow(ip string) bool
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
