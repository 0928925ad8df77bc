package ports

import (
	"context"
	"time"

	"magnolia/contexts/commerce-attribution/attribution-service/domain/entities"
	"magnolia/internal/shared/directory"
)

// AttributionMatch is the slice of a match the aggregator joins on.
type AttributionMatch struct {
	MatchID   string
	OfferID   string
	CreatorID string
}

type MatchReader interface {
	GetByID(ctx context.Context, matchID string) (AttributionMatch, error)
	ListByCreator(ctx context.Context, creatorID string) ([]AttributionMatch, error)
	ListByOffer(ctx context.Context, offerID string) ([]AttributionMatch, error)
}

// MatchStats carries the raw per-match aggregates read from the source
// tables; derivation happens in the use case.
type MatchStats struct {
	Clicks                 int64
	OrderCount             int64
	OrderRevenueCents      int64
	RefundCount            int64
	RefundTotalCents       int64
	RedemptionCount        int64
	RedemptionRevenueCents int64
	VerifiedDeliverables   int64
	Currency               string
}

type StatsReader interface {
	StatsByMatch(ctx context.Context, matchIDs []string) (map[string]MatchStats, error)
	// RepeatBuyers counts distinct downstream customers with at least two
	// attributed orders across the given match set. Callers pass matches
	// belonging to a single creator; repeat purchasing is per creator, so
	// orders through different creators never combine.
	RepeatBuyers(ctx context.Context, matchIDs []string) (int64, error)
}

type RedemptionRepository interface {
	Insert(ctx context.Context, redemption entities.Redemption) error
}

type DirectoryReader interface {
	GetOffer(ctx context.Context, offerID string) (directory.Offer, error)
	ListOffersByBrand(ctx context.Context, brandID string) ([]directory.Offer, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
