package commands

import (
	"context"
	"log/slog"

	application "magnolia/contexts/match-fulfillment/fulfillment-service/application"
	"magnolia/contexts/match-fulfillment/fulfillment-service/ports"
)

type MarkFulfilledCommand struct {
	ShopDomain      string
	ExternalOrderID string
	TrackingNumber  string
	TrackingURL     string
}

type MarkFulfilledResult struct {
	MatchID string
	// Updated is false when a replayed webhook hits an already fulfilled
	// record.
	Updated bool
}

// MarkFulfilledUseCase advances a completed seeding order to fulfilled when
// the platform reports shipment. The transition is monotonic: terminal
// records are never moved back.
type MarkFulfilledUseCase struct {
	Records ports.RecordRepository
	Clock   ports.Clock
	Logger  *slog.Logger
}

func (uc MarkFulfilledUseCase) Execute(ctx context.Context, cmd MarkFulfilledCommand) (MarkFulfilledResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	record, err := uc.Records.GetByExternalOrder(ctx, cmd.ShopDomain, cmd.ExternalOrderID)
	if err != nil {
		return MarkFulfilledResult{}, err
	}
	updated, err := uc.Records.SetFulfilled(ctx, record.RecordID, cmd.TrackingNumber, cmd.TrackingURL, uc.Clock.Now().UTC())
	if err != nil {
		return MarkFulfilledResult{}, err
	}

	logger.Info("seeding order fulfilled",
		"event", "order_fulfilled",
		"module", "match-fulfillment/fulfillment-service",
		"layer", "application",
		"match_id", record.MatchID,
		"shop_domain", cmd.ShopDomain,
		"updated", updated,
	)
	return MarkFulfilledResult{MatchID: record.MatchID, Updated: updated}, nil
}
