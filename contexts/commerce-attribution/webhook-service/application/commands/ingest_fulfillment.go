package commands

import (
	"context"
	"errors"
	"log/slog"

	application "magnolia/contexts/commerce-attribution/webhook-service/application"
	domainerrors "magnolia/contexts/commerce-attribution/webhook-service/domain/errors"
	"magnolia/contexts/commerce-attribution/webhook-service/ports"
)

type IngestFulfillmentCommand struct {
	ShopDomain      string
	ExternalOrderID string
	TrackingNumber  string
	TrackingURL     string
}

// IngestFulfillmentUseCase reacts to the platform shipping a seeding order:
// the order record moves to fulfilled, the content deadline restarts from
// the shipment date, and the creator hears about it.
type IngestFulfillmentUseCase struct {
	Fulfillment     ports.FulfillmentMarker
	Rescheduler     ports.DeliverableRescheduler
	Matches         ports.MatchReader
	Directory       ports.DirectoryReader
	Notifier        ports.Notifier
	EnabledChannels []string
	Logger          *slog.Logger
}

func (uc IngestFulfillmentUseCase) Execute(ctx context.Context, cmd IngestFulfillmentCommand) (IngestResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	matchID, updated, err := uc.Fulfillment.MarkFulfilled(
		ctx,
		cmd.ShopDomain,
		cmd.ExternalOrderID,
		cmd.TrackingNumber,
		cmd.TrackingURL,
	)
	if err != nil {
		if errors.Is(err, domainerrors.ErrOrderNotFound) {
			return IngestResult{Attributed: false}, nil
		}
		return IngestResult{}, err
	}
	if !updated {
		// Redelivery or out-of-band cancelation; the record is already past
		// completed.
		return IngestResult{Attributed: true, Deduped: true, MatchID: matchID}, nil
	}

	if uc.Rescheduler != nil {
		if err := uc.Rescheduler.RescheduleFromFulfillment(ctx, matchID); err != nil {
			logger.Warn("deliverable reschedule failed",
				"event", "deliverable_reschedule_failed",
				"module", "commerce-attribution/webhook-service",
				"layer", "application",
				"match_id", matchID,
				"error", err.Error(),
			)
		}
	}
	if uc.Notifier != nil {
		uc.notifyShipped(ctx, matchID, cmd)
	}

	logger.Info("fulfillment webhook ingested",
		"event", "order_shipped",
		"module", "commerce-attribution/webhook-service",
		"layer", "application",
		"match_id", matchID,
		"shop_domain", cmd.ShopDomain,
	)
	return IngestResult{Attributed: true, MatchID: matchID}, nil
}

func (uc IngestFulfillmentUseCase) notifyShipped(ctx context.Context, matchID string, cmd IngestFulfillmentCommand) {
	logger := application.ResolveLogger(uc.Logger)

	match, err := uc.Matches.GetByID(ctx, matchID)
	if err != nil {
		logger.Warn("shipment notification skipped",
			"event", "order_shipped_notify_skipped",
			"module", "commerce-attribution/webhook-service",
			"layer", "application",
			"match_id", matchID,
			"error", err.Error(),
		)
		return
	}
	creator, err := uc.Directory.GetCreator(ctx, match.CreatorID)
	if err != nil {
		logger.Warn("shipment notification skipped",
			"event", "order_shipped_notify_skipped",
			"module", "commerce-attribution/webhook-service",
			"layer", "application",
			"match_id", matchID,
			"error", err.Error(),
		)
		return
	}

	payload := map[string]any{
		"match_id":        matchID,
		"tracking_number": cmd.TrackingNumber,
		"tracking_url":    cmd.TrackingURL,
		"creator_name":    creator.Name,
	}
	for _, channel := range uc.EnabledChannels {
		to := creator.AddressFor(channel)
		if to == "" {
			continue
		}
		if err := uc.Notifier.Enqueue(ctx, channel, to, "order_shipped", payload); err != nil {
			logger.Warn("shipment notification enqueue failed",
				"event", "order_shipped_notify_failed",
				"module", "commerce-attribution/webhook-service",
				"layer", "application",
				"match_id", matchID,
				"channel", channel,
				"error", err.Error(),
			)
		}
	}
}
