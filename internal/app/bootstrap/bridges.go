package bootstrap

import (
	"context"
	"errors"
	"time"

	attributionerrors "magnolia/contexts/commerce-attribution/attribution-service/domain/errors"
	attributionports "magnolia/contexts/commerce-attribution/attribution-service/ports"
	clickerrors "magnolia/contexts/commerce-attribution/click-service/domain/errors"
	clickports "magnolia/contexts/commerce-attribution/click-service/ports"
	webhookerrors "magnolia/contexts/commerce-attribution/webhook-service/domain/errors"
	webhookports "magnolia/contexts/commerce-attribution/webhook-service/ports"
	fulfillmentcommands "magnolia/contexts/match-fulfillment/fulfillment-service/application/commands"
	fulfillmenterrors "magnolia/contexts/match-fulfillment/fulfillment-service/domain/errors"
	fulfillmentports "magnolia/contexts/match-fulfillment/fulfillment-service/ports"
	matchcommands "magnolia/contexts/match-fulfillment/match-service/application/commands"
	matcherrors "magnolia/contexts/match-fulfillment/match-service/domain/errors"
	matchports "magnolia/contexts/match-fulfillment/match-service/ports"
	notificationcommands "magnolia/contexts/operations/notification-service/application/commands"
)

// Cross-module bridges. Each module declares the narrow port it needs; the
// composition root adapts a sibling module's surface to it, translating
// sentinels so no module imports another's error set.

// FulfillmentRunnerBridge lets match approval trigger the discount/order
// runner without a direct module dependency.
type FulfillmentRunnerBridge struct {
	Runner fulfillmentcommands.RunFulfillmentUseCase
}

func (b FulfillmentRunnerBridge) Run(ctx context.Context, matchID string) (matchports.FulfillmentReport, error) {
	report, err := b.Runner.Run(ctx, matchID)
	if err != nil {
		return matchports.FulfillmentReport{}, err
	}
	return matchports.FulfillmentReport{
		DiscountCreated: report.DiscountCreated,
		DiscountSkipped: report.DiscountSkipped,
		OrderCreated:    report.OrderCreated,
		OrderSkipped:    report.OrderSkipped,
		ManualShipment:  report.ManualShipment,
		Errors:          report.Errors,
	}, nil
}

// FulfillmentMatchBridge feeds the fulfillment runner its match slice.
type FulfillmentMatchBridge struct {
	Matches matchports.MatchRepository
}

func (b FulfillmentMatchBridge) GetMatchInfo(ctx context.Context, matchID string) (fulfillmentports.MatchInfo, error) {
	match, err := b.Matches.GetMatch(ctx, matchID)
	if err != nil {
		return fulfillmentports.MatchInfo{}, err
	}
	return fulfillmentports.MatchInfo{
		MatchID:      match.MatchID,
		OfferID:      match.OfferID,
		CreatorID:    match.CreatorID,
		CampaignCode: match.CampaignCode,
		Accepted:     match.IsAccepted(),
	}, nil
}

// WebhookMatchBridge resolves discount codes and match ids for ingestion.
type WebhookMatchBridge struct {
	Matches matchports.MatchRepository
}

func (b WebhookMatchBridge) GetByCode(ctx context.Context, campaignCode string) (webhookports.MatchRef, error) {
	match, err := b.Matches.GetMatchByCode(ctx, campaignCode)
	if err != nil {
		if errors.Is(err, matcherrors.ErrMatchNotFound) {
			return webhookports.MatchRef{}, webhookerrors.ErrMatchNotFound
		}
		return webhookports.MatchRef{}, err
	}
	return webhookports.MatchRef{MatchID: match.MatchID, CreatorID: match.CreatorID}, nil
}

func (b WebhookMatchBridge) GetByID(ctx context.Context, matchID string) (webhookports.MatchRef, error) {
	match, err := b.Matches.GetMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, matcherrors.ErrMatchNotFound) {
			return webhookports.MatchRef{}, webhookerrors.ErrMatchNotFound
		}
		return webhookports.MatchRef{}, err
	}
	return webhookports.MatchRef{MatchID: match.MatchID, CreatorID: match.CreatorID}, nil
}

// FulfillmentMarkerBridge lets the fulfillments webhook advance the order
// record. A missing record reads as an order this pipeline never created.
type FulfillmentMarkerBridge struct {
	Fulfilled fulfillmentcommands.MarkFulfilledUseCase
}

func (b FulfillmentMarkerBridge) MarkFulfilled(
	ctx context.Context,
	shopDomain string,
	externalOrderID string,
	trackingNumber string,
	trackingURL string,
) (string, bool, error) {
	result, err := b.Fulfilled.Execute(ctx, fulfillmentcommands.MarkFulfilledCommand{
		ShopDomain:      shopDomain,
		ExternalOrderID: externalOrderID,
		TrackingNumber:  trackingNumber,
		TrackingURL:     trackingURL,
	})
	if err != nil {
		if errors.Is(err, fulfillmenterrors.ErrRecordNotFound) {
			return "", false, webhookerrors.ErrOrderNotFound
		}
		return "", false, err
	}
	return result.MatchID, result.Updated, nil
}

// RescheduleBridge restarts the posting clock from shipment time.
type RescheduleBridge struct {
	Reschedule matchcommands.RescheduleDeliverableUseCase
}

func (b RescheduleBridge) RescheduleFromFulfillment(ctx context.Context, matchID string) error {
	return b.Reschedule.Execute(ctx, matchcommands.RescheduleDeliverableCommand{
		MatchID:     matchID,
		FulfilledAt: time.Now().UTC(),
	})
}

// ClickMatchBridge resolves campaign codes for the redirect path.
type ClickMatchBridge struct {
	Matches matchports.MatchRepository
}

func (b ClickMatchBridge) GetByCode(ctx context.Context, campaignCode string) (clickports.ClickMatch, error) {
	match, err := b.Matches.GetMatchByCode(ctx, campaignCode)
	if err != nil {
		if errors.Is(err, matcherrors.ErrMatchNotFound) {
			return clickports.ClickMatch{}, clickerrors.ErrMatchNotFound
		}
		return clickports.ClickMatch{}, err
	}
	return clickports.ClickMatch{
		MatchID:      match.MatchID,
		OfferID:      match.OfferID,
		CampaignCode: match.CampaignCode,
	}, nil
}

// AttributionMatchBridge supplies the aggregator's match slices.
type AttributionMatchBridge struct {
	Matches matchports.MatchRepository
}

func (b AttributionMatchBridge) GetByID(ctx context.Context, matchID string) (attributionports.AttributionMatch, error) {
	match, err := b.Matches.GetMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, matcherrors.ErrMatchNotFound) {
			return attributionports.AttributionMatch{}, attributionerrors.ErrMatchNotFound
		}
		return attributionports.AttributionMatch{}, err
	}
	return toAttributionMatch(match.MatchID, match.OfferID, match.CreatorID), nil
}

func (b AttributionMatchBridge) ListByCreator(ctx context.Context, creatorID string) ([]attributionports.AttributionMatch, error) {
	matches, err := b.Matches.ListMatchesByCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	items := make([]attributionports.AttributionMatch, 0, len(matches))
	for _, match := range matches {
		items = append(items, toAttributionMatch(match.MatchID, match.OfferID, match.CreatorID))
	}
	return items, nil
}

func (b AttributionMatchBridge) ListByOffer(ctx context.Context, offerID string) ([]attributionports.AttributionMatch, error) {
	matches, err := b.Matches.ListMatchesByOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	items := make([]attributionports.AttributionMatch, 0, len(matches))
	for _, match := range matches {
		items = append(items, toAttributionMatch(match.MatchID, match.OfferID, match.CreatorID))
	}
	return items, nil
}

func toAttributionMatch(matchID string, offerID string, creatorID string) attributionports.AttributionMatch {
	return attributionports.AttributionMatch{MatchID: matchID, OfferID: offerID, CreatorID: creatorID}
}

// NotifierBridge adapts the notification enqueue command to the Notifier
// port every producing module declares.
type NotifierBridge struct {
	Notifications notificationcommands.EnqueueUseCase
}

func (b NotifierBridge) Enqueue(ctx context.Context, channel string, to string, messageType string, payload map[string]any) error {
	return b.Notifications.Execute(ctx, notificationcommands.EnqueueCommand{
		Channel:     channel,
		To:          to,
		MessageType: messageType,
		Payload:     payload,
	})
}
