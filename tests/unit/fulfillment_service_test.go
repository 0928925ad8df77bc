package unit

import (
	"context"
	"errors"
	"testing"

	fulfillmentservice "magnolia/contexts/match-fulfillment/fulfillment-service"
	fulfillmentcommands "magnolia/contexts/match-fulfillment/fulfillment-service/application/commands"
	"magnolia/contexts/match-fulfillment/fulfillment-service/domain/entities"
	domainerrors "magnolia/contexts/match-fulfillment/fulfillment-service/domain/errors"
	fulfillmentports "magnolia/contexts/match-fulfillment/fulfillment-service/ports"
	platformdirectory "magnolia/internal/platform/directory"
	"magnolia/internal/shared/directory"
)

type stubMatchReader struct {
	info fulfillmentports.MatchInfo
}

func (r stubMatchReader) GetMatchInfo(_ context.Context, matchID string) (fulfillmentports.MatchInfo, error) {
	if matchID != r.info.MatchID {
		return fulfillmentports.MatchInfo{}, domainerrors.ErrRecordNotFound
	}
	return r.info, nil
}

func acceptedMatchInfo() fulfillmentports.MatchInfo {
	return fulfillmentports.MatchInfo{
		MatchID:      "match-1",
		OfferID:      "offer-1",
		CreatorID:    "creator-1",
		CampaignCode: "NADIA10",
		Accepted:     true,
	}
}

func newFulfillmentModule(offer directory.Offer, withStore bool) fulfillmentservice.Module {
	dir := platformdirectory.NewMemoryStore()
	dir.SeedOffer(offer)
	if withStore {
		dir.SeedStore(directory.StoreConfig{
			BrandID:       "brand-1",
			ShopDomain:    "brand-one.example-shop.com",
			AccessToken:   "token",
			WebhookSecret: "secret",
		})
	}
	return fulfillmentservice.NewInMemoryModule(fulfillmentservice.Dependencies{
		Matches:   stubMatchReader{info: acceptedMatchInfo()},
		Directory: dir,
	})
}

func automaticOffer() directory.Offer {
	return directory.Offer{
		OfferID:         "offer-1",
		BrandID:         "brand-1",
		Title:           "Spring Seeding",
		FulfillmentMode: directory.FulfillmentModeAutomatic,
		ProductIDs:      []string{"prod-1"},
	}
}

func markFulfilledCommand(record entities.OrderFulfillmentRecord) fulfillmentcommands.MarkFulfilledCommand {
	return fulfillmentcommands.MarkFulfilledCommand{
		ShopDomain:      record.ShopDomain,
		ExternalOrderID: record.ExternalOrderID,
		TrackingNumber:  "TRACK-1",
		TrackingURL:     "https://carrier.example.com/TRACK-1",
	}
}

func TestRunCreatesDiscountAndSeedingOrder(t *testing.T) {
	ctx := context.Background()
	module := newFulfillmentModule(automaticOffer(), true)

	report, err := module.Runner.Run(ctx, "match-1")
	if err != nil {
		t.Fatalf("fulfillment run: %v", err)
	}
	if !report.DiscountCreated || !report.OrderCreated || report.ManualShipment {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(report.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", report.Errors)
	}

	discount, err := module.Store.Discounts().GetByMatch(ctx, "match-1")
	if err != nil {
		t.Fatalf("get discount: %v", err)
	}
	if discount.Code != "NADIA10" {
		t.Fatalf("discount code %q, want campaign code", discount.Code)
	}
	record, err := module.Store.GetByMatch(ctx, "match-1")
	if err != nil {
		t.Fatalf("get order record: %v", err)
	}
	if record.Status != entities.OrderStatusCompleted || record.ExternalOrderID == "" {
		t.Fatalf("unexpected order record: %+v", record)
	}
}

func TestRunSkipsAlreadyFulfilledSteps(t *testing.T) {
	ctx := context.Background()
	module := newFulfillmentModule(automaticOffer(), true)

	if _, err := module.Runner.Run(ctx, "match-1"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	report, err := module.Runner.Run(ctx, "match-1")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if report.DiscountCreated || report.OrderCreated {
		t.Fatalf("re-run must not recreate side effects: %+v", report)
	}
	if !report.DiscountSkipped || !report.OrderSkipped {
		t.Fatalf("expected skip flags on re-run: %+v", report)
	}
	if module.Gateway.DraftCalls != 1 {
		t.Fatalf("expected one draft order call, got %d", module.Gateway.DraftCalls)
	}
}

func TestRunRetriesOrderFromError(t *testing.T) {
	ctx := context.Background()
	module := newFulfillmentModule(automaticOffer(), true)
	module.Gateway.FailComplete = true

	report, err := module.Runner.Run(ctx, "match-1")
	if err != nil {
		t.Fatalf("failing run: %v", err)
	}
	if report.OrderCreated || len(report.Errors) == 0 {
		t.Fatalf("expected order failure in report: %+v", report)
	}
	record, err := module.Store.GetByMatch(ctx, "match-1")
	if err != nil {
		t.Fatalf("get order record: %v", err)
	}
	if record.Status != entities.OrderStatusError {
		t.Fatalf("record status %q, want error", record.Status)
	}

	module.Gateway.FailComplete = false
	report, err = module.Runner.Run(ctx, "match-1")
	if err != nil {
		t.Fatalf("retry run: %v", err)
	}
	if !report.OrderCreated {
		t.Fatalf("expected retry to complete the order: %+v", report)
	}
	// The stale draft is abandoned and a fresh one opened.
	if module.Gateway.DraftCalls != 2 {
		t.Fatalf("expected two draft order calls, got %d", module.Gateway.DraftCalls)
	}
}

func TestRunFallsBackToManualShipmentWithoutStore(t *testing.T) {
	ctx := context.Background()
	module := newFulfillmentModule(automaticOffer(), false)

	report, err := module.Runner.Run(ctx, "match-1")
	if err != nil {
		t.Fatalf("fulfillment run: %v", err)
	}
	if !report.ManualShipment || report.OrderCreated {
		t.Fatalf("expected manual shipment path: %+v", report)
	}
	if !report.DiscountSkipped {
		t.Fatalf("discount provisioning needs a store: %+v", report)
	}
	shipment, err := module.Store.Shipments().GetByMatch(ctx, "match-1")
	if err != nil {
		t.Fatalf("get manual shipment: %v", err)
	}
	if shipment.Status != entities.ShipmentStatusPending {
		t.Fatalf("shipment status %q, want pending", shipment.Status)
	}
}

func TestRunManualModeOfferSkipsOrderPlacement(t *testing.T) {
	ctx := context.Background()
	offer := automaticOffer()
	offer.FulfillmentMode = directory.FulfillmentModeManual
	module := newFulfillmentModule(offer, true)

	report, err := module.Runner.Run(ctx, "match-1")
	if err != nil {
		t.Fatalf("fulfillment run: %v", err)
	}
	if !report.ManualShipment || !report.OrderSkipped {
		t.Fatalf("expected manual shipment for manual offer: %+v", report)
	}
	// The discount still provisions: the store integration exists.
	if !report.DiscountCreated {
		t.Fatalf("expected discount provisioning: %+v", report)
	}
	if module.Gateway.DraftCalls != 0 {
		t.Fatalf("manual offers must not open draft orders, got %d calls", module.Gateway.DraftCalls)
	}
}

func TestRunSurfacesMissingProductMapping(t *testing.T) {
	ctx := context.Background()
	offer := automaticOffer()
	offer.ProductIDs = nil
	module := newFulfillmentModule(offer, true)

	report, err := module.Runner.Run(ctx, "match-1")
	if err != nil {
		t.Fatalf("fulfillment run: %v", err)
	}
	if !report.ManualShipment {
		t.Fatalf("expected manual fallback without products: %+v", report)
	}
	if len(report.Errors) == 0 {
		t.Fatalf("missing product mapping should surface as an error: %+v", report)
	}
}

func TestRunRejectsUnacceptedMatch(t *testing.T) {
	dir := platformdirectory.NewMemoryStore()
	dir.SeedOffer(automaticOffer())
	info := acceptedMatchInfo()
	info.Accepted = false
	module := fulfillmentservice.NewInMemoryModule(fulfillmentservice.Dependencies{
		Matches:   stubMatchReader{info: info},
		Directory: dir,
	})

	_, err := module.Runner.Run(context.Background(), "match-1")
	if !errors.Is(err, domainerrors.ErrMatchNotAccepted) {
		t.Fatalf("expected ErrMatchNotAccepted, got %v", err)
	}
}

func TestMarkFulfilledIsMonotonic(t *testing.T) {
	ctx := context.Background()
	module := newFulfillmentModule(automaticOffer(), true)
	if _, err := module.Runner.Run(ctx, "match-1"); err != nil {
		t.Fatalf("fulfillment run: %v", err)
	}
	record, err := module.Store.GetByMatch(ctx, "match-1")
	if err != nil {
		t.Fatalf("get order record: %v", err)
	}

	result, err := module.MarkFulfilled.Execute(ctx, markFulfilledCommand(record))
	if err != nil {
		t.Fatalf("mark fulfilled: %v", err)
	}
	if !result.Updated || result.MatchID != "match-1" {
		t.Fatalf("unexpected mark result: %+v", result)
	}

	replay, err := module.MarkFulfilled.Execute(ctx, markFulfilledCommand(record))
	if err != nil {
		t.Fatalf("replayed mark fulfilled: %v", err)
	}
	if replay.Updated {
		t.Fatalf("replay must not update an already fulfilled record")
	}

	report, err := module.Reconciler.RunOnce(ctx)
	if err != nil {
		t.Fatalf("reconciler run: %v", err)
	}
	if report.Failed != 0 {
		t.Fatalf("fulfilled record must not reconcile as failed: %+v", report)
	}
}
