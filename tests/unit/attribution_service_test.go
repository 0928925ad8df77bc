package unit

import (
	"context"
	"errors"
	"fmt"
	"testing"

	attributionservice "magnolia/contexts/commerce-attribution/attribution-service"
	domainerrors "magnolia/contexts/commerce-attribution/attribution-service/domain/errors"
	attributionports "magnolia/contexts/commerce-attribution/attribution-service/ports"
	httptransport "magnolia/contexts/commerce-attribution/attribution-service/transport/http"
	platformdirectory "magnolia/internal/platform/directory"
	"magnolia/internal/shared/directory"
)

func newAttributionModule(seedCostCents int64) attributionservice.Module {
	dir := platformdirectory.NewMemoryStore()
	dir.SeedOffer(directory.Offer{
		OfferID:       "offer-1",
		BrandID:       "brand-1",
		Title:         "Spring Seeding",
		SeedCostCents: seedCostCents,
		Currency:      "EUR",
	})
	module := attributionservice.NewInMemoryModule(attributionservice.Dependencies{Directory: dir})
	module.Store.SeedMatch(attributionports.AttributionMatch{
		MatchID:   "match-1",
		OfferID:   "offer-1",
		CreatorID: "creator-1",
	})
	return module
}

func TestCreatorRollupComputesNetRevenueInCents(t *testing.T) {
	ctx := context.Background()
	module := newAttributionModule(0)
	module.Store.SeedClicks("match-1", 42)
	module.Store.SeedOrder("match-1", "cust-1", 12000, "EUR")
	module.Store.SeedRefund("match-1", 2000)
	module.Store.SeedVerifiedDeliverable("match-1")

	resp, err := module.Handler.CreatorAttributionHandler(ctx, "creator-1")
	if err != nil {
		t.Fatalf("creator attribution: %v", err)
	}
	if len(resp.Matches) != 1 {
		t.Fatalf("expected one match rollup, got %d", len(resp.Matches))
	}
	rollup := resp.Matches[0]
	if rollup.OrderRevenueCents != 12000 || rollup.RefundTotalCents != 2000 || rollup.NetRevenueCents != 10000 {
		t.Fatalf("unexpected rollup: %+v", rollup)
	}
	if rollup.Clicks != 42 || rollup.VerifiedDeliverables != 1 {
		t.Fatalf("unexpected counters: %+v", rollup)
	}
	if resp.Totals.NetRevenueCents != 10000 {
		t.Fatalf("totals net %d, want 10000", resp.Totals.NetRevenueCents)
	}
}

func TestRollupSumsExactlyAcrossManySmallOrders(t *testing.T) {
	ctx := context.Background()
	module := newAttributionModule(0)
	for i := 0; i < 10000; i++ {
		module.Store.SeedOrder("match-1", fmt.Sprintf("cust-%d", i), 3, "EUR")
	}

	resp, err := module.Handler.CreatorAttributionHandler(ctx, "creator-1")
	if err != nil {
		t.Fatalf("creator attribution: %v", err)
	}
	if resp.Totals.OrderRevenueCents != 30000 || resp.Totals.OrderCount != 10000 {
		t.Fatalf("integer cents must sum without drift: %+v", resp.Totals)
	}
}

func TestROIIsNilOnZeroSeedCost(t *testing.T) {
	ctx := context.Background()
	module := newAttributionModule(0)
	module.Store.SeedOrder("match-1", "cust-1", 12000, "EUR")

	resp, err := module.Handler.CreatorAttributionHandler(ctx, "creator-1")
	if err != nil {
		t.Fatalf("creator attribution: %v", err)
	}
	if resp.Totals.ROIPercent != nil {
		t.Fatalf("roi must be nil without seed cost, got %v", *resp.Totals.ROIPercent)
	}
}

func TestROIComputedAgainstSeedCost(t *testing.T) {
	ctx := context.Background()
	module := newAttributionModule(5000)
	module.Store.SeedOrder("match-1", "cust-1", 12000, "EUR")
	module.Store.SeedRefund("match-1", 2000)

	resp, err := module.Handler.CreatorAttributionHandler(ctx, "creator-1")
	if err != nil {
		t.Fatalf("creator attribution: %v", err)
	}
	if resp.Totals.SeedCostCents != 5000 {
		t.Fatalf("seed cost %d, want 5000", resp.Totals.SeedCostCents)
	}
	if resp.Totals.ROIPercent == nil {
		t.Fatalf("expected roi with non-zero seed cost")
	}
	// net 10000 against seed 5000: (10000-5000)/5000 * 100
	if *resp.Totals.ROIPercent != 100 {
		t.Fatalf("roi %v, want 100", *resp.Totals.ROIPercent)
	}
}

func TestRepeatBuyersCountsDistinctCustomersWithTwoOrders(t *testing.T) {
	ctx := context.Background()
	module := newAttributionModule(0)
	module.Store.SeedOrder("match-1", "cust-1", 1000, "EUR")
	module.Store.SeedOrder("match-1", "cust-1", 1500, "EUR")
	module.Store.SeedOrder("match-1", "cust-1", 2000, "EUR")
	module.Store.SeedOrder("match-1", "cust-2", 1000, "EUR")

	resp, err := module.Handler.CreatorAttributionHandler(ctx, "creator-1")
	if err != nil {
		t.Fatalf("creator attribution: %v", err)
	}
	if resp.Totals.RepeatBuyers != 1 {
		t.Fatalf("repeat buyers %d, want 1", resp.Totals.RepeatBuyers)
	}
}

func TestRepeatBuyersNeverCombineOrdersAcrossCreators(t *testing.T) {
	ctx := context.Background()
	module := newAttributionModule(0)
	module.Store.SeedMatch(attributionports.AttributionMatch{
		MatchID:   "match-2",
		OfferID:   "offer-1",
		CreatorID: "creator-2",
	})
	// Same customer, one order through each creator's code.
	module.Store.SeedOrder("match-1", "cust-1", 1000, "EUR")
	module.Store.SeedOrder("match-2", "cust-1", 1500, "EUR")

	resp, err := module.Handler.BrandAttributionHandler(ctx, "brand-1")
	if err != nil {
		t.Fatalf("brand attribution: %v", err)
	}
	if got := resp.Offers[0].Totals.RepeatBuyers; got != 0 {
		t.Fatalf("repeat buyers %d, want 0: one order per creator is not repeat purchasing", got)
	}

	// A genuine second order through the same creator does count.
	module.Store.SeedOrder("match-1", "cust-1", 2000, "EUR")
	resp, err = module.Handler.BrandAttributionHandler(ctx, "brand-1")
	if err != nil {
		t.Fatalf("brand attribution: %v", err)
	}
	if got := resp.Offers[0].Totals.RepeatBuyers; got != 1 {
		t.Fatalf("repeat buyers %d, want 1", got)
	}
}

func TestBrandAttributionGroupsByOffer(t *testing.T) {
	ctx := context.Background()
	module := newAttributionModule(5000)
	module.Store.SeedOrder("match-1", "cust-1", 12000, "EUR")

	resp, err := module.Handler.BrandAttributionHandler(ctx, "brand-1")
	if err != nil {
		t.Fatalf("brand attribution: %v", err)
	}
	if len(resp.Offers) != 1 || resp.Offers[0].OfferID != "offer-1" {
		t.Fatalf("unexpected offers: %+v", resp.Offers)
	}
	if resp.Offers[0].Totals.OrderRevenueCents != 12000 {
		t.Fatalf("unexpected offer totals: %+v", resp.Offers[0].Totals)
	}
}

func TestRecordRedemptionStoresIntegerCents(t *testing.T) {
	ctx := context.Background()
	module := newAttributionModule(0)

	resp, err := module.Handler.RecordRedemptionHandler(ctx, "brand-1", "match-1", httptransport.RecordRedemptionRequest{
		Channel:  "in_store",
		Amount:   "49.90",
		Currency: "eur",
	})
	if err != nil {
		t.Fatalf("record redemption: %v", err)
	}
	if !resp.OK || resp.RedemptionID == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	redemptions := module.Store.Redemptions("match-1")
	if len(redemptions) != 1 {
		t.Fatalf("expected one redemption, got %d", len(redemptions))
	}
	if redemptions[0].AmountCents != 4990 || redemptions[0].Currency != "EUR" {
		t.Fatalf("unexpected redemption: %+v", redemptions[0])
	}
}

func TestRecordRedemptionValidation(t *testing.T) {
	ctx := context.Background()
	module := newAttributionModule(0)

	_, err := module.Handler.RecordRedemptionHandler(ctx, "brand-2", "match-1", httptransport.RecordRedemptionRequest{
		Channel: "in_store", Amount: "10.00", Currency: "EUR",
	})
	if !errors.Is(err, domainerrors.ErrNotOfferOwner) {
		t.Fatalf("expected ErrNotOfferOwner, got %v", err)
	}

	_, err = module.Handler.RecordRedemptionHandler(ctx, "brand-1", "match-1", httptransport.RecordRedemptionRequest{
		Channel: "in_store", Amount: "-5.00", Currency: "EUR",
	})
	if !errors.Is(err, domainerrors.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	_, err = module.Handler.RecordRedemptionHandler(ctx, "brand-1", "match-1", httptransport.RecordRedemptionRequest{
		Channel: "  ", Amount: "10.00", Currency: "EUR",
	})
	if !errors.Is(err, domainerrors.ErrInvalidChannel) {
		t.Fatalf("expected ErrInvalidChannel, got %v", err)
	}
}
