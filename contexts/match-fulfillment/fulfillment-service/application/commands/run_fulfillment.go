package commands

import (
	"context"
	"errors"
	"log/slog"

	application "magnolia/contexts/match-fulfillment/fulfillment-service/application"
	"magnolia/contexts/match-fulfillment/fulfillment-service/domain/entities"
	domainerrors "magnolia/contexts/match-fulfillment/fulfillment-service/domain/errors"
	"magnolia/contexts/match-fulfillment/fulfillment-service/ports"
	"magnolia/internal/shared/directory"
)

// RunReport is the per-sub-step outcome of one fulfillment pass. Created
// flags mean this run performed the side effect; skipped means a prior run
// (or a concurrent one) already had.
type RunReport struct {
	DiscountCreated bool
	DiscountSkipped bool
	OrderCreated    bool
	OrderSkipped    bool
	ManualShipment  bool
	Errors          []string
}

// RunFulfillmentUseCase is the single code path for discount provisioning
// and seeding-order placement. Approval and the reconciliation cron both
// call it; every sub-step is individually guarded so re-running is safe.
type RunFulfillmentUseCase struct {
	Records   ports.RecordRepository
	Discounts ports.DiscountRepository
	Shipments ports.ShipmentRepository
	Gateway   ports.CommerceGateway
	Matches   ports.MatchReader
	Directory ports.DirectoryReader
	Clock     ports.Clock
	IDs       ports.IDGenerator
	Logger    *slog.Logger
}

func (uc RunFulfillmentUseCase) Run(ctx context.Context, matchID string) (RunReport, error) {
	logger := application.ResolveLogger(uc.Logger)

	info, err := uc.Matches.GetMatchInfo(ctx, matchID)
	if err != nil {
		return RunReport{}, err
	}
	if !info.Accepted {
		return RunReport{}, domainerrors.ErrMatchNotAccepted
	}
	offer, err := uc.Directory.GetOffer(ctx, info.OfferID)
	if err != nil {
		return RunReport{}, err
	}

	store, err := uc.Directory.StoreByBrand(ctx, offer.BrandID)
	hasStore := err == nil
	if err != nil && !errors.Is(err, directory.ErrStoreNotFound) {
		return RunReport{}, err
	}

	manualReason := manualFulfillmentReason(offer, hasStore)

	report := RunReport{}
	uc.ensureDiscount(ctx, info, offer, store, hasStore, &report)
	if manualReason != "" {
		uc.ensureManualShipment(ctx, info, manualReason, &report)
	} else {
		uc.ensureOrder(ctx, info, offer, store, &report)
	}

	logger.Info("fulfillment pass finished",
		"event", "fulfillment_run",
		"module", "match-fulfillment/fulfillment-service",
		"layer", "application",
		"match_id", info.MatchID,
		"discount_created", report.DiscountCreated,
		"order_created", report.OrderCreated,
		"manual_shipment", report.ManualShipment,
		"error_count", len(report.Errors),
	)
	return report, nil
}

func manualFulfillmentReason(offer directory.Offer, hasStore bool) string {
	switch {
	case offer.FulfillmentMode == directory.FulfillmentModeManual:
		return "offer configured for manual fulfillment"
	case !hasStore:
		return "brand has no commerce integration"
	case len(offer.ProductIDs) == 0:
		return "offer has no catalog product mapping"
	default:
		return ""
	}
}

func (uc RunFulfillmentUseCase) ensureDiscount(
	ctx context.Context,
	info ports.MatchInfo,
	offer directory.Offer,
	store directory.StoreConfig,
	hasStore bool,
	report *RunReport,
) {
	if _, err := uc.Discounts.GetByMatch(ctx, info.MatchID); err == nil {
		report.DiscountSkipped = true
		return
	} else if !errors.Is(err, domainerrors.ErrRecordNotFound) {
		report.Errors = append(report.Errors, "discount: "+err.Error())
		return
	}
	if !hasStore {
		// Nothing to provision the code on; the campaign code still works
		// for click tracking.
		report.DiscountSkipped = true
		return
	}
	if len(offer.ProductIDs) == 0 {
		// Configuration error, surfaced loudly instead of retried blindly.
		report.Errors = append(report.Errors, "discount: "+domainerrors.ErrNoEligibleProducts.Error())
		return
	}

	priceRuleID, err := uc.Gateway.CreatePriceRule(ctx, store, offer.Title, info.CampaignCode)
	if err != nil {
		report.Errors = append(report.Errors, "discount: "+err.Error())
		return
	}
	codeID, err := uc.Gateway.CreateDiscountCode(ctx, store, priceRuleID, info.CampaignCode)
	if err != nil {
		report.Errors = append(report.Errors, "discount: "+err.Error())
		return
	}
	wrote, err := uc.Discounts.CreateIfAbsent(ctx, entities.MatchDiscount{
		MatchID:                info.MatchID,
		ShopDomain:             store.ShopDomain,
		Code:                   info.CampaignCode,
		ExternalPriceRuleID:    priceRuleID,
		ExternalDiscountCodeID: codeID,
		CreatedAt:              uc.Clock.Now().UTC(),
	})
	if err != nil {
		report.Errors = append(report.Errors, "discount: "+err.Error())
		return
	}
	// Losing the insert race leaves an orphan price rule on the platform;
	// tolerated, the stored row stays the source of truth.
	report.DiscountCreated = wrote
	report.DiscountSkipped = !wrote
}

func (uc RunFulfillmentUseCase) ensureManualShipment(
	ctx context.Context,
	info ports.MatchInfo,
	reason string,
	report *RunReport,
) {
	report.ManualShipment = true
	report.OrderSkipped = true

	shipmentID, err := uc.IDs.NewID(ctx)
	if err != nil {
		report.Errors = append(report.Errors, "shipment: "+err.Error())
		return
	}
	if _, err := uc.Shipments.CreateIfAbsent(ctx, entities.ManualShipment{
		ShipmentID: shipmentID,
		MatchID:    info.MatchID,
		Reason:     reason,
		Status:     entities.ShipmentStatusPending,
		CreatedAt:  uc.Clock.Now().UTC(),
	}); err != nil {
		report.Errors = append(report.Errors, "shipment: "+err.Error())
	}
}

func (uc RunFulfillmentUseCase) ensureOrder(
	ctx context.Context,
	info ports.MatchInfo,
	offer directory.Offer,
	store directory.StoreConfig,
	report *RunReport,
) {
	now := uc.Clock.Now().UTC()

	recordID, err := uc.IDs.NewID(ctx)
	if err != nil {
		report.Errors = append(report.Errors, "order: "+err.Error())
		return
	}
	record, err := uc.Records.CreateIfAbsent(ctx, entities.OrderFulfillmentRecord{
		RecordID:   recordID,
		MatchID:    info.MatchID,
		ShopDomain: store.ShopDomain,
		Status:     entities.OrderStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		report.Errors = append(report.Errors, "order: "+err.Error())
		return
	}
	if record.Terminal() {
		report.OrderSkipped = true
		return
	}

	draftID := record.ExternalDraftID
	if record.Status == entities.OrderStatusPending || record.Status == entities.OrderStatusError {
		// A record in error re-opens a fresh draft; the prior draft id may
		// be stale on the platform side.
		newDraft, err := uc.Gateway.CreateDraftOrder(ctx, store, ports.DraftOrderInput{
			MatchID:    info.MatchID,
			CreatorID:  info.CreatorID,
			ProductIDs: offer.ProductIDs,
			Note:       "Seeding order for campaign " + info.CampaignCode,
		})
		if err != nil {
			uc.recordOrderError(ctx, record.RecordID, "create draft order: "+err.Error(), report)
			return
		}
		swapped, err := uc.Records.SetDraftCreated(ctx, record.RecordID, newDraft, uc.Clock.Now().UTC())
		if err != nil {
			report.Errors = append(report.Errors, "order: "+err.Error())
			return
		}
		if !swapped {
			report.OrderSkipped = true
			return
		}
		draftID = newDraft
	}

	orderID, err := uc.Gateway.CompleteDraftOrder(ctx, store, draftID)
	if err != nil {
		uc.recordOrderError(ctx, record.RecordID, "complete draft order: "+err.Error(), report)
		return
	}
	swapped, err := uc.Records.SetCompleted(ctx, record.RecordID, orderID, uc.Clock.Now().UTC())
	if err != nil {
		report.Errors = append(report.Errors, "order: "+err.Error())
		return
	}
	report.OrderCreated = swapped
	report.OrderSkipped = !swapped
}

func (uc RunFulfillmentUseCase) recordOrderError(ctx context.Context, recordID string, message string, report *RunReport) {
	report.Errors = append(report.Errors, "order: "+message)
	if err := uc.Records.SetError(ctx, recordID, message, uc.Clock.Now().UTC()); err != nil {
		report.Errors = append(report.Errors, "order: "+err.Error())
	}
}
