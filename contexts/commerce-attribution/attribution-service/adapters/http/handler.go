package httpadapter

import (
	"context"
	"log/slog"

	"magnolia/contexts/commerce-attribution/attribution-service/application/commands"
	"magnolia/contexts/commerce-attribution/attribution-service/application/queries"
	"magnolia/contexts/commerce-attribution/attribution-service/domain/entities"
	httptransport "magnolia/contexts/commerce-attribution/attribution-service/transport/http"
)

type Handler struct {
	Attribution      queries.AttributionQueryUseCase
	RecordRedemption commands.RecordRedemptionUseCase
	Logger           *slog.Logger
}

func (h Handler) CreatorAttributionHandler(ctx context.Context, creatorID string) (httptransport.CreatorAttributionResponse, error) {
	result, err := h.Attribution.ByCreator(ctx, creatorID)
	if err != nil {
		return httptransport.CreatorAttributionResponse{}, err
	}
	return httptransport.CreatorAttributionResponse{
		CreatorID: result.CreatorID,
		Matches:   mapRollups(result.Matches),
		Totals:    mapTotals(result.Totals),
	}, nil
}

func (h Handler) BrandAttributionHandler(ctx context.Context, brandID string) (httptransport.BrandAttributionResponse, error) {
	result, err := h.Attribution.ByBrand(ctx, brandID)
	if err != nil {
		return httptransport.BrandAttributionResponse{}, err
	}
	offers := make([]httptransport.OfferAttributionDTO, 0, len(result.Offers))
	for _, offer := range result.Offers {
		offers = append(offers, httptransport.OfferAttributionDTO{
			OfferID: offer.OfferID,
			Title:   offer.Title,
			Matches: mapRollups(offer.Matches),
			Totals:  mapTotals(offer.Totals),
		})
	}
	return httptransport.BrandAttributionResponse{BrandID: result.BrandID, Offers: offers}, nil
}

func (h Handler) RecordRedemptionHandler(
	ctx context.Context,
	brandID string,
	matchID string,
	req httptransport.RecordRedemptionRequest,
) (httptransport.RecordRedemptionResponse, error) {
	result, err := h.RecordRedemption.Execute(ctx, commands.RecordRedemptionCommand{
		MatchID:  matchID,
		BrandID:  brandID,
		Channel:  req.Channel,
		Amount:   req.Amount,
		Currency: req.Currency,
		Note:     req.Note,
	})
	if err != nil {
		return httptransport.RecordRedemptionResponse{}, err
	}
	return httptransport.RecordRedemptionResponse{OK: true, RedemptionID: result.RedemptionID}, nil
}

func mapRollups(items []entities.MatchRollup) []httptransport.MatchRollupDTO {
	result := make([]httptransport.MatchRollupDTO, 0, len(items))
	for _, item := range items {
		result = append(result, httptransport.MatchRollupDTO{
			MatchID:                item.MatchID,
			OfferID:                item.OfferID,
			CreatorID:              item.CreatorID,
			Currency:               item.Currency,
			Clicks:                 item.Clicks,
			OrderCount:             item.OrderCount,
			OrderRevenueCents:      item.OrderRevenueCents,
			RefundCount:            item.RefundCount,
			RefundTotalCents:       item.RefundTotalCents,
			RedemptionCount:        item.RedemptionCount,
			RedemptionRevenueCents: item.RedemptionRevenueCents,
			VerifiedDeliverables:   item.VerifiedDeliverables,
			NetRevenueCents:        item.NetRevenueCents,
		})
	}
	return result
}

func mapTotals(totals entities.RollupTotals) httptransport.RollupTotalsDTO {
	return httptransport.RollupTotalsDTO{
		Clicks:                 totals.Clicks,
		OrderCount:             totals.OrderCount,
		OrderRevenueCents:      totals.OrderRevenueCents,
		RefundCount:            totals.RefundCount,
		RefundTotalCents:       totals.RefundTotalCents,
		RedemptionCount:        totals.RedemptionCount,
		RedemptionRevenueCents: totals.RedemptionRevenueCents,
		VerifiedDeliverables:   totals.VerifiedDeliverables,
		RepeatBuyers:           totals.RepeatBuyers,
		NetRevenueCents:        totals.NetRevenueCents,
		SeedCostCents:          totals.SeedCostCents,
		ROIPercent:             totals.ROIPercent,
	}
}
