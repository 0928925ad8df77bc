package queries

import (
	"context"
	"log/slog"

	application "magnolia/contexts/commerce-attribution/attribution-service/application"
	"magnolia/contexts/commerce-attribution/attribution-service/domain/entities"
	"magnolia/contexts/commerce-attribution/attribution-service/ports"
)

type CreatorAttribution struct {
	CreatorID string
	Matches   []entities.MatchRollup
	Totals    entities.RollupTotals
}

type OfferAttribution struct {
	OfferID string
	Title   string
	Matches []entities.MatchRollup
	Totals  entities.RollupTotals
}

type BrandAttribution struct {
	BrandID string
	Offers  []OfferAttribution
}

// AttributionQueryUseCase is the read-side aggregator: per-match joins of
// clicks, orders, refunds, redemptions and verified deliverables, grouped
// by match first and rolled up by creator or offer. It owns no state.
type AttributionQueryUseCase struct {
	Matches   ports.MatchReader
	Stats     ports.StatsReader
	Directory ports.DirectoryReader
	Logger    *slog.Logger
}

func (uc AttributionQueryUseCase) ByCreator(ctx context.Context, creatorID string) (CreatorAttribution, error) {
	logger := application.ResolveLogger(uc.Logger)

	matches, err := uc.Matches.ListByCreator(ctx, creatorID)
	if err != nil {
		return CreatorAttribution{}, err
	}
	rollups, totals, err := uc.rollup(ctx, matches)
	if err != nil {
		return CreatorAttribution{}, err
	}

	logger.Info("creator attribution computed",
		"event", "attribution_rollup",
		"module", "commerce-attribution/attribution-service",
		"layer", "application",
		"creator_id", creatorID,
		"match_count", len(rollups),
	)
	return CreatorAttribution{CreatorID: creatorID, Matches: rollups, Totals: totals}, nil
}

func (uc AttributionQueryUseCase) ByBrand(ctx context.Context, brandID string) (BrandAttribution, error) {
	offers, err := uc.Directory.ListOffersByBrand(ctx, brandID)
	if err != nil {
		return BrandAttribution{}, err
	}

	result := BrandAttribution{BrandID: brandID, Offers: make([]OfferAttribution, 0, len(offers))}
	for _, offer := range offers {
		matches, err := uc.Matches.ListByOffer(ctx, offer.OfferID)
		if err != nil {
			return BrandAttribution{}, err
		}
		rollups, totals, err := uc.rollup(ctx, matches)
		if err != nil {
			return BrandAttribution{}, err
		}
		result.Offers = append(result.Offers, OfferAttribution{
			OfferID: offer.OfferID,
			Title:   offer.Title,
			Matches: rollups,
			Totals:  totals,
		})
	}
	return result, nil
}

// rollup groups stats by match, then aggregates. Seed cost counts once per
// match: each match consumed one seeding of the offer.
func (uc AttributionQueryUseCase) rollup(
	ctx context.Context,
	matches []ports.AttributionMatch,
) ([]entities.MatchRollup, entities.RollupTotals, error) {
	if len(matches) == 0 {
		return []entities.MatchRollup{}, entities.RollupTotals{}, nil
	}

	matchIDs := make([]string, 0, len(matches))
	for _, match := range matches {
		matchIDs = append(matchIDs, match.MatchID)
	}
	stats, err := uc.Stats.StatsByMatch(ctx, matchIDs)
	if err != nil {
		return nil, entities.RollupTotals{}, err
	}

	seedCosts := make(map[string]int64, len(matches))
	rollups := make([]entities.MatchRollup, 0, len(matches))
	totals := entities.RollupTotals{}
	for _, match := range matches {
		stat := stats[match.MatchID]

		seedCost, known := seedCosts[match.OfferID]
		if !known {
			offer, err := uc.Directory.GetOffer(ctx, match.OfferID)
			if err != nil {
				return nil, entities.RollupTotals{}, err
			}
			seedCost = offer.SeedCostCents
			seedCosts[match.OfferID] = seedCost
		}

		rollup := entities.MatchRollup{
			MatchID:                match.MatchID,
			OfferID:                match.OfferID,
			CreatorID:              match.CreatorID,
			Currency:               stat.Currency,
			Clicks:                 stat.Clicks,
			OrderCount:             stat.OrderCount,
			OrderRevenueCents:      stat.OrderRevenueCents,
			RefundCount:            stat.RefundCount,
			RefundTotalCents:       stat.RefundTotalCents,
			RedemptionCount:        stat.RedemptionCount,
			RedemptionRevenueCents: stat.RedemptionRevenueCents,
			VerifiedDeliverables:   stat.VerifiedDeliverables,
			NetRevenueCents:        entities.NetRevenueCents(stat.OrderRevenueCents, stat.RefundTotalCents),
		}
		rollups = append(rollups, rollup)

		totals.Clicks += rollup.Clicks
		totals.OrderCount += rollup.OrderCount
		totals.OrderRevenueCents += rollup.OrderRevenueCents
		totals.RefundCount += rollup.RefundCount
		totals.RefundTotalCents += rollup.RefundTotalCents
		totals.RedemptionCount += rollup.RedemptionCount
		totals.RedemptionRevenueCents += rollup.RedemptionRevenueCents
		totals.VerifiedDeliverables += rollup.VerifiedDeliverables
		totals.NetRevenueCents += rollup.NetRevenueCents
		totals.SeedCostCents += seedCost
	}

	repeatBuyers, err := uc.repeatBuyers(ctx, matches)
	if err != nil {
		return nil, entities.RollupTotals{}, err
	}
	totals.RepeatBuyers = repeatBuyers
	totals.ROIPercent = entities.ROIPercent(totals.NetRevenueCents, totals.SeedCostCents)

	return rollups, totals, nil
}

// repeatBuyers partitions the match set by creator before counting: a
// customer with one order through each of two creators is not a repeat
// buyer for either of them.
func (uc AttributionQueryUseCase) repeatBuyers(
	ctx context.Context,
	matches []ports.AttributionMatch,
) (int64, error) {
	byCreator := make(map[string][]string, len(matches))
	for _, match := range matches {
		byCreator[match.CreatorID] = append(byCreator[match.CreatorID], match.MatchID)
	}
	var total int64
	for _, matchIDs := range byCreator {
		count, err := uc.Stats.RepeatBuyers(ctx, matchIDs)
		if err != nil {
			return 0, err
		}
		total += count
	}
	return total, nil
}
