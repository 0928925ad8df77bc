package queries

import (
	"context"
	"log/slog"
	"strings"

	"magnolia/contexts/match-fulfillment/match-service/domain/entities"
	domainerrors "magnolia/contexts/match-fulfillment/match-service/domain/errors"
	"magnolia/contexts/match-fulfillment/match-service/ports"
)

type ListMatchesByOfferQuery struct {
	OfferID string
	BrandID string
}

type ListMatchesByOfferUseCase struct {
	Matches   ports.MatchRepository
	Directory ports.DirectoryReader
	Logger    *slog.Logger
}

func (uc ListMatchesByOfferUseCase) Execute(ctx context.Context, query ListMatchesByOfferQuery) ([]entities.Match, error) {
	offer, err := uc.Directory.GetOffer(ctx, query.OfferID)
	if err != nil {
		return nil, err
	}
	if offer.BrandID != strings.TrimSpace(query.BrandID) {
		return nil, domainerrors.ErrNotOfferOwner
	}
	return uc.Matches.ListMatchesByOffer(ctx, query.OfferID)
}
