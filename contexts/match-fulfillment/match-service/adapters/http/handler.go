package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"magnolia/contexts/match-fulfillment/match-service/application/commands"
	"magnolia/contexts/match-fulfillment/match-service/application/queries"
	"magnolia/contexts/match-fulfillment/match-service/domain/entities"
	httptransport "magnolia/contexts/match-fulfillment/match-service/transport/http"
)

type Handler struct {
	ApproveMatch      commands.ApproveMatchUseCase
	RevokeMatch       commands.RevokeMatchUseCase
	SubmitDeliverable commands.SubmitDeliverableUseCase
	VerifyDeliverable commands.VerifyDeliverableUseCase
	RejectDeliverable commands.RejectDeliverableUseCase
	RequireRepost     commands.RequireRepostUseCase
	Reschedule        commands.RescheduleDeliverableUseCase
	GetMatch          queries.GetMatchUseCase
	ListMatches       queries.ListMatchesByOfferUseCase
	Logger            *slog.Logger
}

func (h Handler) ApproveMatchHandler(ctx context.Context, brandID string, matchID string) (httptransport.ApproveMatchResponse, error) {
	result, err := h.ApproveMatch.Execute(ctx, commands.ApproveMatchCommand{
		MatchID: matchID,
		BrandID: brandID,
	})
	if err != nil {
		return httptransport.ApproveMatchResponse{}, err
	}
	errorsOut := result.Errors
	if errorsOut == nil {
		errorsOut = []string{}
	}
	return httptransport.ApproveMatchResponse{
		OK: true,
		Match: httptransport.ApprovedMatch{
			Status:          string(result.Status),
			CampaignCode:    result.CampaignCode,
			ShareURLPath:    result.ShareURLPath,
			DiscountCreated: result.DiscountCreated,
			OrderCreated:    result.OrderCreated,
			ManualShipment:  result.ManualShipment,
		},
		Errors: errorsOut,
	}, nil
}

func (h Handler) RevokeMatchHandler(ctx context.Context, brandID string, matchID string, req httptransport.RevokeMatchRequest) error {
	return h.RevokeMatch.Execute(ctx, commands.RevokeMatchCommand{
		MatchID: matchID,
		BrandID: brandID,
		Reason:  req.Reason,
	})
}

func (h Handler) SubmitDeliverableHandler(
	ctx context.Context,
	creatorID string,
	matchID string,
	req httptransport.SubmitDeliverableRequest,
) error {
	return h.SubmitDeliverable.Execute(ctx, commands.SubmitDeliverableCommand{
		MatchID:          matchID,
		CreatorID:        creatorID,
		Permalink:        req.Permalink,
		Note:             req.Note,
		GrantUsageRights: req.GrantUsageRights,
	})
}

func (h Handler) VerifyDeliverableHandler(
	ctx context.Context,
	brandID string,
	matchID string,
	req httptransport.VerifyDeliverableRequest,
) error {
	return h.VerifyDeliverable.Execute(ctx, commands.VerifyDeliverableCommand{
		MatchID:   matchID,
		BrandID:   brandID,
		Permalink: req.Permalink,
	})
}

func (h Handler) RejectDeliverableHandler(
	ctx context.Context,
	brandID string,
	matchID string,
	req httptransport.RejectDeliverableRequest,
) error {
	return h.RejectDeliverable.Execute(ctx, commands.RejectDeliverableCommand{
		MatchID: matchID,
		BrandID: brandID,
		Reason:  req.Reason,
	})
}

func (h Handler) RequireRepostHandler(
	ctx context.Context,
	brandID string,
	matchID string,
	req httptransport.RequireRepostRequest,
) error {
	return h.RequireRepost.Execute(ctx, commands.RequireRepostCommand{
		MatchID: matchID,
		BrandID: brandID,
		Reason:  req.Reason,
	})
}

func (h Handler) GetMatchHandler(ctx context.Context, matchID string) (httptransport.GetMatchResponse, error) {
	view, err := h.GetMatch.Execute(ctx, matchID)
	if err != nil {
		return httptransport.GetMatchResponse{}, err
	}
	resp := httptransport.GetMatchResponse{Match: mapMatch(view.Match)}
	if view.Deliverable != nil {
		dto := mapDeliverable(*view.Deliverable)
		resp.Deliverable = &dto
	}
	return resp, nil
}

func (h Handler) ListMatchesHandler(ctx context.Context, brandID string, offerID string) (httptransport.ListMatchesResponse, error) {
	items, err := h.ListMatches.Execute(ctx, queries.ListMatchesByOfferQuery{
		OfferID: offerID,
		BrandID: brandID,
	})
	if err != nil {
		return httptransport.ListMatchesResponse{}, err
	}
	result := make([]httptransport.MatchDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapMatch(item))
	}
	return httptransport.ListMatchesResponse{Items: result}, nil
}

func mapMatch(item entities.Match) httptransport.MatchDTO {
	dto := httptransport.MatchDTO{
		MatchID:      item.MatchID,
		OfferID:      item.OfferID,
		CreatorID:    item.CreatorID,
		Status:       string(item.Status),
		CampaignCode: item.CampaignCode,
		ShareURLPath: item.ShareURLPath(),
		CreatedAt:    item.CreatedAt.Format(time.RFC3339),
	}
	if item.AcceptedAt != nil {
		dto.AcceptedAt = item.AcceptedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func mapDeliverable(item entities.Deliverable) httptransport.DeliverableDTO {
	dto := httptransport.DeliverableDTO{
		MatchID:            item.MatchID,
		Status:             string(item.Status),
		DueAt:              item.DueAt.Format(time.RFC3339),
		SubmittedPermalink: item.SubmittedPermalink,
		UsageRightsGranted: item.UsageRightsGrantedAt != nil,
	}
	if item.SubmittedAt != nil {
		dto.SubmittedAt = item.SubmittedAt.UTC().Format(time.RFC3339)
	}
	if item.VerifiedAt != nil {
		dto.VerifiedAt = item.VerifiedAt.UTC().Format(time.RFC3339)
	}
	return dto
}
