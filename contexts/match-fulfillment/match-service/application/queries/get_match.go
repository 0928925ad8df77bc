package queries

import (
	"context"
	"errors"
	"log/slog"

	"magnolia/contexts/match-fulfillment/match-service/domain/entities"
	domainerrors "magnolia/contexts/match-fulfillment/match-service/domain/errors"
	"magnolia/contexts/match-fulfillment/match-service/ports"
)

type MatchView struct {
	Match       entities.Match
	Deliverable *entities.Deliverable
}

type GetMatchUseCase struct {
	Matches      ports.MatchRepository
	Deliverables ports.DeliverableRepository
	Logger       *slog.Logger
}

func (uc GetMatchUseCase) Execute(ctx context.Context, matchID string) (MatchView, error) {
	match, err := uc.Matches.GetMatch(ctx, matchID)
	if err != nil {
		return MatchView{}, err
	}

	view := MatchView{Match: match}
	deliverable, err := uc.Deliverables.GetDeliverable(ctx, matchID)
	if err == nil {
		view.Deliverable = &deliverable
	} else if !errors.Is(err, domainerrors.ErrDeliverableNotFound) {
		return MatchView{}, err
	}
	return view, nil
}
