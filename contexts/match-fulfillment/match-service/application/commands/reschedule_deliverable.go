package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	application "magnolia/contexts/match-fulfillment/match-service/application"
	"magnolia/contexts/match-fulfillment/match-service/domain/entities"
	domainerrors "magnolia/contexts/match-fulfillment/match-service/domain/errors"
	"magnolia/contexts/match-fulfillment/match-service/ports"
)

type RescheduleDeliverableCommand struct {
	MatchID     string
	FulfilledAt time.Time
}

type RescheduleDeliverableUseCase struct {
	Matches      ports.MatchRepository
	Deliverables ports.DeliverableRepository
	Directory    ports.DirectoryReader
	Clock        ports.Clock
	Logger       *slog.Logger
}

// Execute recomputes the due date from the shipment time. The posting clock
// only starts once the product is actually on its way, so the fulfillments
// webhook drives this rather than approval time.
func (uc RescheduleDeliverableUseCase) Execute(ctx context.Context, cmd RescheduleDeliverableCommand) error {
	logger := application.ResolveLogger(uc.Logger)

	match, err := uc.Matches.GetMatch(ctx, cmd.MatchID)
	if err != nil {
		return err
	}
	offer, err := uc.Directory.GetOffer(ctx, match.OfferID)
	if err != nil {
		return err
	}

	deliverable, err := uc.Deliverables.GetDeliverable(ctx, cmd.MatchID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrDeliverableNotFound) {
			return nil
		}
		return err
	}
	if deliverable.Terminal() {
		return nil
	}

	fulfilledAt := cmd.FulfilledAt.UTC()
	if fulfilledAt.IsZero() {
		fulfilledAt = uc.Clock.Now().UTC()
	}
	dueAt := entities.DeliverableDueAt(fulfilledAt, offer.DeadlineDays)
	if err := uc.Deliverables.UpdateDueAt(ctx, cmd.MatchID, dueAt, uc.Clock.Now().UTC()); err != nil {
		return err
	}

	logger.Info("deliverable rescheduled",
		"event", "deliverable_rescheduled",
		"module", "match-fulfillment/match-service",
		"layer", "application",
		"match_id", cmd.MatchID,
		"due_at", dueAt.Format(time.RFC3339),
	)
	return nil
}
