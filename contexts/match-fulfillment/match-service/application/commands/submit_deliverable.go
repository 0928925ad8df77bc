package commands

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	application "magnolia/contexts/match-fulfillment/match-service/application"
	domainerrors "magnolia/contexts/match-fulfillment/match-service/domain/errors"
	"magnolia/contexts/match-fulfillment/match-service/ports"
)

type SubmitDeliverableCommand struct {
	MatchID          string
	CreatorID        string
	Permalink        string
	Note             string
	GrantUsageRights bool
}

type SubmitDeliverableUseCase struct {
	Matches      ports.MatchRepository
	Deliverables ports.DeliverableRepository
	Directory    ports.DirectoryReader
	Clock        ports.Clock
	Logger       *slog.Logger
}

// Execute records the creator's content submission. The write is a
// compare-and-swap on the open deliverable, so concurrent submissions
// resolve to exactly one winner.
func (uc SubmitDeliverableUseCase) Execute(ctx context.Context, cmd SubmitDeliverableCommand) error {
	logger := application.ResolveLogger(uc.Logger)

	permalink := strings.TrimSpace(cmd.Permalink)
	if !validPermalink(permalink) {
		return domainerrors.ErrInvalidPermalink
	}

	match, err := uc.Matches.GetMatch(ctx, cmd.MatchID)
	if err != nil {
		return err
	}
	if match.CreatorID != strings.TrimSpace(cmd.CreatorID) {
		return domainerrors.ErrNotMatchCreator
	}

	offer, err := uc.Directory.GetOffer(ctx, match.OfferID)
	if err != nil {
		return err
	}
	if offer.RequiresUsageRights && !cmd.GrantUsageRights {
		return domainerrors.ErrUsageRightsRequired
	}

	deliverable, err := uc.Deliverables.GetDeliverable(ctx, cmd.MatchID)
	if err != nil {
		return err
	}
	if deliverable.Terminal() {
		return domainerrors.ErrDeliverableNotDue
	}

	now := uc.Clock.Now().UTC()
	var grantedAt *time.Time
	if cmd.GrantUsageRights {
		grantedAt = &now
	}

	swapped, err := uc.Deliverables.SubmitIfOpen(ctx, ports.SubmitDeliverableParams{
		MatchID:              cmd.MatchID,
		Permalink:            permalink,
		Note:                 strings.TrimSpace(cmd.Note),
		UsageRightsGrantedAt: grantedAt,
		SubmittedAt:          now,
	})
	if err != nil {
		return err
	}
	if !swapped {
		return domainerrors.ErrSubmissionConflict
	}

	logger.Info("deliverable submitted",
		"event", "deliverable_submitted",
		"module", "match-fulfillment/match-service",
		"layer", "application",
		"match_id", cmd.MatchID,
		"usage_rights", cmd.GrantUsageRights,
	)
	return nil
}

func validPermalink(raw string) bool {
	if raw == "" {
		return false
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
