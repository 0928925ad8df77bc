package commands

import (
	"context"
	"log/slog"
	"strings"

	application "magnolia/contexts/match-fulfillment/match-service/application"
	domainerrors "magnolia/contexts/match-fulfillment/match-service/domain/errors"
	"magnolia/contexts/match-fulfillment/match-service/ports"
)

type VerifyDeliverableCommand struct {
	MatchID string
	BrandID string
	// Permalink may be empty, in which case the previously submitted
	// permalink is verified.
	Permalink string
}

type VerifyDeliverableUseCase struct {
	Matches      ports.MatchRepository
	Deliverables ports.DeliverableRepository
	Directory    ports.DirectoryReader
	Clock        ports.Clock
	Logger       *slog.Logger
}

// Execute marks the deliverable verified. Verification stamps the reviewer
// and timestamp and clears any prior failure reason.
func (uc VerifyDeliverableUseCase) Execute(ctx context.Context, cmd VerifyDeliverableCommand) error {
	logger := application.ResolveLogger(uc.Logger)

	match, err := uc.Matches.GetMatch(ctx, cmd.MatchID)
	if err != nil {
		return err
	}
	offer, err := uc.Directory.GetOffer(ctx, match.OfferID)
	if err != nil {
		return err
	}
	brandID := strings.TrimSpace(cmd.BrandID)
	if offer.BrandID != brandID {
		return domainerrors.ErrNotOfferOwner
	}

	deliverable, err := uc.Deliverables.GetDeliverable(ctx, cmd.MatchID)
	if err != nil {
		return err
	}
	permalink := strings.TrimSpace(cmd.Permalink)
	if permalink == "" {
		permalink = strings.TrimSpace(deliverable.SubmittedPermalink)
	}
	if !deliverable.VerifiableWith(permalink, offer.RequiresUsageRights) {
		if permalink == "" {
			return domainerrors.ErrVerificationNotPossible
		}
		if offer.RequiresUsageRights && deliverable.UsageRightsGrantedAt == nil {
			return domainerrors.ErrUsageRightsRequired
		}
		return domainerrors.ErrDeliverableNotDue
	}

	swapped, err := uc.Deliverables.Verify(ctx, cmd.MatchID, permalink, brandID, uc.Clock.Now().UTC())
	if err != nil {
		return err
	}
	if !swapped {
		return domainerrors.ErrDeliverableNotDue
	}

	logger.Info("deliverable verified",
		"event", "deliverable_verified",
		"module", "match-fulfillment/match-service",
		"layer", "application",
		"match_id", cmd.MatchID,
		"reviewer", brandID,
	)
	return nil
}

type RejectDeliverableCommand struct {
	MatchID string
	BrandID string
	Reason  string
}

type RejectDeliverableUseCase struct {
	Matches      ports.MatchRepository
	Deliverables ports.DeliverableRepository
	Directory    ports.DirectoryReader
	Clock        ports.Clock
	Logger       *slog.Logger
}

func (uc RejectDeliverableUseCase) Execute(ctx context.Context, cmd RejectDeliverableCommand) error {
	logger := application.ResolveLogger(uc.Logger)

	match, err := uc.Matches.GetMatch(ctx, cmd.MatchID)
	if err != nil {
		return err
	}
	offer, err := uc.Directory.GetOffer(ctx, match.OfferID)
	if err != nil {
		return err
	}
	if offer.BrandID != strings.TrimSpace(cmd.BrandID) {
		return domainerrors.ErrNotOfferOwner
	}

	swapped, err := uc.Deliverables.MarkFailed(ctx, cmd.MatchID, strings.TrimSpace(cmd.Reason), uc.Clock.Now().UTC())
	if err != nil {
		return err
	}
	if !swapped {
		return domainerrors.ErrDeliverableNotDue
	}

	logger.Info("deliverable rejected",
		"event", "deliverable_rejected",
		"module", "match-fulfillment/match-service",
		"layer", "application",
		"match_id", cmd.MatchID,
	)
	return nil
}

type RequireRepostCommand struct {
	MatchID string
	BrandID string
	Reason  string
}

type RequireRepostUseCase struct {
	Matches         ports.MatchRepository
	Deliverables    ports.DeliverableRepository
	Directory       ports.DirectoryReader
	Notifier        ports.Notifier
	Clock           ports.Clock
	EnabledChannels []string
	Logger          *slog.Logger
}

// Execute parks the deliverable in repost_required so the creator can
// replace the content; the next submission reopens it as due.
func (uc RequireRepostUseCase) Execute(ctx context.Context, cmd RequireRepostCommand) error {
	logger := application.ResolveLogger(uc.Logger)

	match, err := uc.Matches.GetMatch(ctx, cmd.MatchID)
	if err != nil {
		return err
	}
	offer, err := uc.Directory.GetOffer(ctx, match.OfferID)
	if err != nil {
		return err
	}
	if offer.BrandID != strings.TrimSpace(cmd.BrandID) {
		return domainerrors.ErrNotOfferOwner
	}

	swapped, err := uc.Deliverables.RequireRepost(ctx, cmd.MatchID, strings.TrimSpace(cmd.Reason), uc.Clock.Now().UTC())
	if err != nil {
		return err
	}
	if !swapped {
		return domainerrors.ErrDeliverableNotDue
	}

	if uc.Notifier != nil {
		if creator, err := uc.Directory.GetCreator(ctx, match.CreatorID); err == nil {
			payload := map[string]any{
				"match_id":    match.MatchID,
				"offer_title": offer.Title,
				"reason":      strings.TrimSpace(cmd.Reason),
			}
			for _, channel := range uc.EnabledChannels {
				if to := creator.AddressFor(channel); to != "" {
					_ = uc.Notifier.Enqueue(ctx, channel, to, "repost_required", payload)
				}
			}
		}
	}

	logger.Info("deliverable repost required",
		"event", "deliverable_repost_required",
		"module", "match-fulfillment/match-service",
		"layer", "application",
		"match_id", cmd.MatchID,
	)
	return nil
}
