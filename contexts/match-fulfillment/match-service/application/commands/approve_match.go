package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "magnolia/contexts/match-fulfillment/match-service/application"
	"magnolia/contexts/match-fulfillment/match-service/domain/entities"
	domainerrors "magnolia/contexts/match-fulfillment/match-service/domain/errors"
	"magnolia/contexts/match-fulfillment/match-service/ports"
	"magnolia/internal/shared/directory"
)

const campaignCodeAttempts = 5

type ApproveMatchCommand struct {
	MatchID string
	BrandID string
}

type ApproveMatchUseCase struct {
	Matches      ports.MatchRepository
	Deliverables ports.DeliverableRepository
	Directory    ports.DirectoryReader
	Fulfillment  ports.FulfillmentRunner
	Notifier     ports.Notifier
	Clock        ports.Clock
	Codes        ports.CodeGenerator
	// Channels the operator has transport configured for; a notification is
	// only enqueued when the creator also has an address on the channel.
	EnabledChannels []string
	Logger          *slog.Logger
}

type ApproveMatchResult struct {
	Status          entities.MatchStatus
	CampaignCode    string
	ShareURLPath    string
	DiscountCreated bool
	OrderCreated    bool
	ManualShipment  bool
	Errors          []string
}

// Execute approves the match and runs the fulfillment side effects.
// Approval is idempotent: re-approving an accepted match re-runs only the
// individually guarded sub-steps. Sub-step failures are aggregated into the
// result and never roll back the accepted status.
func (uc ApproveMatchUseCase) Execute(ctx context.Context, cmd ApproveMatchCommand) (ApproveMatchResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	match, err := uc.Matches.GetMatch(ctx, cmd.MatchID)
	if err != nil {
		return ApproveMatchResult{}, err
	}
	offer, err := uc.Directory.GetOffer(ctx, match.OfferID)
	if err != nil {
		return ApproveMatchResult{}, err
	}
	if offer.BrandID != strings.TrimSpace(cmd.BrandID) {
		return ApproveMatchResult{}, domainerrors.ErrNotOfferOwner
	}
	if !match.Approvable() {
		return ApproveMatchResult{}, domainerrors.ErrMatchNotApprovable
	}

	now := uc.Clock.Now().UTC()
	firstAccept := false
	if match.Status == entities.MatchStatusPendingApproval {
		swapped, err := uc.Matches.TransitionStatus(
			ctx,
			match.MatchID,
			entities.MatchStatusPendingApproval,
			entities.MatchStatusAccepted,
			now,
		)
		if err != nil {
			return ApproveMatchResult{}, err
		}
		firstAccept = swapped
		// Losing the swap means a concurrent approval landed first; continue
		// on the reloaded row so the guarded sub-steps still run.
		match, err = uc.Matches.GetMatch(ctx, match.MatchID)
		if err != nil {
			return ApproveMatchResult{}, err
		}
		if !match.IsAccepted() {
			return ApproveMatchResult{}, domainerrors.ErrMatchNotApprovable
		}
	}

	result := ApproveMatchResult{Status: match.Status}

	match, err = uc.ensureCampaignCode(ctx, match, now)
	if err != nil {
		return ApproveMatchResult{}, err
	}
	result.CampaignCode = match.CampaignCode
	result.ShareURLPath = match.ShareURLPath()

	acceptedAt := now
	if match.AcceptedAt != nil {
		acceptedAt = match.AcceptedAt.UTC()
	}
	created, err := uc.Deliverables.CreateIfAbsent(ctx, entities.Deliverable{
		MatchID:   match.MatchID,
		Status:    entities.DeliverableStatusDue,
		DueAt:     entities.DeliverableDueAt(acceptedAt, offer.DeadlineDays),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		result.Errors = append(result.Errors, "deliverable: "+err.Error())
	} else if created {
		logger.Info("deliverable created",
			"event", "deliverable_created",
			"module", "match-fulfillment/match-service",
			"layer", "application",
			"match_id", match.MatchID,
		)
	}

	if uc.Fulfillment != nil {
		report, runErr := uc.Fulfillment.Run(ctx, match.MatchID)
		if runErr != nil {
			result.Errors = append(result.Errors, "fulfillment: "+runErr.Error())
		}
		result.DiscountCreated = report.DiscountCreated
		result.OrderCreated = report.OrderCreated
		result.ManualShipment = report.ManualShipment
		result.Errors = append(result.Errors, report.Errors...)
	}

	if firstAccept && uc.Notifier != nil {
		uc.notifyApproved(ctx, match, offer)
	}

	logger.Info("match approved",
		"event", "match_approved",
		"module", "match-fulfillment/match-service",
		"layer", "application",
		"match_id", match.MatchID,
		"offer_id", match.OfferID,
		"first_accept", firstAccept,
		"error_count", len(result.Errors),
	)
	return result, nil
}

func (uc ApproveMatchUseCase) ensureCampaignCode(
	ctx context.Context,
	match entities.Match,
	now time.Time,
) (entities.Match, error) {
	if strings.TrimSpace(match.CampaignCode) != "" {
		return match, nil
	}

	var lastErr error
	for attempt := 0; attempt < campaignCodeAttempts; attempt++ {
		code, err := uc.Codes.NewCode(ctx)
		if err != nil {
			return entities.Match{}, err
		}
		err = uc.Matches.SetCampaignCode(ctx, match.MatchID, code, now)
		if err == nil {
			match.CampaignCode = code
			return match, nil
		}
		if !errors.Is(err, domainerrors.ErrCampaignCodeTaken) {
			return entities.Match{}, err
		}
		lastErr = err
	}
	return entities.Match{}, lastErr
}

func (uc ApproveMatchUseCase) notifyApproved(ctx context.Context, match entities.Match, offer directory.Offer) {
	logger := application.ResolveLogger(uc.Logger)
	creator, err := uc.Directory.GetCreator(ctx, match.CreatorID)
	if err != nil {
		logger.Warn("approval notification skipped",
			"event", "match_approved_notify_skipped",
			"module", "match-fulfillment/match-service",
			"layer", "application",
			"match_id", match.MatchID,
			"error", err.Error(),
		)
		return
	}

	payload := map[string]any{
		"match_id":      match.MatchID,
		"offer_title":   offer.Title,
		"campaign_code": match.CampaignCode,
		"creator_name":  creator.Name,
	}
	for _, channel := range uc.EnabledChannels {
		to := creator.AddressFor(channel)
		if to == "" {
			continue
		}
		if err := uc.Notifier.Enqueue(ctx, channel, to, "match_approved", payload); err != nil {
			logger.Warn("approval notification enqueue failed",
				"event", "match_approved_notify_failed",
				"module", "match-fulfillment/match-service",
				"layer", "application",
				"match_id", match.MatchID,
				"channel", channel,
				"error", err.Error(),
			)
		}
	}
}
