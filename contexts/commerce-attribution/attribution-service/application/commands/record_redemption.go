package commands

import (
	"context"
	"log/slog"
	"strings"

	application "magnolia/contexts/commerce-attribution/attribution-service/application"
	"magnolia/contexts/commerce-attribution/attribution-service/domain/entities"
	domainerrors "magnolia/contexts/commerce-attribution/attribution-service/domain/errors"
	"magnolia/contexts/commerce-attribution/attribution-service/ports"
	"magnolia/internal/shared/money"
)

type RecordRedemptionCommand struct {
	MatchID string
	BrandID string
	Channel string
	// Amount is the decimal string from the request body, e.g. "49.90".
	Amount   string
	Currency string
	Note     string
}

type RecordRedemptionResult struct {
	RedemptionID string
}

// RecordRedemptionUseCase stores a brand-entered manual revenue event
// (in-store sale, phone order). Rows are immutable once written.
type RecordRedemptionUseCase struct {
	Matches     ports.MatchReader
	Redemptions ports.RedemptionRepository
	Directory   ports.DirectoryReader
	Clock       ports.Clock
	IDs         ports.IDGenerator
	Logger      *slog.Logger
}

func (uc RecordRedemptionUseCase) Execute(ctx context.Context, cmd RecordRedemptionCommand) (RecordRedemptionResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	channel := strings.TrimSpace(cmd.Channel)
	if channel == "" {
		return RecordRedemptionResult{}, domainerrors.ErrInvalidChannel
	}
	amountCents, err := money.ParseCents(cmd.Amount)
	if err != nil || amountCents <= 0 {
		return RecordRedemptionResult{}, domainerrors.ErrInvalidAmount
	}

	match, err := uc.Matches.GetByID(ctx, cmd.MatchID)
	if err != nil {
		return RecordRedemptionResult{}, err
	}
	offer, err := uc.Directory.GetOffer(ctx, match.OfferID)
	if err != nil {
		return RecordRedemptionResult{}, err
	}
	if offer.BrandID != strings.TrimSpace(cmd.BrandID) {
		return RecordRedemptionResult{}, domainerrors.ErrNotOfferOwner
	}

	redemptionID, err := uc.IDs.NewID(ctx)
	if err != nil {
		return RecordRedemptionResult{}, err
	}
	if err := uc.Redemptions.Insert(ctx, entities.Redemption{
		RedemptionID: redemptionID,
		MatchID:      match.MatchID,
		Channel:      channel,
		AmountCents:  amountCents,
		Currency:     strings.ToUpper(strings.TrimSpace(cmd.Currency)),
		Note:         strings.TrimSpace(cmd.Note),
		CreatedAt:    uc.Clock.Now().UTC(),
	}); err != nil {
		return RecordRedemptionResult{}, err
	}

	logger.Info("redemption recorded",
		"event", "redemption_recorded",
		"module", "commerce-attribution/attribution-service",
		"layer", "application",
		"match_id", match.MatchID,
		"channel", channel,
		"amount_cents", amountCents,
	)
	return RecordRedemptionResult{RedemptionID: redemptionID}, nil
}
