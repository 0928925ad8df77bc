package commands

import (
	"context"
	"log/slog"
	"strings"

	application "magnolia/contexts/match-fulfillment/match-service/application"
	"magnolia/contexts/match-fulfillment/match-service/domain/entities"
	domainerrors "magnolia/contexts/match-fulfillment/match-service/domain/errors"
	"magnolia/contexts/match-fulfillment/match-service/ports"
)

type RevokeMatchCommand struct {
	MatchID string
	BrandID string
	Reason  string
}

type RevokeMatchUseCase struct {
	Matches         ports.MatchRepository
	Directory       ports.DirectoryReader
	Notifier        ports.Notifier
	Clock           ports.Clock
	EnabledChannels []string
	Logger          *slog.Logger
}

// Execute withdraws an accepted or pending match. Revoking an already
// revoked match is a no-op.
func (uc RevokeMatchUseCase) Execute(ctx context.Context, cmd RevokeMatchCommand) error {
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
	if match.Status == entities.MatchStatusRevoked {
		return nil
	}
	if match.Status != entities.MatchStatusPendingApproval && !match.IsAccepted() {
		return domainerrors.ErrMatchNotRevocable
	}

	now := uc.Clock.Now().UTC()
	swapped, err := uc.Matches.TransitionStatus(ctx, match.MatchID, match.Status, entities.MatchStatusRevoked, now)
	if err != nil {
		return err
	}
	if !swapped {
		// Raced with another transition; the reload decides whether that was
		// a concurrent revoke (fine) or something else.
		match, err = uc.Matches.GetMatch(ctx, match.MatchID)
		if err != nil {
			return err
		}
		if match.Status != entities.MatchStatusRevoked {
			return domainerrors.ErrMatchNotRevocable
		}
		return nil
	}

	if uc.Notifier != nil {
		creator, err := uc.Directory.GetCreator(ctx, match.CreatorID)
		if err == nil {
			payload := map[string]any{
				"match_id":    match.MatchID,
				"offer_title": offer.Title,
				"reason":      strings.TrimSpace(cmd.Reason),
			}
			for _, channel := range uc.EnabledChannels {
				to := creator.AddressFor(channel)
				if to == "" {
					continue
				}
				_ = uc.Notifier.Enqueue(ctx, channel, to, "match_revoked", payload)
			}
		}
	}

	logger.Info("match revoked",
		"event", "match_revoked",
		"module", "match-fulfillment/match-service",
		"layer", "application",
		"match_id", match.MatchID,
		"offer_id", match.OfferID,
	)
	return nil
}
