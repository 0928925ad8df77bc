package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	application "magnolia/contexts/commerce-attribution/webhook-service/application"
	domainerrors "magnolia/contexts/commerce-attribution/webhook-service/domain/errors"
	"magnolia/contexts/commerce-attribution/webhook-service/ports"
	"magnolia/internal/shared/directory"
)

type IngestSubscriptionCommand struct {
	ShopDomain string
	// BrandID comes from metadata subject ids when present; falls back to
	// the store config resolved by shop domain.
	BrandID string
	Status  string
	Plan    string
}

type SubscriptionResult struct {
	Updated bool
}

// IngestSubscriptionUseCase applies billing-state changes from the commerce
// platform to the brand's store config.
type IngestSubscriptionUseCase struct {
	Directory ports.DirectoryReader
	Stores    ports.SubscriptionWriter
	Clock     ports.Clock
	Logger    *slog.Logger
}

func (uc IngestSubscriptionUseCase) Execute(ctx context.Context, cmd IngestSubscriptionCommand) (SubscriptionResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	brandID := strings.TrimSpace(cmd.BrandID)
	if brandID == "" {
		store, err := uc.Directory.StoreByDomain(ctx, cmd.ShopDomain)
		if err != nil {
			if errors.Is(err, directory.ErrStoreNotFound) {
				return SubscriptionResult{}, domainerrors.ErrStoreConfigMissing
			}
			return SubscriptionResult{}, err
		}
		brandID = store.BrandID
	}

	status := strings.ToLower(strings.TrimSpace(cmd.Status))
	if status == "" {
		return SubscriptionResult{}, domainerrors.ErrPayloadInvalid
	}
	if err := uc.Stores.UpdateSubscription(ctx, brandID, status, strings.TrimSpace(cmd.Plan), uc.Clock.Now().UTC()); err != nil {
		return SubscriptionResult{}, err
	}

	logger.Info("subscription webhook ingested",
		"event", "subscription_updated",
		"module", "commerce-attribution/webhook-service",
		"layer", "application",
		"brand_id", brandID,
		"status", status,
	)
	return SubscriptionResult{Updated: true}, nil
}
