package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	application "magnolia/contexts/commerce-attribution/webhook-service/application"
	"magnolia/contexts/commerce-attribution/webhook-service/domain/entities"
	domainerrors "magnolia/contexts/commerce-attribution/webhook-service/domain/errors"
	"magnolia/contexts/commerce-attribution/webhook-service/ports"
	"magnolia/internal/shared/money"
)

type IngestOrderCommand struct {
	ShopDomain         string
	ExternalOrderID    string
	ExternalCustomerID string
	Currency           string
	// TotalPrice is the decimal string from the payload, e.g. "120.00".
	TotalPrice    string
	DiscountCodes []string
}

type IngestResult struct {
	Attributed bool
	Deduped    bool
	MatchID    string
}

// IngestOrderUseCase attributes an orders-create webhook to a match via the
// discount codes on the order. Unmatched codes are expected commerce noise.
type IngestOrderUseCase struct {
	Orders  ports.OrderRepository
	Matches ports.MatchReader
	Clock   ports.Clock
	Logger  *slog.Logger
}

func (uc IngestOrderUseCase) Execute(ctx context.Context, cmd IngestOrderCommand) (IngestResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	match, code, err := uc.resolveMatch(ctx, cmd.DiscountCodes)
	if err != nil {
		if errors.Is(err, domainerrors.ErrMatchNotFound) {
			return IngestResult{Attributed: false}, nil
		}
		return IngestResult{}, err
	}

	amountCents, err := money.ParseCents(cmd.TotalPrice)
	if err != nil {
		return IngestResult{}, domainerrors.ErrPayloadInvalid
	}

	inserted, err := uc.Orders.InsertIfAbsent(ctx, entities.AttributedOrder{
		MatchID:            match.MatchID,
		ShopDomain:         strings.TrimSpace(cmd.ShopDomain),
		ExternalOrderID:    strings.TrimSpace(cmd.ExternalOrderID),
		ExternalCustomerID: strings.TrimSpace(cmd.ExternalCustomerID),
		DiscountCode:       code,
		Currency:           strings.ToUpper(strings.TrimSpace(cmd.Currency)),
		AmountCents:        amountCents,
		CreatedAt:          uc.Clock.Now().UTC(),
	})
	if err != nil {
		return IngestResult{}, err
	}

	logger.Info("order webhook ingested",
		"event", "order_attributed",
		"module", "commerce-attribution/webhook-service",
		"layer", "application",
		"match_id", match.MatchID,
		"shop_domain", cmd.ShopDomain,
		"deduped", !inserted,
	)
	return IngestResult{Attributed: true, Deduped: !inserted, MatchID: match.MatchID}, nil
}

func (uc IngestOrderUseCase) resolveMatch(ctx context.Context, codes []string) (ports.MatchRef, string, error) {
	for _, raw := range codes {
		code := strings.TrimSpace(raw)
		if code == "" {
			continue
		}
		match, err := uc.Matches.GetByCode(ctx, code)
		if err == nil {
			return match, code, nil
		}
		if !errors.Is(err, domainerrors.ErrMatchNotFound) {
			return ports.MatchRef{}, "", err
		}
	}
	return ports.MatchRef{}, "", domainerrors.ErrMatchNotFound
}
