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

type IngestRefundCommand struct {
	ShopDomain       string
	ExternalRefundID string
	ExternalOrderID  string
	Currency         string
	// Amounts are the refund's transaction amounts; they sum in cents so a
	// multi-transaction refund never loses a fraction.
	Amounts []string
}

// IngestRefundUseCase attributes a refunds-create webhook through the
// attributed order it reverses. A refund arriving before (or without) its
// order is tolerated: webhook deliveries carry no ordering guarantee, and
// an unattributed order will never surface in the aggregator anyway.
type IngestRefundUseCase struct {
	Orders  ports.OrderRepository
	Refunds ports.RefundRepository
	Clock   ports.Clock
	Logger  *slog.Logger
}

func (uc IngestRefundUseCase) Execute(ctx context.Context, cmd IngestRefundCommand) (IngestResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	order, err := uc.Orders.GetByExternalOrder(ctx, cmd.ShopDomain, cmd.ExternalOrderID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrOrderNotFound) {
			return IngestResult{Attributed: false}, nil
		}
		return IngestResult{}, err
	}

	var amountCents int64
	for _, amount := range cmd.Amounts {
		cents, err := money.ParseCents(amount)
		if err != nil {
			return IngestResult{}, domainerrors.ErrPayloadInvalid
		}
		amountCents += cents
	}

	inserted, err := uc.Refunds.InsertIfAbsent(ctx, entities.AttributedRefund{
		MatchID:          order.MatchID,
		ShopDomain:       strings.TrimSpace(cmd.ShopDomain),
		ExternalRefundID: strings.TrimSpace(cmd.ExternalRefundID),
		ExternalOrderID:  strings.TrimSpace(cmd.ExternalOrderID),
		Currency:         strings.ToUpper(strings.TrimSpace(cmd.Currency)),
		AmountCents:      amountCents,
		CreatedAt:        uc.Clock.Now().UTC(),
	})
	if err != nil {
		return IngestResult{}, err
	}

	logger.Info("refund webhook ingested",
		"event", "refund_attributed",
		"module", "commerce-attribution/webhook-service",
		"layer", "application",
		"match_id", order.MatchID,
		"shop_domain", cmd.ShopDomain,
		"deduped", !inserted,
	)
	return IngestResult{Attributed: true, Deduped: !inserted, MatchID: order.MatchID}, nil
}
