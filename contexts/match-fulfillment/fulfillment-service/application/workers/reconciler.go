package workers

import (
	"context"
	"log/slog"

	application "magnolia/contexts/match-fulfillment/fulfillment-service/application"
	"magnolia/contexts/match-fulfillment/fulfillment-service/application/commands"
	"magnolia/contexts/match-fulfillment/fulfillment-service/ports"
)

const defaultReconcileBatch = 50

type ReconcileReport struct {
	Scanned int
	Clean   int
	Failed  int
}

// Reconciler sweeps matches whose fulfillment stalled: order records stuck
// in pending, draft_created or error, plus accepted matches that never got
// a discount. Each match goes back through the regular runner.
type Reconciler struct {
	Records   ports.RecordRepository
	Discounts ports.DiscountRepository
	Runner    commands.RunFulfillmentUseCase
	BatchSize int
	Logger    *slog.Logger
}

func (w Reconciler) RunOnce(ctx context.Context) (ReconcileReport, error) {
	logger := application.ResolveLogger(w.Logger)
	batch := w.BatchSize
	if batch <= 0 {
		batch = defaultReconcileBatch
	}

	pending := make(map[string]struct{})
	records, err := w.Records.ListRetryable(ctx, batch)
	if err != nil {
		return ReconcileReport{}, err
	}
	for _, record := range records {
		pending[record.MatchID] = struct{}{}
	}
	missing, err := w.Discounts.ListAcceptedMatchesMissingDiscount(ctx, batch)
	if err != nil {
		return ReconcileReport{}, err
	}
	for _, matchID := range missing {
		pending[matchID] = struct{}{}
	}

	report := ReconcileReport{Scanned: len(pending)}
	for matchID := range pending {
		run, err := w.Runner.Run(ctx, matchID)
		if err != nil || len(run.Errors) > 0 {
			report.Failed++
			fields := []any{
				"event", "fulfillment_reconcile_failed",
				"module", "match-fulfillment/fulfillment-service",
				"layer", "application",
				"match_id", matchID,
			}
			if err != nil {
				fields = append(fields, "error", err.Error())
			} else {
				fields = append(fields, "errors", run.Errors)
			}
			logger.Warn("fulfillment reconcile failed", fields...)
			continue
		}
		report.Clean++
	}

	logger.Info("fulfillment reconcile finished",
		"event", "fulfillment_reconcile_finished",
		"module", "match-fulfillment/fulfillment-service",
		"layer", "application",
		"scanned", report.Scanned,
		"clean", report.Clean,
		"failed", report.Failed,
	)
	return report, nil
}
