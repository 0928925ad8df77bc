package workers

import (
	"context"
	"log/slog"

	application "magnolia/contexts/match-fulfillment/match-service/application"
	"magnolia/contexts/match-fulfillment/match-service/ports"
)

// DeliverableVerifier is the daily verification pass: submitted posts that
// no longer resolve are parked for repost, and overdue unsubmitted
// deliverables trigger a reminder.
type DeliverableVerifier struct {
	Matches         ports.MatchRepository
	Deliverables    ports.DeliverableRepository
	Directory       ports.DirectoryReader
	Posts           ports.PostChecker
	Notifier        ports.Notifier
	Clock           ports.Clock
	BatchSize       int
	EnabledChannels []string
	Logger          *slog.Logger
}

type VerifierReport struct {
	Checked        int
	RepostRequired int
	Reminders      int
}

func (w DeliverableVerifier) RunOnce(ctx context.Context) (VerifierReport, error) {
	logger := application.ResolveLogger(w.Logger)
	limit := w.BatchSize
	if limit <= 0 {
		limit = 100
	}
	now := w.Clock.Now().UTC()
	report := VerifierReport{}

	submitted, err := w.Deliverables.ListSubmittedOpen(ctx, limit)
	if err != nil {
		return report, err
	}
	for _, deliverable := range submitted {
		report.Checked++
		live, err := w.Posts.IsLive(ctx, deliverable.SubmittedPermalink)
		if err != nil {
			// A checker outage is transient; the next daily pass retries.
			logger.Warn("post check failed",
				"event", "deliverable_post_check_failed",
				"module", "match-fulfillment/match-service",
				"layer", "worker",
				"match_id", deliverable.MatchID,
				"error", err.Error(),
			)
			continue
		}
		if live {
			continue
		}
		swapped, err := w.Deliverables.RequireRepost(ctx, deliverable.MatchID, "submitted content no longer available", now)
		if err != nil {
			return report, err
		}
		if !swapped {
			continue
		}
		report.RepostRequired++
		w.notify(ctx, deliverable.MatchID, "repost_required", map[string]any{
			"match_id": deliverable.MatchID,
			"reason":   "submitted content no longer available",
		})
	}

	overdue, err := w.Deliverables.ListOverdueUnsubmitted(ctx, now, limit)
	if err != nil {
		return report, err
	}
	for _, deliverable := range overdue {
		report.Reminders++
		w.notify(ctx, deliverable.MatchID, "deliverable_overdue", map[string]any{
			"match_id": deliverable.MatchID,
			"due_at":   deliverable.DueAt,
		})
	}

	logger.Info("deliverable verification completed",
		"event", "deliverable_verification_completed",
		"module", "match-fulfillment/match-service",
		"layer", "worker",
		"checked", report.Checked,
		"repost_required", report.RepostRequired,
		"reminders", report.Reminders,
	)
	return report, nil
}

func (w DeliverableVerifier) notify(ctx context.Context, matchID string, messageType string, payload map[string]any) {
	if w.Notifier == nil {
		return
	}
	match, err := w.Matches.GetMatch(ctx, matchID)
	if err != nil {
		return
	}
	creator, err := w.Directory.GetCreator(ctx, match.CreatorID)
	if err != nil {
		return
	}
	for _, channel := range w.EnabledChannels {
		if to := creator.AddressFor(channel); to != "" {
			_ = w.Notifier.Enqueue(ctx, channel, to, messageType, payload)
		}
	}
}
