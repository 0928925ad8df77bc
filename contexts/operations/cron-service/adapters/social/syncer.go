package social

import (
	"context"
	"log/slog"
)

// NoopSyncer stands in for the social-platform profile refresh, which
// lives behind an external OAuth integration. It keeps the daily
// composite's job list complete while reporting zero work.
type NoopSyncer struct {
	Logger *slog.Logger
}

func (s NoopSyncer) Resync(_ context.Context) (int, error) {
	if s.Logger != nil {
		s.Logger.Info("profile resync skipped, no social integration configured",
			"event", "profile_resync_noop",
			"module", "operations/cron-service",
			"layer", "adapter",
		)
	}
	return 0, nil
}
