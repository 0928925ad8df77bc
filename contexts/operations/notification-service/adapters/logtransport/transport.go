package logtransport

import (
	"context"
	"log/slog"
)

// Transport writes outbound messages to the structured log instead of a
// real delivery provider. The default until a provider is wired.
type Transport struct {
	Logger *slog.Logger
}

func (t Transport) Send(_ context.Context, channel string, to string, subject string, _ string) error {
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("notification delivered to log",
		"event", "notification_log_delivery",
		"module", "operations/notification-service",
		"layer", "adapter",
		"channel", channel,
		"to", to,
		"subject", subject,
	)
	return nil
}
