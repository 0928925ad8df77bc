package workers

import (
	"context"
	"fmt"
	"log/slog"

	application "magnolia/contexts/operations/notification-service/application"
	domainerrors "magnolia/contexts/operations/notification-service/domain/errors"
	"magnolia/contexts/operations/notification-service/ports"
)

const defaultDispatchBatch = 50

type DispatchReport struct {
	Selected int
	Sent     int
	Failed   int
}

// Dispatcher is the polling delivery loop: a bounded oldest-first batch of
// pending rows, each rendered and sent independently. One failing message
// marks its own row and never blocks the rest of the batch.
type Dispatcher struct {
	Notifications ports.NotificationRepository
	Transport     ports.Transport
	Templates     map[string]application.MessageTemplate
	Clock         ports.Clock
	BatchSize     int
	Logger        *slog.Logger
}

func (w Dispatcher) RunOnce(ctx context.Context) (DispatchReport, error) {
	logger := application.ResolveLogger(w.Logger)
	batch := w.BatchSize
	if batch <= 0 {
		batch = defaultDispatchBatch
	}
	templates := w.Templates
	if templates == nil {
		templates = application.DefaultTemplates()
	}

	pending, err := w.Notifications.ListPending(ctx, batch)
	if err != nil {
		return DispatchReport{}, err
	}

	report := DispatchReport{Selected: len(pending)}
	for _, notification := range pending {
		if err := w.deliver(ctx, templates, notification.Channel, notification.To, notification.MessageType, notification.Payload); err != nil {
			report.Failed++
			if _, markErr := w.Notifications.MarkError(ctx, notification.NotificationID, err.Error(), w.Clock.Now().UTC()); markErr != nil {
				logger.Error("notification error mark failed",
					"event", "notification_mark_failed",
					"module", "operations/notification-service",
					"layer", "application",
					"notification_id", notification.NotificationID,
					"error", markErr.Error(),
				)
			}
			continue
		}
		if _, err := w.Notifications.MarkSent(ctx, notification.NotificationID, w.Clock.Now().UTC()); err != nil {
			logger.Error("notification sent mark failed",
				"event", "notification_mark_failed",
				"module", "operations/notification-service",
				"layer", "application",
				"notification_id", notification.NotificationID,
				"error", err.Error(),
			)
			report.Failed++
			continue
		}
		report.Sent++
	}

	logger.Info("notification dispatch finished",
		"event", "notification_dispatch_finished",
		"module", "operations/notification-service",
		"layer", "application",
		"selected", report.Selected,
		"sent", report.Sent,
		"failed", report.Failed,
	)
	return report, nil
}

func (w Dispatcher) deliver(
	ctx context.Context,
	templates map[string]application.MessageTemplate,
	channel string,
	to string,
	messageType string,
	payload map[string]any,
) error {
	tmpl, exists := templates[messageType]
	if !exists {
		return fmt.Errorf("%w: %s", domainerrors.ErrNoTemplate, messageType)
	}
	subject, body, err := tmpl.Render(payload)
	if err != nil {
		return err
	}
	return w.Transport.Send(ctx, channel, to, subject, body)
}
