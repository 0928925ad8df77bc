package commands

import (
	"context"
	"log/slog"
	"strings"

	application "magnolia/contexts/operations/notification-service/application"
	"magnolia/contexts/operations/notification-service/domain/entities"
	"magnolia/contexts/operations/notification-service/ports"
)

type EnqueueCommand struct {
	Channel     string
	To          string
	MessageType string
	Payload     map[string]any
}

// EnqueueUseCase inserts a pending row. It is deliberately cheap and
// synchronous; callers on business transitions swallow its errors.
type EnqueueUseCase struct {
	Notifications ports.NotificationRepository
	Clock         ports.Clock
	IDs           ports.IDGenerator
	Logger        *slog.Logger
}

func (uc EnqueueUseCase) Execute(ctx context.Context, cmd EnqueueCommand) error {
	logger := application.ResolveLogger(uc.Logger)

	notificationID, err := uc.IDs.NewID(ctx)
	if err != nil {
		return err
	}
	notification := entities.Notification{
		NotificationID: notificationID,
		Channel:        strings.TrimSpace(cmd.Channel),
		To:             strings.TrimSpace(cmd.To),
		MessageType:    strings.TrimSpace(cmd.MessageType),
		Payload:        cmd.Payload,
		Status:         entities.NotificationStatusPending,
		CreatedAt:      uc.Clock.Now().UTC(),
	}
	if err := uc.Notifications.Insert(ctx, notification); err != nil {
		return err
	}

	logger.Info("notification enqueued",
		"event", "notification_enqueued",
		"module", "operations/notification-service",
		"layer", "application",
		"notification_id", notificationID,
		"channel", notification.Channel,
		"message_type", notification.MessageType,
	)
	return nil
}
