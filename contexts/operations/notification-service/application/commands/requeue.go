package commands

import (
	"context"
	"log/slog"

	application "magnolia/contexts/operations/notification-service/application"
	domainerrors "magnolia/contexts/operations/notification-service/domain/errors"
	"magnolia/contexts/operations/notification-service/ports"
)

type RequeueErroredCommand struct {
	NotificationID string
}

// RequeueErroredUseCase flips a terminal error row back to pending for
// another delivery attempt. Error rows never requeue on their own; this is
// the explicit operator path.
type RequeueErroredUseCase struct {
	Notifications ports.NotificationRepository
	Clock         ports.Clock
	Logger        *slog.Logger
}

func (uc RequeueErroredUseCase) Execute(ctx context.Context, cmd RequeueErroredCommand) error {
	logger := application.ResolveLogger(uc.Logger)

	if _, err := uc.Notifications.Get(ctx, cmd.NotificationID); err != nil {
		return err
	}
	requeued, err := uc.Notifications.Requeue(ctx, cmd.NotificationID, uc.Clock.Now().UTC())
	if err != nil {
		return err
	}
	if !requeued {
		return domainerrors.ErrNotRequeueable
	}

	logger.Info("notification requeued",
		"event", "notification_requeued",
		"module", "operations/notification-service",
		"layer", "application",
		"notification_id", cmd.NotificationID,
	)
	return nil
}
