package httpadapter

import (
	"context"
	"log/slog"

	"magnolia/contexts/operations/notification-service/application/commands"
	httptransport "magnolia/contexts/operations/notification-service/transport/http"
)

type Handler struct {
	Requeue commands.RequeueErroredUseCase
	Logger  *slog.Logger
}

// RequeueHandler is the operator path for terminal error rows.
func (h Handler) RequeueHandler(ctx context.Context, notificationID string) (httptransport.RequeueResponse, error) {
	err := h.Requeue.Execute(ctx, commands.RequeueErroredCommand{NotificationID: notificationID})
	if err != nil {
		return httptransport.RequeueResponse{}, err
	}
	return httptransport.RequeueResponse{OK: true}, nil
}
