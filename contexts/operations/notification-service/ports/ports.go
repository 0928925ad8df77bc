package ports

import (
	"context"
	"time"

	"magnolia/contexts/operations/notification-service/domain/entities"
)

type NotificationRepository interface {
	Insert(ctx context.Context, notification entities.Notification) error
	Get(ctx context.Context, notificationID string) (entities.Notification, error)
	// ListPending returns pending rows oldest-first, bounded by limit.
	ListPending(ctx context.Context, limit int) ([]entities.Notification, error)
	MarkSent(ctx context.Context, notificationID string, at time.Time) (bool, error)
	MarkError(ctx context.Context, notificationID string, message string, at time.Time) (bool, error)
	// Requeue flips an error row back to pending; reports false when the
	// row is not in error.
	Requeue(ctx context.Context, notificationID string, at time.Time) (bool, error)
}

// Transport is the out-of-scope delivery collaborator: email, SMS or
// WhatsApp behind one send call.
type Transport interface {
	Send(ctx context.Context, channel string, to string, subject string, body string) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
