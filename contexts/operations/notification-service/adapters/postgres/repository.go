package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"magnolia/contexts/operations/notification-service/domain/entities"
	domainerrors "magnolia/contexts/operations/notification-service/domain/errors"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

func (r *Repository) Insert(ctx context.Context, notification entities.Notification) error {
	model, err := toModel(notification)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *Repository) Get(ctx context.Context, notificationID string) (entities.Notification, error) {
	var model notificationModel
	err := r.db.WithContext(ctx).
		Where("notification_id = ?", notificationID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.Notification{}, domainerrors.ErrNotificationNotFound
	}
	if err != nil {
		return entities.Notification{}, err
	}
	return model.toEntity()
}

func (r *Repository) ListPending(ctx context.Context, limit int) ([]entities.Notification, error) {
	var models []notificationModel
	err := r.db.WithContext(ctx).
		Where("status = ?", string(entities.NotificationStatusPending)).
		Order("created_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	notifications := make([]entities.Notification, 0, len(models))
	for _, model := range models {
		notification, err := model.toEntity()
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}
	return notifications, nil
}

func (r *Repository) MarkSent(ctx context.Context, notificationID string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&notificationModel{}).
		Where("notification_id = ? AND status = ?", notificationID, string(entities.NotificationStatusPending)).
		Updates(map[string]any{
			"status":     string(entities.NotificationStatusSent),
			"last_error": "",
			"sent_at":    at,
			"updated_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) MarkError(ctx context.Context, notificationID string, message string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&notificationModel{}).
		Where("notification_id = ? AND status = ?", notificationID, string(entities.NotificationStatusPending)).
		Updates(map[string]any{
			"status":     string(entities.NotificationStatusError),
			"last_error": message,
			"updated_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) Requeue(ctx context.Context, notificationID string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&notificationModel{}).
		Where("notification_id = ? AND status = ?", notificationID, string(entities.NotificationStatusError)).
		Updates(map[string]any{
			"status":     string(entities.NotificationStatusPending),
			"updated_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

type notificationModel struct {
	NotificationID string `gorm:"primaryKey;column:notification_id"`
	Channel        string `gorm:"column:channel"`
	To             string `gorm:"column:recipient"`
	MessageType    string `gorm:"column:message_type"`
	Payload        string `gorm:"column:payload;type:jsonb"`
	Status         string `gorm:"column:status;index"`
	LastError      string `gorm:"column:last_error"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	SentAt         *time.Time `gorm:"column:sent_at"`
}

func (notificationModel) TableName() string {
	return "notifications"
}

func toModel(notification entities.Notification) (notificationModel, error) {
	payload := "{}"
	if notification.Payload != nil {
		raw, err := json.Marshal(notification.Payload)
		if err != nil {
			return notificationModel{}, err
		}
		payload = string(raw)
	}
	return notificationModel{
		NotificationID: notification.NotificationID,
		Channel:        notification.Channel,
		To:             notification.To,
		MessageType:    notification.MessageType,
		Payload:        payload,
		Status:         string(notification.Status),
		LastError:      notification.LastError,
		CreatedAt:      notification.CreatedAt,
		UpdatedAt:      notification.CreatedAt,
		SentAt:         notification.SentAt,
	}, nil
}

func (m notificationModel) toEntity() (entities.Notification, error) {
	var payload map[string]any
	if m.Payload != "" {
		if err := json.Unmarshal([]byte(m.Payload), &payload); err != nil {
			return entities.Notification{}, err
		}
	}
	return entities.Notification{
		NotificationID: m.NotificationID,
		Channel:        m.Channel,
		To:             m.To,
		MessageType:    m.MessageType,
		Payload:        payload,
		Status:         entities.NotificationStatus(m.Status),
		LastError:      m.LastError,
		CreatedAt:      m.CreatedAt,
		SentAt:         m.SentAt,
	}, nil
}
