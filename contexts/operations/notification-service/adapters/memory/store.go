package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"magnolia/contexts/operations/notification-service/domain/entities"
	domainerrors "magnolia/contexts/operations/notification-service/domain/errors"
)

// Store is the in-memory repository used by tests and local wiring. It
// mirrors the guarded status updates of the postgres adapter.
type Store struct {
	mu            sync.Mutex
	notifications map[string]entities.Notification
	idSeq         int
	now           time.Time
}

func NewStore() *Store {
	return &Store{
		notifications: make(map[string]entities.Notification),
		now:           time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *Store) Insert(_ context.Context, notification entities.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[notification.NotificationID] = notification
	return nil
}

func (s *Store) Get(_ context.Context, notificationID string) (entities.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	notification, exists := s.notifications[notificationID]
	if !exists {
		return entities.Notification{}, domainerrors.ErrNotificationNotFound
	}
	return notification, nil
}

func (s *Store) ListPending(_ context.Context, limit int) ([]entities.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pending []entities.Notification
	for _, notification := range s.notifications {
		if notification.Status == entities.NotificationStatusPending {
			pending = append(pending, notification)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if pending[i].CreatedAt.Equal(pending[j].CreatedAt) {
			return pending[i].NotificationID < pending[j].NotificationID
		}
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (s *Store) MarkSent(_ context.Context, notificationID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	notification, exists := s.notifications[notificationID]
	if !exists || notification.Status != entities.NotificationStatusPending {
		return false, nil
	}
	sentAt := at
	notification.Status = entities.NotificationStatusSent
	notification.LastError = ""
	notification.SentAt = &sentAt
	s.notifications[notificationID] = notification
	return true, nil
}

func (s *Store) MarkError(_ context.Context, notificationID string, message string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	notification, exists := s.notifications[notificationID]
	if !exists || notification.Status != entities.NotificationStatusPending {
		return false, nil
	}
	_ = at
	notification.Status = entities.NotificationStatusError
	notification.LastError = message
	s.notifications[notificationID] = notification
	return true, nil
}

func (s *Store) Requeue(_ context.Context, notificationID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	notification, exists := s.notifications[notificationID]
	if !exists || notification.Status != entities.NotificationStatusError {
		return false, nil
	}
	_ = at
	notification.Status = entities.NotificationStatusPending
	s.notifications[notificationID] = notification
	return true, nil
}

// All returns every stored notification, for test assertions.
func (s *Store) All() []entities.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]entities.Notification, 0, len(s.notifications))
	for _, notification := range s.notifications {
		all = append(all, notification)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].NotificationID < all[j].NotificationID
	})
	return all
}

func (s *Store) NewID(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idSeq++
	return fmt.Sprintf("id-%04d", s.idSeq), nil
}

func (s *Store) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
