package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"tarmac/contexts/community-gallery/notification-service/domain/entities"
	domainerrors "tarmac/contexts/community-gallery/notification-service/domain/errors"
	"tarmac/contexts/community-gallery/notification-service/ports"

	"github.com/google/uuid"
)

type Store struct {
	mu            sync.RWMutex
	notifications map[string]entities.Notification
}

func NewStore() *Store {
	return &Store{
		notifications: make(map[string]entities.Notification),
	}
}

func (s *Store) SaveNotification(_ context.Context, notification entities.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[strings.TrimSpace(notification.NotificationID)] = notification
	return nil
}

func (s *Store) ListByRecipient(
	_ context.Context,
	recipientID string,
	unreadOnly bool,
	limit int,
) ([]entities.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 50
	}
	items := make([]entities.Notification, 0)
	for _, notification := range s.notifications {
		if !strings.EqualFold(notification.RecipientID, strings.TrimSpace(recipientID)) {
			continue
		}
		if unreadOnly && notification.Read {
			continue
		}
		items = append(items, notification)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) CountUnread(_ context.Context, recipientID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, notification := range s.notifications {
		if strings.EqualFold(notification.RecipientID, strings.TrimSpace(recipientID)) && !notification.Read {
			count++
		}
	}
	return count, nil
}

func (s *Store) MarkRead(_ context.Context, recipientID string, notificationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.TrimSpace(notificationID)
	notification, ok := s.notifications[key]
	if !ok || !strings.EqualFold(notification.RecipientID, strings.TrimSpace(recipientID)) {
		return domainerrors.ErrNotificationNotFound
	}
	notification.Read = true
	s.notifications[key] = notification
	return nil
}

func (s *Store) MarkAllRead(_ context.Context, recipientID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated := 0
	for key, notification := range s.notifications {
		if !strings.EqualFold(notification.RecipientID, strings.TrimSpace(recipientID)) {
			continue
		}
		if notification.Read {
			continue
		}
		notification.Read = true
		s.notifications[key] = notification
		updated++
	}
	return updated, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var (
	_ ports.Repository  = (*Store)(nil)
	_ ports.Clock       = (*Store)(nil)
	_ ports.IDGenerator = (*Store)(nil)
)
