package application

import (
	"context"
	"log/slog"
	"strings"

	"tarmac/contexts/community-gallery/notification-service/domain/entities"
	domainerrors "tarmac/contexts/community-gallery/notification-service/domain/errors"
	"tarmac/contexts/community-gallery/notification-service/ports"
)

const defaultListLimit = 50

type Service struct {
	Repo   ports.Repository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// Emit appends one notification. Callers treat it as fire and forget; the
// returned error exists for their logging only.
func (s Service) Emit(
	ctx context.Context,
	recipientID string,
	notifType string,
	message string,
	payload map[string]any,
) error {
	recipientID = strings.TrimSpace(recipientID)
	notifType = strings.TrimSpace(notifType)
	if recipientID == "" || notifType == "" {
		return domainerrors.ErrInvalidRequest
	}
	notificationID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	notification := entities.Notification{
		NotificationID: notificationID,
		RecipientID:    recipientID,
		Type:           notifType,
		Message:        strings.TrimSpace(message),
		Payload:        payload,
		CreatedAt:      s.Clock.Now().UTC(),
	}
	if err := s.Repo.SaveNotification(ctx, notification); err != nil {
		return err
	}
	resolveLogger(s.Logger).Debug("notification emitted",
		"event", "notification_emitted",
		"module", "community-gallery/notification-service",
		"layer", "application",
		"notification_id", notification.NotificationID,
		"recipient_id", recipientID,
		"notification_type", notifType,
	)
	return nil
}

func (s Service) List(ctx context.Context, recipientID string, unreadOnly bool) ([]entities.Notification, error) {
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return nil, domainerrors.ErrInvalidRequest
	}
	return s.Repo.ListByRecipient(ctx, recipientID, unreadOnly, defaultListLimit)
}

func (s Service) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return 0, domainerrors.ErrInvalidRequest
	}
	return s.Repo.CountUnread(ctx, recipientID)
}

func (s Service) MarkRead(ctx context.Context, recipientID string, notificationID string) error {
	recipientID = strings.TrimSpace(recipientID)
	notificationID = strings.TrimSpace(notificationID)
	if recipientID == "" || notificationID == "" {
		return domainerrors.ErrInvalidRequest
	}
	return s.Repo.MarkRead(ctx, recipientID, notificationID)
}

func (s Service) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return 0, domainerrors.ErrInvalidRequest
	}
	return s.Repo.MarkAllRead(ctx, recipientID)
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
