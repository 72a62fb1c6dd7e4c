package ports

import (
	"context"
	"time"

	"tarmac/contexts/community-gallery/notification-service/domain/entities"
)

type Repository interface {
	SaveNotification(ctx context.Context, notification entities.Notification) error
	// ListByRecipient returns newest first, capped at limit.
	ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]entities.Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int, error)
	// MarkRead only touches the recipient's own rows; anything else is NotFound.
	MarkRead(ctx context.Context, recipientID string, notificationID string) error
	MarkAllRead(ctx context.Context, recipientID string) (int, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
