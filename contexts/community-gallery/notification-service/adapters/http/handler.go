package httpadapter

import (
	"context"
	"log/slog"

	"tarmac/contexts/community-gallery/notification-service/application"
	"tarmac/contexts/community-gallery/notification-service/domain/entities"
	httptransport "tarmac/contexts/community-gallery/notification-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) ListHandler(ctx context.Context, recipientID string, unreadOnly bool) (httptransport.NotificationListResponse, error) {
	notifications, err := h.Service.List(ctx, recipientID, unreadOnly)
	if err != nil {
		return httptransport.NotificationListResponse{}, err
	}
	items := make([]httptransport.NotificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		items = append(items, mapNotification(notification))
	}
	return httptransport.NotificationListResponse{Items: items}, nil
}

func (h Handler) UnreadCountHandler(ctx context.Context, recipientID string) (httptransport.UnreadCountResponse, error) {
	count, err := h.Service.UnreadCount(ctx, recipientID)
	if err != nil {
		return httptransport.UnreadCountResponse{}, err
	}
	return httptransport.UnreadCountResponse{UnreadCount: count}, nil
}

func (h Handler) MarkReadHandler(ctx context.Context, recipientID string, notificationID string) error {
	return h.Service.MarkRead(ctx, recipientID, notificationID)
}

func (h Handler) MarkAllReadHandler(ctx context.Context, recipientID string) (httptransport.MarkAllReadResponse, error) {
	updated, err := h.Service.MarkAllRead(ctx, recipientID)
	if err != nil {
		return httptransport.MarkAllReadResponse{}, err
	}
	return httptransport.MarkAllReadResponse{UpdatedCount: updated}, nil
}

func mapNotification(notification entities.Notification) httptransport.NotificationResponse {
	return httptransport.NotificationResponse{
		NotificationID: notification.NotificationID,
		Type:           notification.Type,
		Message:        notification.Message,
		Payload:        notification.Payload,
		Read:           notification.Read,
		CreatedAt:      notification.CreatedAt,
	}
}
