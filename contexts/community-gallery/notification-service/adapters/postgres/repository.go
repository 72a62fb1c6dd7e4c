package postgresadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"tarmac/contexts/community-gallery/notification-service/domain/entities"
	domainerrors "tarmac/contexts/community-gallery/notification-service/domain/errors"
	"tarmac/contexts/community-gallery/notification-service/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) SaveNotification(ctx context.Context, notification entities.Notification) error {
	row, err := notificationModelFromEntity(notification)
	if err != nil {
		return r.logError("notification_repo_marshal_failed", err,
			"notification_id", strings.TrimSpace(notification.NotificationID),
		)
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("notification_repo_save_failed", err,
			"notification_id", row.ID,
			"recipient_id", row.RecipientID,
		)
	}
	return nil
}

func (r *Repository) ListByRecipient(
	ctx context.Context,
	recipientID string,
	unreadOnly bool,
	limit int,
) ([]entities.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	tx := r.db.WithContext(ctx).
		Where("recipient_id = ?", strings.TrimSpace(recipientID))
	if unreadOnly {
		tx = tx.Where("read = ?", false)
	}
	var rows []notificationModel
	if err := tx.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, r.logError("notification_repo_list_failed", err,
			"recipient_id", strings.TrimSpace(recipientID),
		)
	}
	items := make([]entities.Notification, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) CountUnread(ctx context.Context, recipientID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&notificationModel{}).
		Where("recipient_id = ?", strings.TrimSpace(recipientID)).
		Where("read = ?", false).
		Count(&count).
		Error
	if err != nil {
		return 0, r.logError("notification_repo_count_unread_failed", err,
			"recipient_id", strings.TrimSpace(recipientID),
		)
	}
	return int(count), nil
}

func (r *Repository) MarkRead(ctx context.Context, recipientID string, notificationID string) error {
	result := r.db.WithContext(ctx).
		Model(&notificationModel{}).
		Where("id = ?", strings.TrimSpace(notificationID)).
		Where("recipient_id = ?", strings.TrimSpace(recipientID)).
		Update("read", true)
	if result.Error != nil {
		return r.logError("notification_repo_mark_read_failed", result.Error,
			"notification_id", strings.TrimSpace(notificationID),
			"recipient_id", strings.TrimSpace(recipientID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotificationNotFound
	}
	return nil
}

func (r *Repository) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	result := r.db.WithContext(ctx).
		Model(&notificationModel{}).
		Where("recipient_id = ?", strings.TrimSpace(recipientID)).
		Where("read = ?", false).
		Update("read", true)
	if result.Error != nil {
		return 0, r.logError("notification_repo_mark_all_read_failed", result.Error,
			"recipient_id", strings.TrimSpace(recipientID),
		)
	}
	return int(result.RowsAffected), nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "community-gallery/notification-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("notification repository operation failed", fields...)
	return err
}

type notificationModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	RecipientID string    `gorm:"column:recipient_id"`
	Type        string    `gorm:"column:type"`
	Message     string    `gorm:"column:message"`
	Payload     []byte    `gorm:"column:payload;type:jsonb"`
	Read        bool      `gorm:"column:read"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (notificationModel) TableName() string {
	return "notifications"
}

func notificationModelFromEntity(notification entities.Notification) (notificationModel, error) {
	var payload []byte
	if notification.Payload != nil {
		encoded, err := json.Marshal(notification.Payload)
		if err != nil {
			return notificationModel{}, err
		}
		payload = encoded
	}
	row := notificationModel{
		ID:          strings.TrimSpace(notification.NotificationID),
		RecipientID: strings.TrimSpace(notification.RecipientID),
		Type:        strings.TrimSpace(notification.Type),
		Message:     notification.Message,
		Payload:     payload,
		Read:        notification.Read,
		CreatedAt:   notification.CreatedAt.UTC(),
	}
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row, nil
}

func (m notificationModel) toEntity() entities.Notification {
	var payload map[string]any
	if len(m.Payload) > 0 {
		_ = json.Unmarshal(m.Payload, &payload)
	}
	return entities.Notification{
		NotificationID: m.ID,
		RecipientID:    m.RecipientID,
		Type:           m.Type,
		Message:        m.Message,
		Payload:        payload,
		Read:           m.Read,
		CreatedAt:      m.CreatedAt.UTC(),
	}
}

var _ ports.Repository = (*Repository)(nil)
