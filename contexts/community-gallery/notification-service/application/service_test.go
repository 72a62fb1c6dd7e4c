package application

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"tarmac/contexts/community-gallery/notification-service/adapters/memory"
	domainerrors "tarmac/contexts/community-gallery/notification-service/domain/errors"
)

func newService() (Service, *memory.Store) {
	store := memory.NewStore()
	return Service{Repo: store, Clock: store, IDGen: store}, store
}

func TestEmitAndListNewestFirst(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := service.Emit(ctx, "user-1", "photo_sent", fmt.Sprintf("message %d", i), map[string]any{"index": i})
		if err != nil {
			t.Fatalf("emit: %v", err)
		}
	}
	if err := service.Emit(ctx, "user-2", "photo_sent", "not yours", nil); err != nil {
		t.Fatalf("emit for other user: %v", err)
	}

	items, err := service.List(ctx, "user-1", false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 notifications for user-1, got %d", len(items))
	}
}

func TestEmitRejectsEmptyRecipient(t *testing.T) {
	service, _ := newService()
	err := service.Emit(context.Background(), "  ", "photo_sent", "hello", nil)
	if !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestUnreadCountAndMarkRead(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	if err := service.Emit(ctx, "user-1", "photo_approved", "approved", nil); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if err := service.Emit(ctx, "user-1", "photo_rejected", "rejected", nil); err != nil {
		t.Fatalf("emit: %v", err)
	}

	count, err := service.UnreadCount(ctx, "user-1")
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 unread, got %d", count)
	}

	items, err := service.List(ctx, "user-1", true)
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	if err := service.MarkRead(ctx, "user-1", items[0].NotificationID); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	count, err = service.UnreadCount(ctx, "user-1")
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 unread after mark read, got %d", count)
	}
}

func TestMarkReadIsRecipientScoped(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	if err := service.Emit(ctx, "user-1", "photo_sent", "mine", nil); err != nil {
		t.Fatalf("emit: %v", err)
	}
	items, err := service.List(ctx, "user-1", false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	err = service.MarkRead(ctx, "user-2", items[0].NotificationID)
	if !errors.Is(err, domainerrors.ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound for foreign recipient, got %v", err)
	}
}

func TestMarkAllRead(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if err := service.Emit(ctx, "user-1", "photo_sent", "queued", nil); err != nil {
			t.Fatalf("emit: %v", err)
		}
	}
	updated, err := service.MarkAllRead(ctx, "user-1")
	if err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if updated != 4 {
		t.Fatalf("expected 4 updated, got %d", updated)
	}
	count, err := service.UnreadCount(ctx, "user-1")
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 unread, got %d", count)
	}
}
