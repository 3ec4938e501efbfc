package service

import (
	"context"

	"github.com/nestsplit/nestsplit/internal/models"
	"github.com/nestsplit/nestsplit/internal/storage"
)

// NotificationService exposes a user's in-app notification feed.
type NotificationService struct {
	store storage.Store
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(store storage.Store) *NotificationService {
	return &NotificationService{store: store}
}

// List retrieves the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string) ([]*models.Notification, error) {
	return s.store.ListNotifications(ctx, userID)
}

// MarkRead acknowledges one notification. Acknowledging someone else's
// notification, or one already read, fails with storage.ErrNotFound.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.store.MarkNotificationRead(ctx, notificationID, userID)
}
