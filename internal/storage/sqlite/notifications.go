package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nestsplit/nestsplit/internal/models"
	"github.com/nestsplit/nestsplit/internal/storage"
)

// CreateNotification persists an in-app notification row.
func (s *SQLiteStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt == 0 {
		n.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, household_id, kind, body, created_at, read_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.HouseholdID, string(n.Kind), n.Body, n.CreatedAt, n.ReadAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// ListNotifications retrieves a user's notifications, newest first.
func (s *SQLiteStore) ListNotifications(ctx context.Context, userID string) ([]*models.Notification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, household_id, kind, body, created_at, read_at
		 FROM notifications WHERE user_id = ?
		 ORDER BY created_at DESC, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		var kind string
		if err := rows.Scan(&n.ID, &n.UserID, &n.HouseholdID, &kind, &n.Body, &n.CreatedAt, &n.ReadAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.Kind = models.NotificationKind(kind)
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return notifications, nil
}

// MarkNotificationRead stamps a notification as read. The user id is
// part of the match so one user cannot acknowledge another's rows.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, notificationID, userID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read_at = ? WHERE id = ? AND user_id = ? AND read_at = 0",
		time.Now().Unix(), notificationID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("notification %s for user %s: %w", notificationID, userID, storage.ErrNotFound)
	}
	return nil
}
