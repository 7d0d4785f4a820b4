package notify

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"aegis/internal/infrastructure/persistence/models"
)

// InboxNotifier persists notifications to the user's in-app inbox.
type InboxNotifier struct {
	db *gorm.DB
}

func NewInboxNotifier(db *gorm.DB) *InboxNotifier {
	return &InboxNotifier{db: db}
}

func (n *InboxNotifier) Notify(ctx context.Context, userID uint, subject, bodyMarkdown string) error {
	model := models.NotificationModel{
		UserID:    userID,
		Subject:   subject,
		Body:      bodyMarkdown,
		CreatedAt: time.Now().UTC(),
	}
	if err := n.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to persist inbox notification: %w", err)
	}
	return nil
}

// ListUnread returns the user's unread notifications, newest first.
func (n *InboxNotifier) ListUnread(ctx context.Context, userID uint) ([]models.NotificationModel, error) {
	var notifications []models.NotificationModel
	if err := n.db.WithContext(ctx).
		Where("user_id = ? AND read_at IS NULL", userID).
		Order("created_at desc").
		Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead marks a notification as read.
func (n *InboxNotifier) MarkRead(ctx context.Context, userID, notificationID uint) error {
	now := time.Now().UTC()
	result := n.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read_at", now)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("notification %d not found for user %d", notificationID, userID)
	}
	return nil
}
