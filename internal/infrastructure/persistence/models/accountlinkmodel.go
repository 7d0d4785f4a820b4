package models

import (
	"time"

	"aegis/internal/shared/constants"
)

// AccountLinkModel persists service account links. One link per
// (user, service) pair.
type AccountLinkModel struct {
	ID           uint   `gorm:"primarykey"`
	UserID       uint   `gorm:"not null;uniqueIndex:idx_links_user_service"`
	Service      string `gorm:"not null;size:50;uniqueIndex:idx_links_user_service;index:idx_links_service"`
	RemoteID     string `gorm:"size:255"`
	RemoteName   string `gorm:"size:255"`
	Status       string `gorm:"not null;default:pending;size:20"`
	FailCount    int    `gorm:"not null;default:0"`
	CreatedAt    time.Time
	LastSyncedAt *time.Time
}

func (AccountLinkModel) TableName() string {
	return constants.TableAccountLinks
}

// NotificationModel persists user-facing inbox notifications.
type NotificationModel struct {
	ID        uint   `gorm:"primarykey"`
	UserID    uint   `gorm:"not null;index:idx_notifications_user"`
	Subject   string `gorm:"not null;size:255"`
	Body      string `gorm:"type:text"`
	ReadAt    *time.Time
	CreatedAt time.Time
}

func (NotificationModel) TableName() string {
	return constants.TableNotifications
}
