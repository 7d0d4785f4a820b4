package models

import (
	"time"

	"aegis/internal/shared/constants"
)

// CredentialModel persists password hashes for users who use password login.
type CredentialModel struct {
	ID           uint   `gorm:"primarykey"`
	UserID       uint   `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null;size:255"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (CredentialModel) TableName() string {
	return constants.TableUserCredentials
}
