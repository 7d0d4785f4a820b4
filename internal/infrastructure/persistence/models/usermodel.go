package models

import (
	"time"

	"gorm.io/gorm"

	"aegis/internal/shared/constants"
)

// UserModel is the persistence model for users. This is the anti-corruption
// layer between domain and database.
type UserModel struct {
	ID        uint   `gorm:"primarykey"`
	Email     string `gorm:"uniqueIndex;not null;size:255"`
	Name      string `gorm:"not null;size:100"`
	Status    string `gorm:"not null;default:pending;size:20;index:idx_users_status"`
	Version   int    `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (UserModel) TableName() string {
	return constants.TableUsers
}

func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.Status == "" {
		u.Status = "pending"
	}
	if u.Version == 0 {
		u.Version = 1
	}
	return nil
}

// BeforeUpdate increments the version for optimistic locking.
func (u *UserModel) BeforeUpdate(tx *gorm.DB) error {
	tx.Statement.SetColumn("version", u.Version+1)
	return nil
}

// ProfileModel persists the user's main-character selection.
type ProfileModel struct {
	ID              uint   `gorm:"primarykey"`
	UserID          uint   `gorm:"uniqueIndex;not null"`
	MainCharacterID *int64 `gorm:"index"`
	UpdatedAt       time.Time
}

func (ProfileModel) TableName() string {
	return constants.TableUserProfiles
}
