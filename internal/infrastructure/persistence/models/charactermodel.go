package models

import (
	"time"

	"aegis/internal/shared/constants"
)

// CharacterModel persists game-world character reference data.
type CharacterModel struct {
	ID             uint   `gorm:"primarykey"`
	CharacterID    int64  `gorm:"uniqueIndex;not null"`
	Name           string `gorm:"not null;size:255"`
	OrganizationID int64  `gorm:"index:idx_characters_organization"`
	AllianceID     int64  `gorm:"index:idx_characters_alliance"`
	UpdatedAt      time.Time
}

func (CharacterModel) TableName() string {
	return constants.TableCharacters
}

// OwnershipModel persists the character-ownership history. Rows are closed
// out via SupersededAt, never deleted.
type OwnershipModel struct {
	ID           uint   `gorm:"primarykey"`
	CharacterID  int64  `gorm:"not null;index:idx_ownerships_character"`
	UserID       uint   `gorm:"not null;index:idx_ownerships_user"`
	Proof        string `gorm:"not null;size:20"`
	CreatedAt    time.Time
	SupersededAt *time.Time `gorm:"index"`
}

func (OwnershipModel) TableName() string {
	return constants.TableOwnerships
}

// OrganizationModel persists organization reference data.
type OrganizationModel struct {
	ID             uint   `gorm:"primarykey"`
	OrganizationID int64  `gorm:"uniqueIndex;not null"`
	Name           string `gorm:"not null;size:255"`
	Ticker         string `gorm:"size:10"`
	AllianceID     int64  `gorm:"index"`
	UpdatedAt      time.Time
}

func (OrganizationModel) TableName() string {
	return constants.TableOrganizations
}

// AllianceModel persists alliance reference data.
type AllianceModel struct {
	ID         uint   `gorm:"primarykey"`
	AllianceID int64  `gorm:"uniqueIndex;not null"`
	Name       string `gorm:"not null;size:255"`
	Ticker     string `gorm:"size:10"`
	UpdatedAt  time.Time
}

func (AllianceModel) TableName() string {
	return constants.TableAlliances
}
