package models

import (
	"time"

	"gorm.io/datatypes"

	"aegis/internal/shared/constants"
)

// StateModel persists authorization state definitions. The membership
// allow-lists are JSON arrays of external IDs.
type StateModel struct {
	ID              uint   `gorm:"primarykey"`
	Name            string `gorm:"uniqueIndex;not null;size:100"`
	Priority        int    `gorm:"not null;index:idx_auth_states_priority"`
	Public          bool   `gorm:"not null;default:false"`
	CharacterIDs    datatypes.JSON
	OrganizationIDs datatypes.JSON
	AllianceIDs     datatypes.JSON
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (StateModel) TableName() string {
	return constants.TableAuthStates
}

// UserStateModel records the single state each user currently holds.
type UserStateModel struct {
	UserID    uint `gorm:"primarykey"`
	StateID   uint `gorm:"not null;index:idx_user_states_state"`
	UpdatedAt time.Time
}

func (UserStateModel) TableName() string {
	return constants.TableUserStates
}
