package models

import (
	"time"

	"gorm.io/datatypes"

	"aegis/internal/shared/constants"
)

// GroupModel persists internal groups. The unique name index is the guard
// against two auto-group sources silently merging after sanitization.
type GroupModel struct {
	ID          uint   `gorm:"primarykey"`
	Name        string `gorm:"uniqueIndex;not null;size:255"`
	Description string `gorm:"size:500"`
	Source      string `gorm:"not null;default:manual;size:20"`
	RuleID      *uint  `gorm:"index:idx_groups_rule"`
	SourceRefID *int64
	CreatedAt   time.Time
}

func (GroupModel) TableName() string {
	return constants.TableGroups
}

// StateGroupBindingModel persists fixed state-to-group bindings.
type StateGroupBindingModel struct {
	ID      uint `gorm:"primarykey"`
	StateID uint `gorm:"not null;uniqueIndex:idx_bindings_state_group"`
	GroupID uint `gorm:"not null;uniqueIndex:idx_bindings_state_group"`
}

func (StateGroupBindingModel) TableName() string {
	return constants.TableStateGroupBinds
}

// GroupMembershipModel persists direct user-group memberships.
type GroupMembershipModel struct {
	ID        uint `gorm:"primarykey"`
	GroupID   uint `gorm:"not null;uniqueIndex:idx_memberships_group_user"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_memberships_group_user;index:idx_memberships_user"`
	CreatedAt time.Time
}

func (GroupMembershipModel) TableName() string {
	return constants.TableGroupMemberships
}

// AutoGroupRuleModel persists auto-group rules. StateIDs is a JSON array;
// empty means the rule applies to every state.
type AutoGroupRuleModel struct {
	ID               uint   `gorm:"primarykey"`
	Scope            string `gorm:"not null;size:20"`
	Template         string `gorm:"not null;size:255"`
	NameSource       string `gorm:"not null;default:name;size:20"`
	ReplaceSpaces    bool   `gorm:"not null;default:false"`
	SpaceReplacement string `gorm:"size:10"`
	StateIDs         datatypes.JSON
	Enabled          bool `gorm:"not null;default:true"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (AutoGroupRuleModel) TableName() string {
	return constants.TableAutoGroupRules
}
