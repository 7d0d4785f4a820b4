package character

import (
	"fmt"
	"time"

	"aegis/internal/domain/shared/events"
)

const (
	EventTypeAffiliationChanged   = "character.affiliation.changed"
	EventTypeOwnershipTransferred = "character.ownership.transferred"
)

// AffiliationChangedEvent is emitted when a character's organization or
// alliance changes during a provider refresh.
type AffiliationChangedEvent struct {
	events.BaseEvent
	CharacterID       int64 `json:"character_id"`
	OldOrganizationID int64 `json:"old_organization_id"`
	NewOrganizationID int64 `json:"new_organization_id"`
	NewAllianceID     int64 `json:"new_alliance_id"`
}

func NewAffiliationChangedEvent(characterID, oldOrgID, newOrgID, newAllianceID int64) AffiliationChangedEvent {
	return AffiliationChangedEvent{
		BaseEvent: events.BaseEvent{
			AggregateID: fmt.Sprintf("character:%d", characterID),
			EventType:   EventTypeAffiliationChanged,
			OccurredAt:  time.Now().UTC(),
		},
		CharacterID:       characterID,
		OldOrganizationID: oldOrgID,
		NewOrganizationID: newOrgID,
		NewAllianceID:     newAllianceID,
	}
}

// OwnershipTransferredEvent is emitted when a stronger proof takes a
// character away from its previous owner.
type OwnershipTransferredEvent struct {
	events.BaseEvent
	CharacterID int64 `json:"character_id"`
	OldUserID   uint  `json:"old_user_id"`
	NewUserID   uint  `json:"new_user_id"`
}

func NewOwnershipTransferredEvent(characterID int64, oldUserID, newUserID uint) OwnershipTransferredEvent {
	return OwnershipTransferredEvent{
		BaseEvent: events.BaseEvent{
			AggregateID: fmt.Sprintf("character:%d", characterID),
			EventType:   EventTypeOwnershipTransferred,
			OccurredAt:  time.Now().UTC(),
		},
		CharacterID: characterID,
		OldUserID:   oldUserID,
		NewUserID:   newUserID,
	}
}
