package user

import (
	"fmt"
	"time"

	"aegis/internal/domain/shared/events"
)

const (
	EventTypeUserActivated        = "user.activated"
	EventTypeUserDeactivated      = "user.deactivated"
	EventTypeMainCharacterChanged = "user.main_character.changed"
)

type UserActivatedEvent struct {
	events.BaseEvent
	UserID    uint   `json:"user_id"`
	OldStatus string `json:"old_status"`
}

func NewUserActivatedEvent(userID uint, oldStatus string) UserActivatedEvent {
	return UserActivatedEvent{
		BaseEvent: events.BaseEvent{
			AggregateID: fmt.Sprintf("user:%d", userID),
			EventType:   EventTypeUserActivated,
			OccurredAt:  time.Now().UTC(),
		},
		UserID:    userID,
		OldStatus: oldStatus,
	}
}

// UserDeactivatedEvent drives unconditional deprovisioning of every linked
// service account.
type UserDeactivatedEvent struct {
	events.BaseEvent
	UserID    uint   `json:"user_id"`
	OldStatus string `json:"old_status"`
}

func NewUserDeactivatedEvent(userID uint, oldStatus string) UserDeactivatedEvent {
	return UserDeactivatedEvent{
		BaseEvent: events.BaseEvent{
			AggregateID: fmt.Sprintf("user:%d", userID),
			EventType:   EventTypeUserDeactivated,
			OccurredAt:  time.Now().UTC(),
		},
		UserID:    userID,
		OldStatus: oldStatus,
	}
}

// MainCharacterChangedEvent is emitted on reassignment of the profile's main
// character. NewCharacterID is zero when the main character was cleared.
type MainCharacterChangedEvent struct {
	events.BaseEvent
	UserID         uint   `json:"user_id"`
	OldCharacterID *int64 `json:"old_character_id,omitempty"`
	NewCharacterID int64  `json:"new_character_id"`
}

func NewMainCharacterChangedEvent(userID uint, oldCharacterID *int64, newCharacterID int64) MainCharacterChangedEvent {
	return MainCharacterChangedEvent{
		BaseEvent: events.BaseEvent{
			AggregateID: fmt.Sprintf("user:%d", userID),
			EventType:   EventTypeMainCharacterChanged,
			OccurredAt:  time.Now().UTC(),
		},
		UserID:         userID,
		OldCharacterID: oldCharacterID,
		NewCharacterID: newCharacterID,
	}
}
