package authstate

import (
	"fmt"
	"time"

	"aegis/internal/domain/shared/events"
)

const EventTypeStateChanged = "authstate.changed"

// StateChangedEvent is emitted when a user's resolved state transitions.
type StateChangedEvent struct {
	events.BaseEvent
	UserID     uint   `json:"user_id"`
	OldState   string `json:"old_state"`
	NewState   string `json:"new_state"`
	NewStateID uint   `json:"new_state_id"`
}

func NewStateChangedEvent(userID uint, oldState, newState string, newStateID uint) StateChangedEvent {
	return StateChangedEvent{
		BaseEvent: events.BaseEvent{
			AggregateID: fmt.Sprintf("user:%d", userID),
			EventType:   EventTypeStateChanged,
			OccurredAt:  time.Now().UTC(),
		},
		UserID:     userID,
		OldState:   oldState,
		NewState:   newState,
		NewStateID: newStateID,
	}
}
