package group

import (
	"fmt"
	"time"

	"aegis/internal/domain/shared/events"
)

const EventTypeMembershipChanged = "group.membership.changed"

// MembershipChangedEvent is emitted when a user is added to or removed from
// any internal group, in either direction.
type MembershipChangedEvent struct {
	events.BaseEvent
	UserID  uint   `json:"user_id"`
	GroupID uint   `json:"group_id"`
	Group   string `json:"group"`
	Added   bool   `json:"added"`
}

func NewMembershipChangedEvent(userID, groupID uint, groupName string, added bool) MembershipChangedEvent {
	return MembershipChangedEvent{
		BaseEvent: events.BaseEvent{
			AggregateID: fmt.Sprintf("user:%d", userID),
			EventType:   EventTypeMembershipChanged,
			OccurredAt:  time.Now().UTC(),
		},
		UserID:  userID,
		GroupID: groupID,
		Group:   groupName,
		Added:   added,
	}
}
