// Package triggers wires domain events to reconciliation scheduling. Every
// mutation that can change a user's entitlements lands here and turns into a
// dispatcher task; the periodic sweep covers anything that slips through.
package triggers

import (
	"context"

	"aegis/internal/domain/authstate"
	"aegis/internal/domain/character"
	"aegis/internal/domain/group"
	"aegis/internal/domain/shared/events"
	"aegis/internal/domain/user"
	"aegis/internal/shared/logger"
)

// Scheduler enqueues reconciliation tasks.
type Scheduler interface {
	ScheduleAll(userID uint)
}

// Register subscribes the reaction handlers on the event dispatcher. The
// ownership repository maps character-level events back to the owning user.
func Register(
	subscriber events.EventSubscriber,
	scheduler Scheduler,
	ownerships character.OwnershipRepository,
	log logger.Interface,
) error {
	t := &triggers{
		scheduler:  scheduler,
		ownerships: ownerships,
		logger:     log.Named("triggers"),
	}

	subscriptions := map[string]func(events.DomainEvent) error{
		authstate.EventTypeStateChanged:         t.onStateChanged,
		user.EventTypeUserActivated:             t.onUserActivated,
		user.EventTypeUserDeactivated:           t.onUserDeactivated,
		user.EventTypeMainCharacterChanged:      t.onMainCharacterChanged,
		group.EventTypeMembershipChanged:        t.onMembershipChanged,
		character.EventTypeAffiliationChanged:   t.onAffiliationChanged,
		character.EventTypeOwnershipTransferred: t.onOwnershipTransferred,
	}

	for eventType, fn := range subscriptions {
		if err := subscriber.Subscribe(eventType, events.NewHandlerFunc(eventType, fn)); err != nil {
			return err
		}
	}
	return nil
}

type triggers struct {
	scheduler  Scheduler
	ownerships character.OwnershipRepository
	logger     logger.Interface
}

func (t *triggers) onStateChanged(event events.DomainEvent) error {
	if e, ok := event.(authstate.StateChangedEvent); ok {
		t.scheduler.ScheduleAll(e.UserID)
	}
	return nil
}

func (t *triggers) onUserActivated(event events.DomainEvent) error {
	if e, ok := event.(user.UserActivatedEvent); ok {
		t.scheduler.ScheduleAll(e.UserID)
	}
	return nil
}

func (t *triggers) onUserDeactivated(event events.DomainEvent) error {
	if e, ok := event.(user.UserDeactivatedEvent); ok {
		t.scheduler.ScheduleAll(e.UserID)
	}
	return nil
}

func (t *triggers) onMainCharacterChanged(event events.DomainEvent) error {
	if e, ok := event.(user.MainCharacterChangedEvent); ok {
		t.scheduler.ScheduleAll(e.UserID)
	}
	return nil
}

func (t *triggers) onMembershipChanged(event events.DomainEvent) error {
	if e, ok := event.(group.MembershipChangedEvent); ok {
		t.scheduler.ScheduleAll(e.UserID)
	}
	return nil
}

// onAffiliationChanged maps the character back to its current owner; a
// character nobody owns affects nobody's entitlements.
func (t *triggers) onAffiliationChanged(event events.DomainEvent) error {
	e, ok := event.(character.AffiliationChangedEvent)
	if !ok {
		return nil
	}
	ownership, err := t.ownerships.GetActiveByCharacterID(context.Background(), e.CharacterID)
	if err != nil {
		t.logger.Debugw("affiliation change for unowned character",
			"character_id", e.CharacterID, "error", err)
		return nil
	}
	t.scheduler.ScheduleAll(ownership.UserID())
	return nil
}

// onOwnershipTransferred reschedules both sides: the loser may drop groups,
// the winner may gain them.
func (t *triggers) onOwnershipTransferred(event events.DomainEvent) error {
	if e, ok := event.(character.OwnershipTransferredEvent); ok {
		t.scheduler.ScheduleAll(e.OldUserID)
		t.scheduler.ScheduleAll(e.NewUserID)
	}
	return nil
}
